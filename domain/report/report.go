// Package report holds the output of one pipeline run.
package report

import (
	"sort"

	"talentmetrics/domain/core"
	"talentmetrics/domain/table"
)

// Tab names written by the pipeline, in workbook order
const (
	TabHeadcount       = "Data_Headcount"
	TabExits           = "Data_Exits_Detailed"
	TabTraining        = "Data_Training"
	TabRetentionTenure = "DB_Retention_Tenure"
	TabDeptHealth      = "DB_Dept_Health"
	TabCostOfChurn     = "DB_Cost_of_Churn"
	TabWorkforceMix    = "DB_Workforce_Mix"
	TabHiringForecast  = "DB_Hiring_Forecast"
)

// LoadFailure records one input that could not be loaded
type LoadFailure struct {
	Input  string `json:"input"`
	Source string `json:"source"`
	Error  string `json:"error"`
}

// Diagnostics collects the data-quality findings of a run. None of them stop
// the run; they exist so callers can alert instead of shipping blank tabs.
type Diagnostics struct {
	// MissingSections lists keywords that matched nothing
	MissingSections []string `json:"missing_sections,omitempty"`
	// DegradedSections lists sections whose columns could not be bound
	DegradedSections []string `json:"degraded_sections,omitempty"`
	// UnmappedLabels maps a section to raw labels absent from the label map
	UnmappedLabels map[string][]string `json:"unmapped_labels,omitempty"`
	LoadFailures   []LoadFailure       `json:"load_failures,omitempty"`
	HighRisk       []string            `json:"high_risk,omitempty"`
}

// IsClean reports whether the run had no findings worth alerting on
func (d Diagnostics) IsClean() bool {
	return len(d.DegradedSections) == 0 && len(d.UnmappedLabels) == 0 && len(d.LoadFailures) == 0
}

// Report is an ordered set of named tables plus diagnostics
type Report struct {
	RunID        core.RunID     `json:"run_id"`
	GeneratedAt  core.Timestamp `json:"generated_at"`
	LabelVersion string         `json:"label_version"`
	Tables       []table.Named  `json:"tables"`
	Diagnostics  Diagnostics    `json:"diagnostics"`
}

// New starts an empty report with a fresh run id
func New(labelVersion string) *Report {
	return &Report{
		RunID:        core.NewRunID(),
		GeneratedAt:  core.Now(),
		LabelVersion: labelVersion,
	}
}

// Add appends a table. Empty tables are skipped, the way a workbook simply
// has no tab for data that was not there. A repeated name replaces the
// earlier table in place.
func (r *Report) Add(name string, t *table.Table) {
	if t.IsEmpty() {
		return
	}
	for i := range r.Tables {
		if r.Tables[i].Name == name {
			r.Tables[i].Table = t
			return
		}
	}
	r.Tables = append(r.Tables, table.Named{Name: name, Table: t})
}

// Table returns the table called name
func (r *Report) Table(name string) (*table.Table, bool) {
	for _, n := range r.Tables {
		if n.Name == name {
			return n.Table, true
		}
	}
	return nil, false
}

// Names returns the table names in report order
func (r *Report) Names() []string {
	names := make([]string, len(r.Tables))
	for i, n := range r.Tables {
		names[i] = n.Name
	}
	return names
}

// AddUnmapped records raw labels of section that the label map lacks
func (d *Diagnostics) AddUnmapped(section string, raw []string) {
	if len(raw) == 0 {
		return
	}
	if d.UnmappedLabels == nil {
		d.UnmappedLabels = make(map[string][]string)
	}
	merged := append(d.UnmappedLabels[section], raw...)
	sort.Strings(merged)
	d.UnmappedLabels[section] = dedupe(merged)
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}
