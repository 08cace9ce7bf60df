// Package markdown renders report tables as a standalone HTML summary page.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	stdhtml "html"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"talentmetrics/domain/core"
	"talentmetrics/domain/report"
	"talentmetrics/domain/table"
	"talentmetrics/ports"
)

// HTMLSink collects tables as markdown and writes one HTML page on Close.
// An empty path keeps the page in memory only.
type HTMLSink struct {
	path  string
	title string

	mu     sync.Mutex
	doc    bytes.Buffer
	closed bool
	html   []byte
}

var _ ports.ReportSink = (*HTMLSink)(nil)

// NewHTMLSink creates a sink that writes to path
func NewHTMLSink(path, title string) *HTMLSink {
	s := &HTMLSink{path: path, title: title}
	fmt.Fprintf(&s.doc, "# %s\n\n", escape(title))
	return s
}

// WriteTable appends a section with the table rendered as a markdown table
func (s *HTMLSink) WriteTable(ctx context.Context, name string, t *table.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.ErrSinkClosed
	}

	fmt.Fprintf(&s.doc, "## %s\n\n", escape(name))
	if t.Degraded {
		s.doc.WriteString("> Columns could not be bound for this section; values are shown unnamed.\n\n")
	}
	if t.IsEmpty() {
		s.doc.WriteString("_No data._\n\n")
		return nil
	}
	writeTable(&s.doc, t)
	return nil
}

// WriteDiagnostics appends the data-quality findings of a run
func (s *HTMLSink) WriteDiagnostics(d report.Diagnostics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.doc.WriteString("## Diagnostics\n\n")
	if d.IsClean() && len(d.MissingSections) == 0 && len(d.HighRisk) == 0 {
		s.doc.WriteString("No findings.\n\n")
		return
	}
	bullets := func(label string, items []string) {
		for _, item := range items {
			fmt.Fprintf(&s.doc, "- **%s**: %s\n", label, escape(item))
		}
	}
	bullets("High risk", d.HighRisk)
	bullets("Missing section", d.MissingSections)
	bullets("Degraded section", d.DegradedSections)
	sections := make([]string, 0, len(d.UnmappedLabels))
	for section := range d.UnmappedLabels {
		sections = append(sections, section)
	}
	sort.Strings(sections)
	for _, section := range sections {
		raw := d.UnmappedLabels[section]
		fmt.Fprintf(&s.doc, "- **Unmapped labels in %s**: %s\n", escape(section), escape(strings.Join(raw, ", ")))
	}
	for _, f := range d.LoadFailures {
		fmt.Fprintf(&s.doc, "- **Load failure (%s)**: %s\n", escape(f.Input), escape(f.Error))
	}
	s.doc.WriteString("\n")
}

func writeTable(buf *bytes.Buffer, t *table.Table) {
	header := make([]string, len(t.Columns))
	rule := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = escape(c)
		if header[i] == "" {
			header[i] = fmt.Sprintf("col%d", i+1)
		}
		rule[i] = "---"
	}
	fmt.Fprintf(buf, "| %s |\n| %s |\n", strings.Join(header, " | "), strings.Join(rule, " | "))

	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = escape(c.String())
		}
		fmt.Fprintf(buf, "| %s |\n", strings.Join(cells, " | "))
	}
	buf.WriteString("\n")
}

var escaper = strings.NewReplacer("|", `\|`, "\n", " ", "*", `\*`, "_", `\_`)

// escape makes spreadsheet text inert: HTML entities first, then the
// characters markdown would treat as table or emphasis syntax.
func escape(s string) string {
	return escaper.Replace(stdhtml.EscapeString(s))
}

// Markdown returns the document collected so far
func (s *HTMLSink) Markdown() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.String()
}

// Render converts the collected markdown to a complete HTML page
func (s *HTMLSink) Render() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.render()
}

func (s *HTMLSink) render() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage | html.SkipHTML,
		Title: s.title,
	})
	return markdown.ToHTML(s.doc.Bytes(), p, renderer)
}

// Close renders the page and writes it to the sink's path
func (s *HTMLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.html = s.render()

	if s.path == "" {
		return nil
	}
	if err := os.WriteFile(s.path, s.html, 0o644); err != nil {
		return fmt.Errorf("write html summary %s: %w", s.path, err)
	}
	return nil
}
