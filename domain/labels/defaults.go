package labels

// WorkbookDefaults is the label map used when building the metrics
// workbook. Unmapped labels pass through.
func WorkbookDefaults() *Map {
	return New("workbook-2025.1", map[string]string{
		"CUSTOMER SERVICE":            "CS",
		"IT - DEVELOPER":              "Tech/IT",
		"IT - BACKOFFICE":             "Tech/IT",
		"IT - UIUX":                   "Tech/IT",
		"IT - FRONT":                  "Tech/IT",
		"IT ":                         "Tech/IT",
		"IT":                          "Tech/IT",
		"Ai Lab":                      "Tech/IT",
		"PROJECT/PRODUCT":             "Product",
		"Project/ Product":            "Product",
		"Project Product":             "Product",
		"HR-CORPORATE":                "HR",
		"RRHH":                        "HR",
		"PAID MARKETING":              "Marketing",
		"ORGANIC MARKETING":           "Marketing",
		"Organic Marketing":           "Marketing",
		"Paid Marketing":              "Marketing",
		"ASO":                         "Marketing",
		"Market Research":             "Marketing",
		"DBI":                         "Data",
		"Finance, Legal and Payments": "Finance/Legal",
		"FINANCE, LEGAL AND PAYMENTS": "Finance/Legal",
	}, Passthrough)
}

// DashboardDefaults is the label map used by the dashboard feed. Unmapped
// labels collapse to "Other".
func DashboardDefaults() *Map {
	return New("dashboard-2025.1", map[string]string{
		"CUSTOMER SERVICE":            "Customer Service",
		"CS":                          "Customer Service",
		"PROJECT/PRODUCT":             "Product",
		"Project/ Product":            "Product",
		"IT - DEVELOPER":              "Tech & IT",
		"IT - BACKOFFICE":             "Tech & IT",
		"IT - UIUX":                   "Tech & IT",
		"IT - FRONT":                  "Tech & IT",
		"IT ":                         "Tech & IT",
		"IT":                          "Tech & IT",
		"HR-CORPORATE":                "HR",
		"HR":                          "HR",
		"Finance, Legal and Payments": "Finance/Legal",
		"ACCOUNTING":                  "Finance/Legal",
		"TAX":                         "Finance/Legal",
		"PAYMENTS":                    "Finance/Legal",
		"PAID MARKETING":              "Marketing",
		"ORGANIC MARKETING":           "Marketing",
		"SEO":                         "Marketing",
		"DBI":                         "Data & BI",
	}, Sentinel)
}

// Builtin returns a built-in map by name ("workbook" or "dashboard")
func Builtin(name string) (*Map, bool) {
	switch name {
	case "workbook", "":
		return WorkbookDefaults(), true
	case "dashboard":
		return DashboardDefaults(), true
	default:
		return nil, false
	}
}
