package table

// Named pairs a table with the name a sink writes it under
type Named struct {
	Name  string `json:"name"`
	Table *Table `json:"table"`
}
