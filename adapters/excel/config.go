package excel

// LoaderConfig tunes how delimited sources are read
type LoaderConfig struct {
	// Comma is the field delimiter for .csv files; .tsv always uses a tab
	Comma      rune
	LazyQuotes bool
}

// DefaultLoaderConfig returns the settings used for Excel CSV exports
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{Comma: ',', LazyQuotes: true}
}

// SinkConfig controls workbook formatting
type SinkConfig struct {
	// ColumnWidth is applied to the first WidthColumns columns of every sheet
	ColumnWidth  float64
	WidthColumns int
}

// DefaultSinkConfig widens columns A to F to 20
func DefaultSinkConfig() SinkConfig {
	return SinkConfig{ColumnWidth: 20, WidthColumns: 6}
}
