package excel

import (
	"path/filepath"
	"strings"
)

// FileType is the on-disk format of a source
type FileType string

const (
	FileTypeXLSX    FileType = "xlsx"
	FileTypeCSV     FileType = "csv"
	FileTypeTSV     FileType = "tsv"
	FileTypeUnknown FileType = ""
)

// DetectFileType classifies a path by extension
func DetectFileType(path string) FileType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FileTypeXLSX
	case ".csv", ".txt":
		return FileTypeCSV
	case ".tsv":
		return FileTypeTSV
	default:
		return FileTypeUnknown
	}
}
