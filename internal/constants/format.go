package constants

// ExportFormat is the file format of a frame export.
type ExportFormat string

const (
	// ExportCSV writes the parsed frame back out as clean CSV.
	ExportCSV ExportFormat = "csv"

	// ExportParquet writes the frame as a single-row-group Parquet file.
	ExportParquet ExportFormat = "parquet"
)

// Valid returns true if the format is a recognized value.
func (f ExportFormat) Valid() bool {
	switch f {
	case ExportCSV, ExportParquet:
		return true
	}
	return false
}

// String returns the string representation of the format.
func (f ExportFormat) String() string {
	return string(f)
}
