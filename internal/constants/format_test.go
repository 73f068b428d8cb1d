package constants

import "testing"

func TestExportFormatValid(t *testing.T) {
	tests := []struct {
		format ExportFormat
		want   bool
	}{
		{ExportCSV, true},
		{ExportParquet, true},
		{"", false},
		{"xlsx", false},
		{"CSV", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			if got := tt.format.Valid(); got != tt.want {
				t.Errorf("ExportFormat(%q).Valid() = %v, want %v", tt.format, got, tt.want)
			}
		})
	}
}

func TestExportFormatString(t *testing.T) {
	if got := ExportParquet.String(); got != "parquet" {
		t.Errorf("ExportParquet.String() = %q, want %q", got, "parquet")
	}
}
