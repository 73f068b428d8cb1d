// Package constants provides named constants used throughout the fliplot codebase.
// This centralizes file names, column names and sizing defaults.
package constants

// Column names written by the BSim flip-flop simulations.
const (
	// TimeColumn is the x column of every simulation CSV.
	TimeColumn = "time(seconds)"

	// DefaultFigureTitle is the title given to single-chart figures.
	DefaultFigureTitle = "Plot"
)

// Chart sizing defaults, in CSS pixels.
const (
	// DefaultChartWidth is the width of one figure (all grid cells together).
	DefaultChartWidth = 1200

	// DefaultChartHeight is the height of one figure (all grid rows together).
	DefaultChartHeight = 700

	// MinChartDimension is the smallest width or height accepted by config validation.
	MinChartDimension = 100
)

// Working-directory layout.
const (
	// StateDirName is the per-project directory holding history and event logs.
	StateDirName = ".fliplot"

	// HistoryDBName is the SQLite database file inside StateDirName.
	HistoryDBName = "history.db"

	// EventsFileName is the JSONL event trace inside StateDirName.
	EventsFileName = "events.jsonl"

	// AuditFileName is the MCP tool audit log inside StateDirName.
	AuditFileName = "audit.jsonl"

	// ConfigFileName is the YAML config file inside ~/.fliplot.
	ConfigFileName = "config.yaml"
)

// DefaultHistoryLimit is the number of runs printed by `fliplot history`.
const DefaultHistoryLimit = 20
