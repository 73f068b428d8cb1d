package mcp

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nvandessel/fliplot/internal/constants"
	"github.com/nvandessel/fliplot/internal/sanitize"
)

// AuditEntry represents a single audit log entry for an MCP tool invocation.
// It captures metadata about the call, never file contents.
type AuditEntry struct {
	Timestamp  time.Time         `json:"timestamp"`
	Tool       string            `json:"tool"`
	DurationMs int64             `json:"duration_ms"`
	Status     string            `json:"status"` // "success" or "error"
	Error      string            `json:"error,omitempty"`
	Params     map[string]string `json:"params,omitempty"` // sanitized metadata only
}

// AuditLogger appends audit entries to <root>/.fliplot/audit.jsonl.
// It is safe for concurrent use. A nil AuditLogger is safe to use; all
// methods are no-ops on nil receiver.
type AuditLogger struct {
	mu   sync.Mutex
	file *os.File
}

// NewAuditLogger opens the audit log under root. If the file cannot be
// created a warning is printed to stderr and nil is returned (non-fatal).
func NewAuditLogger(root string) *AuditLogger {
	path := filepath.Join(root, constants.StateDirName, constants.AuditFileName)

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot create audit log directory %s: %v\n", filepath.Dir(path), err)
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot open audit log %s: %v\n", path, err)
		return nil
	}

	return &AuditLogger{file: f}
}

// Log appends entry as one JSON line.
func (a *AuditLogger) Log(entry AuditEntry) {
	if a == nil {
		return
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return // silently skip malformed entries
	}
	data = append(data, '\n')

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.file == nil {
		return
	}
	_, _ = a.file.Write(data)
}

// Close closes the audit log. Safe to call on nil receiver and more than once.
func (a *AuditLogger) Close() error {
	if a == nil {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.file == nil {
		return nil
	}
	err := a.file.Close()
	a.file = nil
	return err
}

// sanitizeToolParams extracts safe metadata from tool parameters.
//
// Parameters are classified into three categories:
//   - Safe-value params: both key and value are safe to log (e.g., "script", "png")
//   - Presence-only params: key is logged but value is replaced with "(set)"
//   - Unknown params: not logged at all
//
// A "_param_count" key is always included to indicate how many params were provided.
func sanitizeToolParams(params map[string]interface{}) map[string]string {
	if params == nil {
		return nil
	}

	safeValueParams := map[string]bool{
		"script": true,
		"png":    true,
		"limit":  true,
		"output": true,
	}

	// Values may hold local paths.
	presenceOnlyParams := map[string]bool{
		"manifest": true,
		"root":     true,
	}

	result := make(map[string]string)
	for key, val := range params {
		if safeValueParams[key] {
			result[key] = sanitize.Name(fmt.Sprintf("%v", val))
		} else if presenceOnlyParams[key] {
			result[key] = "(set)"
		}
	}

	result["_param_count"] = fmt.Sprintf("%d", len(params))
	return result
}

// auditTool logs a tool invocation to the audit log.
func (s *Server) auditTool(toolName string, start time.Time, err error, params map[string]string) {
	status := "success"
	errMsg := ""
	if err != nil {
		status = "error"
		errMsg = sanitize.Text(err.Error())
	}

	s.auditLogger.Log(AuditEntry{
		Timestamp:  start,
		Tool:       toolName,
		DurationMs: time.Since(start).Milliseconds(),
		Status:     status,
		Error:      errMsg,
		Params:     params,
	})
}
