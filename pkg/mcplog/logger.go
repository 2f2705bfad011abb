// Package mcplog records MCP tool calls as JSON lines and reads them back.
package mcplog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// LogEntry is one JSONL line per tool call.
type LogEntry struct {
	Ts            string         `json:"ts"`
	Tool          string         `json:"tool"`
	Params        map[string]any `json:"params"`
	DurationMs    int64          `json:"duration_ms"`
	ResponseBytes int            `json:"response_bytes"`
	TokensEst     int            `json:"tokens_est"`
	// IsError marks calls that returned an error result to the client.
	IsError bool    `json:"is_error,omitempty"`
	Error   *string `json:"error"`
}

// Logger appends entries to a file. It is safe for concurrent use.
type Logger struct {
	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
}

// NewLogger opens path for appending, creating parent directories. An empty
// path returns a nil Logger, which callers treat as disabled.
func NewLogger(path string) (*Logger, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("mcplog: create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("mcplog: open log file: %w", err)
	}
	return &Logger{f: f, enc: json.NewEncoder(f)}, nil
}

// Write appends one entry.
func (l *Logger) Write(entry LogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enc.Encode(entry)
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}

// ReadEntries reads every entry from a log file. Blank lines are skipped; a
// malformed line is an error naming its line number.
func ReadEntries(path string) ([]LogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mcplog: open log file: %w", err)
	}
	defer f.Close()

	var entries []LogEntry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var e LogEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("mcplog: line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("mcplog: read log file: %w", err)
	}
	return entries, nil
}

// ToolSummary aggregates the calls of one tool.
type ToolSummary struct {
	Tool          string `json:"tool"`
	Calls         int    `json:"calls"`
	Errors        int    `json:"errors"`
	TotalMs       int64  `json:"total_ms"`
	MaxMs         int64  `json:"max_ms"`
	ResponseBytes int    `json:"response_bytes"`
}

// Summarize groups entries by tool, sorted by call count then name.
func Summarize(entries []LogEntry) []ToolSummary {
	byTool := make(map[string]*ToolSummary)
	for _, e := range entries {
		s, ok := byTool[e.Tool]
		if !ok {
			s = &ToolSummary{Tool: e.Tool}
			byTool[e.Tool] = s
		}
		s.Calls++
		if e.IsError || e.Error != nil {
			s.Errors++
		}
		s.TotalMs += e.DurationMs
		s.MaxMs = max(s.MaxMs, e.DurationMs)
		s.ResponseBytes += e.ResponseBytes
	}

	out := make([]ToolSummary, 0, len(byTool))
	for _, s := range byTool {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Calls != out[j].Calls {
			return out[i].Calls > out[j].Calls
		}
		return out[i].Tool < out[j].Tool
	})
	return out
}

// SanitizeParams returns a copy of args safe for logging. Strings longer
// than 64 bytes, such as TypeScript source, are replaced by a "{key}_len"
// entry holding their length.
func SanitizeParams(args map[string]any) map[string]any {
	const shortStringMax = 64
	out := make(map[string]any, len(args))
	for k, v := range args {
		if s, ok := v.(string); ok && len(s) > shortStringMax {
			out[k+"_len"] = len(s)
		} else {
			out[k] = v
		}
	}
	return out
}

// ResponseBytes returns the serialized size of a result's content, or 0.
func ResponseBytes(result *mcp.CallToolResult) int {
	if result == nil {
		return 0
	}
	b, err := json.Marshal(result.Content)
	if err != nil {
		return 0
	}
	return len(b)
}

// Now is a replaceable clock for testing.
var Now = func() time.Time { return time.Now() }
