// Package cli renders pipeline results for the terminal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

var (
	heading = color.New(color.FgCyan, color.Bold).SprintFunc()
	label   = color.New(color.FgGreen, color.Bold).SprintFunc()
	faint   = color.New(color.Faint).SprintFunc()
	warn    = color.New(color.FgYellow).SprintFunc()
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
