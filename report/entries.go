// Package report renders decoded entries and frequency tables for humans
// and for other programs.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"tinydns-logstat/model"
)

// EntryRenderer writes LogEntry values to an output stream.
type EntryRenderer interface {
	Render(entry model.LogEntry) error
}

var (
	styleResponse = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))             // green
	styleDropped  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))            // yellow
	styleFailure  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true) // red bold
	styleUnknown  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true)
	styleHeader   = lipgloss.NewStyle().Bold(true)
)

// TextEntryRenderer prints one aligned line per entry, in the column
// layout of the classic converter script.
type TextEntryRenderer struct {
	w io.Writer
}

func NewTextEntryRenderer(w io.Writer) *TextEntryRenderer {
	return &TextEntryRenderer{w: w}
}

func (r *TextEntryRenderer) Render(e model.LogEntry) error {
	ts := "-"
	if e.Timestamp != nil {
		ts = e.Timestamp.Format(time.RFC3339Nano)
	}
	code := styleCode(e.Code, fmt.Sprintf("%14s", e.Code))
	_, err := fmt.Fprintf(r.w, "%s  %-15s  %d  %s  %s  %-5s  %s\n",
		ts, e.Address.String(), e.Port, e.QueryID, code, e.Type, e.Name)
	return err
}

func styleCode(code, padded string) string {
	switch code {
	case "response":
		return styleResponse.Render(padded)
	case "dropped", "defect/dropped":
		return styleDropped.Render(padded)
	case "not implemented", `not "IN" class`:
		return styleFailure.Render(padded)
	default:
		return styleUnknown.Render(padded)
	}
}

// JSONEntryRenderer prints each entry as one JSON object per line.
type JSONEntryRenderer struct {
	enc *json.Encoder
}

func NewJSONEntryRenderer(w io.Writer) *JSONEntryRenderer {
	return &JSONEntryRenderer{enc: json.NewEncoder(w)}
}

func (r *JSONEntryRenderer) Render(e model.LogEntry) error {
	return r.enc.Encode(e)
}

// NewEntryRenderer picks a renderer by format name: "json" or "text".
func NewEntryRenderer(format string, w io.Writer) (EntryRenderer, error) {
	switch format {
	case "", "text":
		return NewTextEntryRenderer(w), nil
	case "json":
		return NewJSONEntryRenderer(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want text or json)", format)
	}
}
