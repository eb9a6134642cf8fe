package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"tinydns-logstat/stats"
)

// StatsRenderer writes a finished snapshot.
type StatsRenderer interface {
	RenderStats(s stats.Snapshot) error
}

// TextStatsRenderer prints one block per table, most frequent first.
type TextStatsRenderer struct {
	w   io.Writer
	top int
}

// NewTextStatsRenderer limits each block to top rows; top <= 0 prints all.
func NewTextStatsRenderer(w io.Writer, top int) *TextStatsRenderer {
	return &TextStatsRenderer{w: w, top: top}
}

func (r *TextStatsRenderer) RenderStats(s stats.Snapshot) error {
	for _, name := range stats.Tables {
		header := styleHeader.Render(fmt.Sprintf("*** %s ***", strings.ToUpper(name)))
		if _, err := fmt.Fprintln(r.w, header); err != nil {
			return err
		}
		for _, row := range s.Top(name, r.top) {
			if _, err := fmt.Fprintf(r.w, "%22s:\t%2d\n", row.Label, row.Count); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(r.w); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(r.w, "%d records\n", s.Records)
	return err
}

// JSONStatsRenderer writes the ranked tables as a single JSON document.
type JSONStatsRenderer struct {
	enc *json.Encoder
	top int
}

func NewJSONStatsRenderer(w io.Writer, top int) *JSONStatsRenderer {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return &JSONStatsRenderer{enc: enc, top: top}
}

type jsonStats struct {
	Records int64                    `json:"records"`
	Tables  map[string][]stats.Count `json:"tables"`
	First   string                   `json:"first,omitempty"`
	Last    string                   `json:"last,omitempty"`
}

func (r *JSONStatsRenderer) RenderStats(s stats.Snapshot) error {
	out := jsonStats{
		Records: s.Records,
		Tables:  make(map[string][]stats.Count, len(stats.Tables)),
	}
	for _, name := range stats.Tables {
		out.Tables[name] = s.Top(name, r.top)
	}
	if s.First != nil {
		out.First = s.First.Format(time.RFC3339Nano)
	}
	if s.Last != nil {
		out.Last = s.Last.Format(time.RFC3339Nano)
	}
	return r.enc.Encode(out)
}

// NewStatsRenderer picks a renderer by format name: "json" or "text".
func NewStatsRenderer(format string, w io.Writer, top int) (StatsRenderer, error) {
	switch format {
	case "", "text":
		return NewTextStatsRenderer(w, top), nil
	case "json":
		return NewJSONStatsRenderer(w, top), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want text or json)", format)
	}
}
