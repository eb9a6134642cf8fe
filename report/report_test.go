package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinydns-logstat/model"
	"tinydns-logstat/stats"
)

func sampleEntry(withTime bool) model.LogEntry {
	e := model.LogEntry{
		Address: model.IPv4([4]uint8{163, 28, 113, 16}),
		Port:    42714,
		QueryID: "0795",
		Code:    "response",
		Type:    "MX ",
		Name:    "leela.toppoint.de",
	}
	if withTime {
		ts := time.Date(2009, time.June, 12, 11, 16, 25, 715267500, time.UTC)
		e.Timestamp = &ts
	}
	return e
}

func TestTextEntryRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := NewTextEntryRenderer(&buf)

	require.NoError(t, r.Render(sampleEntry(true)))
	require.NoError(t, r.Render(sampleEntry(false)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "2009-06-12T11:16:25.7152675Z  163.28.113.16    42714  0795"))
	assert.Contains(t, lines[0], "response")
	assert.Contains(t, lines[0], "MX     leela.toppoint.de")
	assert.True(t, strings.HasPrefix(lines[1], "-  163.28.113.16"))
}

func TestJSONEntryRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONEntryRenderer(&buf).Render(sampleEntry(true)))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "163.28.113.16", got["address"])
	assert.Equal(t, float64(42714), got["port"])
	assert.Equal(t, "0795", got["query_id"])
	assert.Equal(t, "2009-06-12T11:16:25.7152675Z", got["timestamp"])
}

func TestNewRendererFormats(t *testing.T) {
	_, err := NewEntryRenderer("xml", &bytes.Buffer{})
	assert.Error(t, err)
	_, err = NewStatsRenderer("yaml", &bytes.Buffer{}, 0)
	assert.Error(t, err)

	r, err := NewEntryRenderer("json", &bytes.Buffer{})
	require.NoError(t, err)
	assert.IsType(t, &JSONEntryRenderer{}, r)
}

func sampleSnapshot() stats.Snapshot {
	a := stats.NewAggregator()
	a.Add(sampleEntry(true))
	a.Add(sampleEntry(false))
	other := sampleEntry(false)
	other.Address = model.IPv4([4]uint8{10, 0, 0, 1})
	other.Code = "dropped"
	other.Name = "example.org"
	a.Add(other)
	return a.Snapshot()
}

func TestTextStatsRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextStatsRenderer(&buf, 0).RenderStats(sampleSnapshot()))
	out := buf.String()

	for _, header := range []string{"*** ADDRESSES ***", "*** CODES ***", "*** TYPES ***", "*** NAMES ***"} {
		assert.Contains(t, out, header)
	}
	assert.Contains(t, out, "         163.28.113.16:\t 2\n")
	assert.Contains(t, out, "              response:\t 2\n")
	assert.Contains(t, out, "3 records")

	// most frequent first
	assert.Less(t, strings.Index(out, "leela.toppoint.de"), strings.Index(out, "example.org"))
}

func TestTextStatsRenderer_Top(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextStatsRenderer(&buf, 1).RenderStats(sampleSnapshot()))
	assert.NotContains(t, buf.String(), "example.org")
	assert.NotContains(t, buf.String(), "10.0.0.1")
}

func TestJSONStatsRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONStatsRenderer(&buf, 0).RenderStats(sampleSnapshot()))

	var got struct {
		Records int64                    `json:"records"`
		Tables  map[string][]stats.Count `json:"tables"`
		First   string                   `json:"first"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, int64(3), got.Records)
	assert.Equal(t, []stats.Count{{Label: "response", Count: 2}, {Label: "dropped", Count: 1}}, got.Tables["codes"])
	assert.Equal(t, "2009-06-12T11:16:25.7152675Z", got.First)
}
