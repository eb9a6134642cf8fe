package dashboard

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinydns-logstat/logging"
	"tinydns-logstat/stats"
	"tinydns-logstat/stream"
)

const sampleLog = `@400000004a32392b2aa21dac a31c7110:a6da:0795 + 000f leela.toppoint.de
@400000004a32392c2aa21dac a31c7110:a6db:0796 + 0001 leela.toppoint.de
@400000004a3239702aa21dac c0a80bff:0035:1a2b - 001c example.org
`

func testSnapshot(t *testing.T) stats.Snapshot {
	t.Helper()
	snap, err := stats.Aggregate(stream.New(strings.NewReader(sampleLog)))
	require.NoError(t, err)
	return snap
}

func getJSON(t *testing.T, cfg Config, path string, out any, auth ...string) int {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	app := New(testSnapshot(t), cfg)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if len(auth) == 2 {
		req.SetBasicAuth(auth[0], auth[1])
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if resp.StatusCode == http.StatusOK && out != nil {
		require.NoError(t, json.Unmarshal(body, out))
	}
	return resp.StatusCode
}

func TestApiStats(t *testing.T) {
	var got DashboardStats
	require.Equal(t, http.StatusOK, getJSON(t, Config{}, "/api/stats", &got))
	assert.Equal(t, int64(3), got.TotalRecords)
	assert.Equal(t, int64(2), got.UniqueClients)
	assert.Equal(t, int64(2), got.UniqueDomains)
	assert.Equal(t, "2009-06-12T11:16:25Z", got.First)
}

func TestApiTopClients(t *testing.T) {
	var got []TopClient
	require.Equal(t, http.StatusOK, getJSON(t, Config{}, "/api/top-clients?limit=1", &got))
	assert.Equal(t, []TopClient{{IP: "163.28.113.16", Count: 2}}, got)
}

func TestApiTopDomainsAndTypes(t *testing.T) {
	var domains []TopDomain
	require.Equal(t, http.StatusOK, getJSON(t, Config{}, "/api/top-domains", &domains))
	assert.Equal(t, []TopDomain{{"leela.toppoint.de", 2}, {"example.org", 1}}, domains)

	var types []QueryTypeStats
	require.Equal(t, http.StatusOK, getJSON(t, Config{}, "/api/query-types", &types))
	assert.Len(t, types, 3)

	var codes []ResponseCodeStats
	require.Equal(t, http.StatusOK, getJSON(t, Config{}, "/api/response-codes", &codes))
	assert.Equal(t, []ResponseCodeStats{{"response", 2}, {"dropped", 1}}, codes)
}

func TestApiTimeline(t *testing.T) {
	var got []TimelinePoint
	require.Equal(t, http.StatusOK, getJSON(t, Config{}, "/api/timeline", &got))
	assert.Equal(t, []TimelinePoint{{"2009-06-12 11:16", 2}, {"2009-06-12 11:17", 1}}, got)
}

func TestBasicAuth(t *testing.T) {
	cfg := Config{User: "admin", Password: "secret"}
	assert.Equal(t, http.StatusUnauthorized, getJSON(t, cfg, "/api/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, getJSON(t, cfg, "/api/stats", nil, "admin", "wrong"))

	var got DashboardStats
	assert.Equal(t, http.StatusOK, getJSON(t, cfg, "/api/stats", &got, "admin", "secret"))
	assert.Equal(t, int64(3), got.TotalRecords)
}
