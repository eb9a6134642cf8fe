package dashboard

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"tinydns-logstat/stats"
)

const (
	defaultLimit = 20
	maxLimit     = 500
)

// handlers serve one immutable snapshot; no locking is needed.
type handlers struct {
	snap stats.Snapshot
}

func limitParam(c *fiber.Ctx, fallback int) int {
	limit := c.QueryInt("limit", fallback)
	if limit <= 0 {
		limit = fallback
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit
}

func (h *handlers) ApiStats(c *fiber.Ctx) error {
	out := DashboardStats{
		TotalRecords:  h.snap.Records,
		UniqueClients: int64(len(h.snap.Addresses)),
		UniqueDomains: int64(len(h.snap.Names)),
	}
	if h.snap.First != nil {
		out.First = h.snap.First.Format(time.RFC3339)
	}
	if h.snap.Last != nil {
		out.Last = h.snap.Last.Format(time.RFC3339)
	}
	return c.JSON(out)
}

func (h *handlers) ApiQueryTypes(c *fiber.Ctx) error {
	results := []QueryTypeStats{}
	for _, row := range h.snap.Top(stats.TableTypes, limitParam(c, 10)) {
		results = append(results, QueryTypeStats{Type: row.Label, Count: row.Count})
	}
	return c.JSON(results)
}

func (h *handlers) ApiResponseCodes(c *fiber.Ctx) error {
	results := []ResponseCodeStats{}
	for _, row := range h.snap.Top(stats.TableCodes, 0) {
		results = append(results, ResponseCodeStats{Code: row.Label, Count: row.Count})
	}
	return c.JSON(results)
}

func (h *handlers) ApiTopDomains(c *fiber.Ctx) error {
	results := []TopDomain{}
	for _, row := range h.snap.Top(stats.TableNames, limitParam(c, defaultLimit)) {
		results = append(results, TopDomain{Domain: row.Label, Count: row.Count})
	}
	return c.JSON(results)
}

func (h *handlers) ApiTopClients(c *fiber.Ctx) error {
	results := []TopClient{}
	for _, row := range h.snap.Top(stats.TableAddresses, limitParam(c, defaultLimit)) {
		results = append(results, TopClient{IP: row.Label, Count: row.Count})
	}
	return c.JSON(results)
}

func (h *handlers) ApiTimeline(c *fiber.Ctx) error {
	results := []TimelinePoint{}
	for _, row := range h.snap.TimelineRows() {
		results = append(results, TimelinePoint{
			Time:  row.Minute.UTC().Format("2006-01-02 15:04"),
			Count: row.Count,
		})
	}
	return c.JSON(results)
}
