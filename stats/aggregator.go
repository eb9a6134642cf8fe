// Package stats builds frequency tables over decoded query log entries.
package stats

import (
	"sort"
	"time"

	"tinydns-logstat/model"
)

// Table names accepted by Snapshot.Table and Snapshot.Top.
const (
	TableAddresses = "addresses"
	TableCodes     = "codes"
	TableTypes     = "types"
	TableNames     = "names"
)

// Tables lists the table names in report order.
var Tables = []string{TableAddresses, TableCodes, TableTypes, TableNames}

// Source is a single-pass iterator of entries, e.g. *stream.Stream.
type Source interface {
	Next() bool
	Entry() model.LogEntry
	Err() error
}

// AddressFormatter renders an address as a table key.
type AddressFormatter func(model.Address) string

// Snapshot is a finished set of frequency tables. It is never modified
// after being returned.
type Snapshot struct {
	Records   int64               `json:"records"`
	Addresses map[string]int64    `json:"addresses"`
	Codes     map[string]int64    `json:"codes"`
	Types     map[string]int64    `json:"types"`
	Names     map[string]int64    `json:"names"`
	Timeline  map[time.Time]int64 `json:"-"`
	First     *time.Time          `json:"first,omitempty"`
	Last      *time.Time          `json:"last,omitempty"`
}

// Count is one ranked row of a table.
type Count struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// Table returns the named table, or nil for an unknown name.
func (s Snapshot) Table(name string) map[string]int64 {
	switch name {
	case TableAddresses:
		return s.Addresses
	case TableCodes:
		return s.Codes
	case TableTypes:
		return s.Types
	case TableNames:
		return s.Names
	}
	return nil
}

// Top ranks a table by count descending, ties broken by label.
// n <= 0 returns every row.
func (s Snapshot) Top(name string, n int) []Count {
	return rank(s.Table(name), n)
}

// TimelineRows returns the per-minute buckets in time order.
func (s Snapshot) TimelineRows() []TimelineRow {
	rows := make([]TimelineRow, 0, len(s.Timeline))
	for minute, count := range s.Timeline {
		rows = append(rows, TimelineRow{Minute: minute, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Minute.Before(rows[j].Minute) })
	return rows
}

// TimelineRow is one minute bucket.
type TimelineRow struct {
	Minute time.Time `json:"minute"`
	Count  int64     `json:"count"`
}

func rank(table map[string]int64, n int) []Count {
	rows := make([]Count, 0, len(table))
	for label, count := range table {
		rows = append(rows, Count{Label: label, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Label < rows[j].Label
	})
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// Aggregator accumulates the four frequency tables. It is not safe for
// concurrent use; each run owns its own Aggregator.
type Aggregator struct {
	format AddressFormatter
	snap   Snapshot
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithAddressFormatter changes how addresses are keyed.
func WithAddressFormatter(f AddressFormatter) Option {
	return func(a *Aggregator) { a.format = f }
}

// NewAggregator returns an empty Aggregator.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		format: model.Address.String,
		snap:   emptySnapshot(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func emptySnapshot() Snapshot {
	return Snapshot{
		Addresses: make(map[string]int64),
		Codes:     make(map[string]int64),
		Types:     make(map[string]int64),
		Names:     make(map[string]int64),
		Timeline:  make(map[time.Time]int64),
	}
}

// Add counts one entry in every table.
func (a *Aggregator) Add(e model.LogEntry) {
	a.snap.Records++
	a.snap.Addresses[a.format(e.Address)]++
	a.snap.Codes[e.Code]++
	a.snap.Types[e.Type]++
	a.snap.Names[e.Name]++

	if e.Timestamp == nil {
		return
	}
	ts := *e.Timestamp
	a.snap.Timeline[ts.Truncate(time.Minute)]++
	if a.snap.First == nil || ts.Before(*a.snap.First) {
		a.snap.First = &ts
	}
	if a.snap.Last == nil || ts.After(*a.snap.Last) {
		last := ts
		a.snap.Last = &last
	}
}

// Snapshot returns a deep copy of the current tables.
func (a *Aggregator) Snapshot() Snapshot {
	out := emptySnapshot()
	out.Records = a.snap.Records
	copyInto(out.Addresses, a.snap.Addresses)
	copyInto(out.Codes, a.snap.Codes)
	copyInto(out.Types, a.snap.Types)
	copyInto(out.Names, a.snap.Names)
	for k, v := range a.snap.Timeline {
		out.Timeline[k] = v
	}
	if a.snap.First != nil {
		first := *a.snap.First
		out.First = &first
	}
	if a.snap.Last != nil {
		last := *a.snap.Last
		out.Last = &last
	}
	return out
}

func copyInto(dst, src map[string]int64) {
	for k, v := range src {
		dst[k] = v
	}
}

// Aggregate drains src once. If src fails, the tables built from the
// entries read so far are returned together with the error.
func Aggregate(src Source, opts ...Option) (Snapshot, error) {
	a := NewAggregator(opts...)
	for src.Next() {
		a.Add(src.Entry())
	}
	return a.Snapshot(), src.Err()
}
