package decoder

import (
	"fmt"

	"github.com/miekg/dns"
)

// Unknown is the label returned for vocabulary a table does not know.
const Unknown = "UNKNOWN"

// LabelTable resolves a raw token to a human-readable label. Lookup
// never fails: misses resolve to Unknown.
type LabelTable interface {
	Lookup(token string) string
}

// Table is an immutable LabelTable backed by a map.
type Table struct {
	labels map[string]string
}

// NewTable copies labels into a new Table.
func NewTable(labels map[string]string) Table {
	t := Table{labels: make(map[string]string, len(labels))}
	for k, v := range labels {
		t.labels[k] = v
	}
	return t
}

func (t Table) Lookup(token string) string {
	if label, ok := t.labels[token]; ok {
		return label
	}
	return Unknown
}

// With returns a copy of t with overrides added or replaced.
func (t Table) With(overrides map[string]string) Table {
	merged := NewTable(t.labels)
	for k, v := range overrides {
		merged.labels[k] = v
	}
	return merged
}

// Len returns the number of known tokens.
func (t Table) Len() int { return len(t.labels) }

// CodeTable maps the single-character tinydns response codes.
func CodeTable() Table {
	return NewTable(map[string]string{
		"+": "response",
		"-": "dropped",
		"I": "not implemented",
		"C": `not "IN" class`,
		"/": "defect/dropped",
	})
}

// typeA6 is the obsolete A6 record type (RFC 2874).
const typeA6 uint16 = 38

// TypeTable maps the 4-hex-digit record type field. Keys are the
// lowercase hex rendering of the numeric DNS type, as tinydns logs it.
func TypeTable() Table {
	labels := map[uint16]string{
		dns.TypeA:     "A",
		dns.TypeNS:    "NS",
		dns.TypeCNAME: "CNAME",
		dns.TypeSOA:   "SOA",
		dns.TypePTR:   "PTR",
		dns.TypeMX:    "MX ",
		dns.TypeTXT:   "TXT",
		dns.TypeAAAA:  "AAAA",
		typeA6:        "A6 ",
		dns.TypeIXFR:  "IXFR",
		dns.TypeAXFR:  "AXFR",
		dns.TypeANY:   "wildcard",
	}
	t := Table{labels: make(map[string]string, len(labels))}
	for qtype, label := range labels {
		t.labels[TypeToken(qtype)] = label
	}
	return t
}

// TypeToken renders a numeric DNS type the way it appears in the log.
func TypeToken(qtype uint16) string {
	return fmt.Sprintf("%04x", qtype)
}
