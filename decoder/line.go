package decoder

import (
	"strings"

	"tinydns-logstat/errors"
	"tinydns-logstat/model"
)

// LineDecoder splits a tinydns query log line into its fixed fields:
//
//	[@<tai64n>] <addr>:<port>:<id> <code> <type> [<name>]
//
// Structure is checked strictly; unknown code or type vocabulary
// degrades to Unknown instead of failing.
type LineDecoder struct {
	timestamps TimestampDecoder
	addresses  AddressDecoder
	codes      LabelTable
	types      LabelTable
}

// Option configures a LineDecoder.
type Option func(*LineDecoder)

// WithTimestampDecoder replaces the TAI64N decoder.
func WithTimestampDecoder(d TimestampDecoder) Option {
	return func(l *LineDecoder) { l.timestamps = d }
}

// WithAddressDecoder replaces the hex address decoder.
func WithAddressDecoder(d AddressDecoder) Option {
	return func(l *LineDecoder) { l.addresses = d }
}

// WithCodeTable replaces the response code table.
func WithCodeTable(t LabelTable) Option {
	return func(l *LineDecoder) { l.codes = t }
}

// WithTypeTable replaces the record type table.
func WithTypeTable(t LabelTable) Option {
	return func(l *LineDecoder) { l.types = t }
}

// NewLineDecoder returns a decoder using the default tables and decoders
// unless overridden by opts.
func NewLineDecoder(opts ...Option) *LineDecoder {
	l := &LineDecoder{
		timestamps: TAI64NDecoder{},
		addresses:  HexAddressDecoder{},
		codes:      CodeTable(),
		types:      TypeTable(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Decode produces one LogEntry from a raw line, or a structured error
// whose Kind names the violated rule. No partial entry is returned.
func (l *LineDecoder) Decode(line string) (model.LogEntry, error) {
	fields := strings.Fields(line)

	// A leading '@' token, or a fifth token, is the date. The name after
	// the type may be empty.
	var date string
	if len(fields) == 5 || (len(fields) > 0 && strings.HasPrefix(fields[0], "@")) {
		date, fields = fields[0], fields[1:]
	}
	if len(fields) == 3 {
		fields = append(fields, "")
	}
	if len(fields) != 4 {
		return model.LogEntry{}, errors.Attr(
			errors.Errorf(errors.KindMalformedLine, "cannot decode entry: %s", strings.TrimRight(line, "\r\n")),
			"fields", len(strings.Fields(line)))
	}

	var entry model.LogEntry

	if date != "" {
		if date[0] != '@' {
			return model.LogEntry{}, errors.Attr(
				errors.Errorf(errors.KindInvalidTimestamp, "timestamp %q lacks the '@' sentinel", date),
				"token", date)
		}
		ts, err := l.timestamps.DecodeTimestamp(date[1:])
		if err != nil {
			return model.LogEntry{}, err
		}
		entry.Timestamp = &ts
	}

	parts := strings.Split(fields[0], ":")
	if len(parts) != 3 {
		return model.LogEntry{}, errors.Attr(
			errors.Errorf(errors.KindMalformedAddressPort, "cannot split %q into address:port:id", fields[0]),
			"token", fields[0])
	}

	addr, err := l.addresses.DecodeAddress(parts[0])
	if err != nil {
		return model.LogEntry{}, err
	}
	port, err := decodePort(parts[1])
	if err != nil {
		return model.LogEntry{}, err
	}

	entry.Address = addr
	entry.Port = port
	entry.QueryID = parts[2]
	entry.RawCode = fields[1]
	entry.RawType = fields[2]
	entry.Code = l.codes.Lookup(fields[1])
	entry.Type = l.types.Lookup(fields[2])
	entry.Name = fields[3]

	return entry, nil
}
