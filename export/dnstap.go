// Package export converts decoded query log entries into dnstap so they
// can be replayed into dnstap tooling.
package export

import (
	"io"
	"strconv"

	dnstap "github.com/dnstap/golang-dnstap"
	framestream "github.com/farsightsec/golang-framestream"
	"github.com/miekg/dns"
	"google.golang.org/protobuf/proto"

	"tinydns-logstat/errors"
	"tinydns-logstat/model"
)

// ContentType is the framestream content type of dnstap payloads.
const ContentType = "protobuf:dnstap.Dnstap"

// DefaultBatchSize is the number of frames buffered between flushes.
const DefaultBatchSize = 1000

// DnstapWriter encodes entries as dnstap AUTH_QUERY messages in a
// unidirectional framestream.
type DnstapWriter struct {
	enc       *framestream.Encoder
	identity  []byte
	BatchSize int
	pending   int
	Written   int
}

// NewDnstapWriter starts a framestream on w. identity is stored in each
// dnstap message; it may be empty.
func NewDnstapWriter(w io.Writer, identity string) (*DnstapWriter, error) {
	enc, err := framestream.NewEncoder(w, &framestream.EncoderOptions{
		ContentType: []byte(ContentType),
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.KindIO, "start framestream")
	}
	var id []byte
	if identity != "" {
		id = []byte(identity)
	}
	return &DnstapWriter{
		enc:       enc,
		identity:  id,
		BatchSize: DefaultBatchSize,
	}, nil
}

// Write encodes one entry. The frame is flushed to the underlying
// writer once BatchSize frames are pending.
func (w *DnstapWriter) Write(e model.LogEntry) error {
	frame, err := Frame(e, w.identity)
	if err != nil {
		return err
	}
	if _, err := w.enc.Write(frame); err != nil {
		return errors.Wrap(err, errors.KindIO, "write dnstap frame")
	}
	w.Written++
	w.pending++
	if w.BatchSize > 0 && w.pending >= w.BatchSize {
		return w.Flush()
	}
	return nil
}

// Flush pushes buffered frames to the underlying writer.
func (w *DnstapWriter) Flush() error {
	w.pending = 0
	if err := w.enc.Flush(); err != nil {
		return errors.Wrap(err, errors.KindIO, "flush dnstap frames")
	}
	return nil
}

// Close flushes and writes the framestream stop frame. It does not close
// the underlying writer.
func (w *DnstapWriter) Close() error {
	if err := w.enc.Close(); err != nil {
		return errors.Wrap(err, errors.KindIO, "close framestream")
	}
	return nil
}

// Frame marshals a single entry as a dnstap protobuf payload.
func Frame(e model.LogEntry, identity []byte) ([]byte, error) {
	ip := e.Address.IP()
	if ip == nil {
		return nil, errors.New(errors.KindInternal, "entry has no address")
	}

	family := dnstap.SocketFamily_INET
	if e.Address.Family() == model.FamilyIPv6 {
		family = dnstap.SocketFamily_INET6
	}

	query, err := QueryMessage(e)
	if err != nil {
		return nil, err
	}

	msg := &dnstap.Message{
		Type:           dnstap.Message_AUTH_QUERY.Enum(),
		SocketFamily:   family.Enum(),
		SocketProtocol: dnstap.SocketProtocol_UDP.Enum(),
		QueryAddress:   []byte(ip),
		QueryPort:      proto.Uint32(uint32(e.Port)),
		QueryMessage:   query,
	}
	if e.Timestamp != nil {
		msg.QueryTimeSec = proto.Uint64(uint64(e.Timestamp.Unix()))
		msg.QueryTimeNsec = proto.Uint32(uint32(e.Timestamp.Nanosecond()))
	}

	dt := &dnstap.Dnstap{
		Type:     dnstap.Dnstap_MESSAGE.Enum(),
		Identity: identity,
		Message:  msg,
	}
	b, err := proto.Marshal(dt)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, "marshal dnstap message")
	}
	return b, nil
}

// QueryMessage rebuilds the wire-format DNS query an entry describes.
// The hex query id and record type are reused when they parse;
// otherwise they are zero.
func QueryMessage(e model.LogEntry) ([]byte, error) {
	name := e.Name
	if name == "" {
		name = "."
	}

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), parseHex16(e.RawType))
	m.Id = parseHex16(e.QueryID)
	m.RecursionDesired = false

	b, err := m.Pack()
	if err != nil {
		return nil, errors.Attr(errors.Wrapf(err, errors.KindInternal, "pack query for %q", e.Name), "token", e.Name)
	}
	return b, nil
}

func parseHex16(s string) uint16 {
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0
	}
	return uint16(v)
}
