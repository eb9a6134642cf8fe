// Package stream reads tinydns query logs line by line and yields
// decoded entries one at a time.
package stream

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"tinydns-logstat/decoder"
	"tinydns-logstat/errors"
	"tinydns-logstat/logging"
	"tinydns-logstat/model"
)

// Stdin is the path that makes Open read from standard input.
const Stdin = "-"

// MaxLineSize is the longest line the stream decodes. Longer lines are
// reported as malformed and, in lenient mode, skipped.
const MaxLineSize = 64 * 1024

// Decoder is the part of decoder.LineDecoder the stream needs.
type Decoder interface {
	Decode(line string) (model.LogEntry, error)
}

// Stream is a single-pass iterator over decoded log entries. By default
// the first undecodable line ends the stream and is reported by Err.
// The underlying reader, if closable, is released when the stream is
// exhausted, fails, or is closed.
type Stream struct {
	reader  *bufio.Reader
	closer  io.Closer
	decoder Decoder
	lenient bool
	logger  *logging.Logger

	entry   model.LogEntry
	line    int
	skipped int
	err     error
	done    bool
}

// Option configures a Stream.
type Option func(*Stream)

// WithDecoder replaces the default line decoder.
func WithDecoder(d Decoder) Option {
	return func(s *Stream) { s.decoder = d }
}

// WithLenient makes the stream skip undecodable lines instead of stopping.
func WithLenient(lenient bool) Option {
	return func(s *Stream) { s.lenient = lenient }
}

// WithLogger sets the logger used to report skipped lines.
func WithLogger(l *logging.Logger) Option {
	return func(s *Stream) { s.logger = l }
}

// New returns a Stream over r. If r is an io.Closer it is closed when
// the stream ends.
func New(r io.Reader, opts ...Option) *Stream {
	s := &Stream{
		reader:  bufio.NewReader(r),
		decoder: decoder.NewLineDecoder(),
	}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.Default().WithComponent("stream")
	}
	return s
}

// Open opens path (or stdin for "-") and returns a Stream over it.
func Open(path string, opts ...Option) (*Stream, error) {
	if path == Stdin {
		// stdin is not ours to close
		return New(io.NopCloser(os.Stdin), opts...), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Attr(errors.Wrapf(err, errors.KindIO, "cannot open %s", path), "path", path)
	}
	return New(f, opts...), nil
}

// Next advances to the next decoded entry. It returns false at end of
// input or on the first error; Err distinguishes the two.
func (s *Stream) Next() bool {
	if s.done {
		return false
	}
	for {
		raw, tooLong, err := s.readLine()
		if err == io.EOF {
			s.finish()
			return false
		}
		if err != nil {
			s.fail(errors.Attr(errors.Wrapf(err, errors.KindIO, "read failed after line %d", s.line), "line", s.line))
			return false
		}
		s.line++

		var entry model.LogEntry
		if tooLong {
			err = errors.Attr(errors.Errorf(errors.KindMalformedLine, "line longer than %d bytes", MaxLineSize), "limit", MaxLineSize)
		} else {
			entry, err = s.decoder.Decode(raw)
		}
		if err == nil {
			s.entry = entry
			return true
		}

		err = errors.Wrapf(err, errors.RootKind(err), "line %d", s.line)
		err = errors.Attr(err, "line", s.line)
		err = errors.Attr(err, "raw", raw)

		if !s.lenient {
			s.fail(err)
			return false
		}
		s.skipped++
		s.logger.Warn("skipping undecodable line",
			"line", s.line,
			"rule", errors.RootKind(err).String(),
			"err", err)
	}
}

// readLine returns the next line without its terminator. A line over
// MaxLineSize is consumed in full but only its first MaxLineSize bytes
// are kept. io.EOF is returned only when no bytes remain.
func (s *Stream) readLine() (string, bool, error) {
	var (
		buf     []byte
		tooLong bool
		read    bool
	)
	for {
		chunk, err := s.reader.ReadSlice('\n')
		read = read || len(chunk) > 0
		if !tooLong {
			buf = append(buf, chunk...)
			// two bytes of slack for the line terminator
			if len(buf) > MaxLineSize+2 {
				tooLong = true
				buf = buf[:MaxLineSize]
			}
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err == io.EOF && read {
			break
		}
		if err != nil {
			return "", false, err
		}
		break
	}
	if !tooLong {
		buf = bytes.TrimSuffix(buf, []byte("\n"))
		buf = bytes.TrimSuffix(buf, []byte("\r"))
		tooLong = len(buf) > MaxLineSize
	}
	return string(buf), tooLong, nil
}

// Entry returns the entry produced by the last successful Next.
func (s *Stream) Entry() model.LogEntry { return s.entry }

// Err returns the error that ended the stream, or nil at clean EOF.
func (s *Stream) Err() error { return s.err }

// Line returns the number of lines read so far.
func (s *Stream) Line() int { return s.line }

// Skipped returns the number of lines dropped in lenient mode.
func (s *Stream) Skipped() int { return s.skipped }

// Close releases the underlying reader. It is safe to call more than once.
func (s *Stream) Close() error {
	s.done = true
	if s.closer == nil {
		return nil
	}
	c := s.closer
	s.closer = nil
	return c.Close()
}

func (s *Stream) fail(err error) {
	s.err = err
	s.finish()
}

func (s *Stream) finish() {
	s.entry = model.LogEntry{}
	if err := s.Close(); err != nil && s.err == nil {
		s.err = errors.Wrap(err, errors.KindIO, "close failed")
	}
}
