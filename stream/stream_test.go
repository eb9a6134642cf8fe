package stream

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinydns-logstat/errors"
	"tinydns-logstat/logging"
)

const (
	goodLine  = "@400000004a32392b2aa21dac a31c7110:a6da:0795 + 000f leela.toppoint.de"
	goodLine2 = "c0a80bff:0035:1a2b - 0001 example.org"
	noColon   = "@400000004a32392b2aa21dac a31c7110a6da0795 + 000f leela.toppoint.de"
)

type trackingReader struct {
	*strings.Reader
	closed int
}

func (r *trackingReader) Close() error {
	r.closed++
	return nil
}

func newTracking(s string) *trackingReader {
	return &trackingReader{Reader: strings.NewReader(s)}
}

func TestStream_AllValid(t *testing.T) {
	r := newTracking(goodLine + "\n" + goodLine2 + "\n")
	s := New(r, WithLogger(logging.Discard()))

	require.True(t, s.Next())
	assert.Equal(t, "leela.toppoint.de", s.Entry().Name)
	require.True(t, s.Next())
	assert.Equal(t, "example.org", s.Entry().Name)
	assert.Equal(t, "192.168.11.255", s.Entry().Address.String())

	assert.False(t, s.Next())
	assert.NoError(t, s.Err())
	assert.Equal(t, 2, s.Line())
	assert.Equal(t, 1, r.closed, "reader released at EOF")

	assert.False(t, s.Next())
	assert.NoError(t, s.Close())
	assert.Equal(t, 1, r.closed)
}

func TestStream_FailFastOnMalformedAddressPort(t *testing.T) {
	r := newTracking(noColon + "\n" + goodLine + "\n")
	s := New(r, WithLogger(logging.Discard()))

	assert.False(t, s.Next())
	err := s.Err()
	require.Error(t, err)
	assert.Equal(t, errors.KindMalformedAddressPort, errors.RootKind(err))
	assert.Equal(t, errors.KindMalformedAddressPort, errors.GetKind(err))
	assert.True(t, errors.IsDecode(err))

	attrs := errors.GetAttributes(err)
	assert.Equal(t, 1, attrs["line"])
	assert.Equal(t, noColon, attrs["raw"])
	assert.Contains(t, err.Error(), "line 1")

	assert.False(t, s.Next(), "stream stays halted")
	assert.Equal(t, 1, r.closed)
}

func TestStream_ValidThenInvalid(t *testing.T) {
	s := New(strings.NewReader(goodLine+"\nnot tinydns\n"), WithLogger(logging.Discard()))

	var names []string
	for s.Next() {
		names = append(names, s.Entry().Name)
	}
	assert.Equal(t, []string{"leela.toppoint.de"}, names)
	require.Error(t, s.Err())
	assert.Equal(t, errors.KindMalformedLine, errors.RootKind(s.Err()))
	assert.Equal(t, 2, errors.GetAttributes(s.Err())["line"])
}

func TestStream_Lenient(t *testing.T) {
	var logBuf bytes.Buffer
	logger := logging.New(logging.Config{Level: "warn", Output: &logBuf})

	input := strings.Join([]string{goodLine, noColon, "", goodLine2}, "\n")
	s := New(strings.NewReader(input), WithLenient(true), WithLogger(logger))

	count := 0
	for s.Next() {
		count++
	}
	assert.NoError(t, s.Err())
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, s.Skipped())
	assert.Equal(t, 4, s.Line())
	assert.Contains(t, logBuf.String(), "skipping undecodable line")
	assert.Contains(t, logBuf.String(), "malformed_address_port")
}

func TestStream_LongLine(t *testing.T) {
	long := strings.Repeat("x", MaxLineSize+10)
	input := goodLine + "\n" + long + "\n" + goodLine2 + "\n"

	t.Run("lenient skips it", func(t *testing.T) {
		s := New(strings.NewReader(input), WithLenient(true), WithLogger(logging.Discard()))
		var names []string
		for s.Next() {
			names = append(names, s.Entry().Name)
		}
		assert.NoError(t, s.Err())
		assert.Equal(t, []string{"leela.toppoint.de", "example.org"}, names)
		assert.Equal(t, 1, s.Skipped())
		assert.Equal(t, 3, s.Line())
	})

	t.Run("fail-fast stops on it", func(t *testing.T) {
		s := New(strings.NewReader(input), WithLogger(logging.Discard()))
		require.True(t, s.Next())
		assert.False(t, s.Next())
		require.Error(t, s.Err())
		assert.Equal(t, errors.KindMalformedLine, errors.GetKind(s.Err()))
		attrs := errors.GetAttributes(s.Err())
		assert.Equal(t, 2, attrs["line"])
		assert.Len(t, attrs["raw"], MaxLineSize)
	})
}

func TestStream_LineEndings(t *testing.T) {
	s := New(strings.NewReader(goodLine+"\r\n"+goodLine2), WithLogger(logging.Discard()))
	require.True(t, s.Next())
	assert.Equal(t, "leela.toppoint.de", s.Entry().Name)
	require.True(t, s.Next())
	assert.Equal(t, "example.org", s.Entry().Name)
	assert.False(t, s.Next())
	assert.NoError(t, s.Err())
	assert.Equal(t, 2, s.Line())
}

func TestStream_CloseEarly(t *testing.T) {
	r := newTracking(goodLine + "\n" + goodLine + "\n")
	s := New(r)

	require.True(t, s.Next())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, r.closed)
	assert.False(t, s.Next())
	assert.NoError(t, s.Err())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, r.closed)
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "current")
	require.NoError(t, os.WriteFile(path, []byte(goodLine+"\n"), 0o644))

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	require.True(t, s.Next())
	assert.Equal(t, "0795", s.Entry().QueryID)
	assert.False(t, s.Next())
	assert.NoError(t, s.Err())
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, errors.KindIO, errors.GetKind(err))
	assert.False(t, errors.IsDecode(err))
}

func TestStream_TwoPassesAreIndependent(t *testing.T) {
	input := goodLine + "\n" + goodLine2 + "\n"
	collect := func() []string {
		s := New(strings.NewReader(input))
		var out []string
		for s.Next() {
			out = append(out, s.Entry().Address.String())
		}
		require.NoError(t, s.Err())
		return out
	}
	assert.Equal(t, collect(), collect())
}
