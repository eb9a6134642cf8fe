package decoder

import (
	"strconv"
	"time"

	"tinydns-logstat/errors"
)

// TimestampDecoder turns the hex body of a timestamp token (sentinel
// already removed) into a UTC time.
type TimestampDecoder interface {
	DecodeTimestamp(token string) (time.Time, error)
}

const (
	tai64nLen  = 24
	tai64Epoch = uint64(1) << 62
)

// leapOffsets lists TAI-UTC in seconds, effective from the given
// UTC unix time.
var leapOffsets = []struct {
	since  int64
	offset int64
}{
	{63072000, 10},   // 1972-01-01
	{78796800, 11},   // 1972-07-01
	{94694400, 12},   // 1973-01-01
	{126230400, 13},  // 1974-01-01
	{157766400, 14},  // 1975-01-01
	{189302400, 15},  // 1976-01-01
	{220924800, 16},  // 1977-01-01
	{252460800, 17},  // 1978-01-01
	{283996800, 18},  // 1979-01-01
	{315532800, 19},  // 1980-01-01
	{362793600, 20},  // 1981-07-01
	{394329600, 21},  // 1982-07-01
	{425865600, 22},  // 1983-07-01
	{489024000, 23},  // 1985-07-01
	{567993600, 24},  // 1988-01-01
	{631152000, 25},  // 1990-01-01
	{662688000, 26},  // 1991-01-01
	{709948800, 27},  // 1992-07-01
	{741484800, 28},  // 1993-07-01
	{773020800, 29},  // 1994-07-01
	{820454400, 30},  // 1996-01-01
	{867715200, 31},  // 1997-07-01
	{915148800, 32},  // 1999-01-01
	{1136073600, 33}, // 2006-01-01
	{1230768000, 34}, // 2009-01-01
	{1341100800, 35}, // 2012-07-01
	{1435708800, 36}, // 2015-07-01
	{1483228800, 37}, // 2017-01-01
}

// TAI64NDecoder decodes TAI64N labels as written by multilog.
type TAI64NDecoder struct{}

func (TAI64NDecoder) DecodeTimestamp(token string) (time.Time, error) {
	if len(token) != tai64nLen {
		return time.Time{}, errors.Attr(
			errors.Errorf(errors.KindInvalidTimestamp, "invalid TAI64N timestamp %q: want %d hex digits, got %d", token, tai64nLen, len(token)),
			"token", token)
	}
	if !isHex(token) {
		return time.Time{}, errors.Attr(
			errors.Errorf(errors.KindInvalidHexDigits, "invalid hex digits in timestamp %q", token),
			"token", token)
	}

	label, _ := strconv.ParseUint(token[:16], 16, 64)
	nanos, _ := strconv.ParseUint(token[16:], 16, 32)
	if label < tai64Epoch || label >= tai64Epoch<<1 || nanos >= uint64(time.Second) {
		return time.Time{}, errors.Attr(
			errors.Errorf(errors.KindInvalidTimestamp, "TAI64N timestamp %q out of range", token),
			"token", token)
	}

	tai := int64(label - tai64Epoch)
	return time.Unix(tai-taiOffset(tai), int64(nanos)).UTC(), nil
}

// taiOffset returns TAI-UTC for a TAI second count since 1970.
func taiOffset(tai int64) int64 {
	var offset int64
	for _, l := range leapOffsets {
		if tai-l.offset < l.since {
			break
		}
		offset = l.offset
	}
	return offset
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
