package decoder

import (
	"strconv"

	"tinydns-logstat/errors"
	"tinydns-logstat/model"
)

// AddressDecoder turns the hex address field of a log line into an Address.
type AddressDecoder interface {
	DecodeAddress(hex string) (model.Address, error)
}

// HexAddressDecoder decodes 8 hex digits as IPv4 and 32 as IPv6.
type HexAddressDecoder struct{}

func (HexAddressDecoder) DecodeAddress(hex string) (model.Address, error) {
	switch len(hex) {
	case 8, 32:
	default:
		return model.Address{}, errors.Attr(
			errors.Errorf(errors.KindInvalidAddressLength, "'%s' is no valid IPv4 or IPv6 address", hex),
			"token", hex)
	}
	if !isHex(hex) {
		return model.Address{}, errors.Attr(
			errors.Errorf(errors.KindInvalidHexDigits, "invalid hex digits in address %q", hex),
			"token", hex)
	}

	if len(hex) == 8 {
		var octets [4]uint8
		for i := range octets {
			v, _ := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
			octets[i] = uint8(v)
		}
		return model.IPv4(octets), nil
	}

	var groups [8]uint16
	for i := range groups {
		v, _ := strconv.ParseUint(hex[4*i:4*i+4], 16, 16)
		groups[i] = uint16(v)
	}
	return model.IPv6(groups), nil
}

// decodePort parses the 4-hex-digit port field.
func decodePort(hex string) (uint16, error) {
	if len(hex) != 4 || !isHex(hex) {
		return 0, errors.Attr(
			errors.Errorf(errors.KindInvalidHexDigits, "invalid port %q: want 4 hex digits", hex),
			"token", hex)
	}
	v, err := strconv.ParseUint(hex, 16, 16)
	if err != nil {
		return 0, errors.Attr(errors.Wrapf(err, errors.KindInvalidHexDigits, "invalid port %q", hex), "token", hex)
	}
	return uint16(v), nil
}
