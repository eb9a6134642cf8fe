package model

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Family tags the variant held by an Address.
type Family uint8

const (
	FamilyNone Family = iota
	FamilyIPv4
	FamilyIPv6
)

func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "ipv4"
	case FamilyIPv6:
		return "ipv6"
	default:
		return "none"
	}
}

// Address is the decoded client address of a log line: either four
// octets or eight 16-bit groups. The zero value holds neither.
type Address struct {
	family Family
	octets [4]uint8
	groups [8]uint16
}

// IPv4 returns an Address holding the given octets.
func IPv4(octets [4]uint8) Address {
	return Address{family: FamilyIPv4, octets: octets}
}

// IPv6 returns an Address holding the given groups.
func IPv6(groups [8]uint16) Address {
	return Address{family: FamilyIPv6, groups: groups}
}

func (a Address) Family() Family { return a.family }

// Octets returns the IPv4 octets; ok is false for any other variant.
func (a Address) Octets() (octets [4]uint8, ok bool) {
	return a.octets, a.family == FamilyIPv4
}

// Groups returns the IPv6 groups; ok is false for any other variant.
func (a Address) Groups() (groups [8]uint16, ok bool) {
	return a.groups, a.family == FamilyIPv6
}

// String renders dotted decimal for IPv4 and eight uncompressed
// four-digit groups for IPv6, the way tinydns tooling prints them.
func (a Address) String() string {
	switch a.family {
	case FamilyIPv4:
		parts := make([]string, 4)
		for i, o := range a.octets {
			parts[i] = strconv.Itoa(int(o))
		}
		return strings.Join(parts, ".")
	case FamilyIPv6:
		parts := make([]string, 8)
		for i, g := range a.groups {
			parts[i] = fmt.Sprintf("%04x", g)
		}
		return strings.Join(parts, ":")
	default:
		return ""
	}
}

// Hex re-encodes the address in the lowercase hex form used in the log.
func (a Address) Hex() string {
	var sb strings.Builder
	switch a.family {
	case FamilyIPv4:
		for _, o := range a.octets {
			fmt.Fprintf(&sb, "%02x", o)
		}
	case FamilyIPv6:
		for _, g := range a.groups {
			fmt.Fprintf(&sb, "%04x", g)
		}
	}
	return sb.String()
}

// IP converts the address to a net.IP (4 or 16 bytes), or nil.
func (a Address) IP() net.IP {
	switch a.family {
	case FamilyIPv4:
		return net.IPv4(a.octets[0], a.octets[1], a.octets[2], a.octets[3]).To4()
	case FamilyIPv6:
		ip := make(net.IP, net.IPv6len)
		for i, g := range a.groups {
			ip[2*i] = byte(g >> 8)
			ip[2*i+1] = byte(g)
		}
		return ip
	default:
		return nil
	}
}

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}
