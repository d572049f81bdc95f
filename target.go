package mifiexporter

import (
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"strings"
)

// ErrInvalidTarget is returned when a target is not a plain IPv4 or IPv6 literal.
var ErrInvalidTarget = errors.New("invalid target address")

// Target is the network address of the device being probed.
//
// Target is immutable after creation via [ParseTarget] and safe to share
// between goroutines. The zero value is not a usable target; see
// [Target.IsZero].
type Target struct {
	addr netip.Addr
}

// ParseTarget parses an IPv4 or IPv6 literal such as "192.168.1.1" or "::1".
//
// Surrounding whitespace is ignored. Hostnames, CIDR prefixes, ports and
// zoned IPv6 addresses ("fe80::1%eth0") are rejected with an error wrapping
// [ErrInvalidTarget].
//
// Example:
//
//	target, err := mifiexporter.ParseTarget("192.168.0.1")
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Target{}, fmt.Errorf("%w: address is empty", ErrInvalidTarget)
	}

	addr, err := netip.ParseAddr(s)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %q is not an IPv4 or IPv6 literal", ErrInvalidTarget, s)
	}
	if addr.Zone() != "" {
		return Target{}, fmt.Errorf("%w: zoned address %q is not supported", ErrInvalidTarget, s)
	}

	return Target{addr: addr}, nil
}

// MustParseTarget is like [ParseTarget] but panics on error.
// Intended for tests and package-level variables with constant input.
func MustParseTarget(s string) Target {
	t, err := ParseTarget(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Addr returns the underlying address.
func (t Target) Addr() netip.Addr {
	return t.addr
}

// IsZero reports whether t is the zero Target.
func (t Target) IsZero() bool {
	return !t.addr.IsValid()
}

// Is6 reports whether the target is an IPv6 address, including
// IPv4-mapped IPv6 addresses.
func (t Target) Is6() bool {
	return t.addr.Is6()
}

// String returns the canonical compressed form, e.g. "::1" for
// "0:0:0:0:0:0:0:1". Returns "" for the zero Target.
func (t Target) String() string {
	if t.IsZero() {
		return ""
	}
	return t.addr.String()
}

// Label returns the value used for the mifi_ip metric label.
// It is the same as [Target.String].
func (t Target) Label() string {
	return t.String()
}

// URL returns the probe URL. IPv6 literals are bracketed:
// "http://192.168.1.1/" and "http://[::1]/".
func (t Target) URL() string {
	if t.IsZero() {
		return ""
	}
	host := t.addr.String()
	if t.addr.Is6() {
		host = "[" + host + "]"
	}
	u := url.URL{Scheme: "http", Host: host, Path: "/"}
	return u.String()
}
