// Package wcs implements the world coordinate system mapping between image
// pixels and celestial coordinates.
package wcs

import (
	"strconv"
	"strings"
)

// Header holds FITS-style WCS keywords. Keys are upper-case keyword names,
// values are the raw value text with string quotes already removed.
type Header map[string]string

// Has reports whether the keyword is present.
func (h Header) Has(key string) bool {
	_, ok := h[strings.ToUpper(key)]
	return ok
}

// Set stores a raw value for a keyword.
func (h Header) Set(key, value string) {
	h[strings.ToUpper(key)] = value
}

// SetFloat stores a numeric value for a keyword.
func (h Header) SetFloat(key string, v float64) {
	h.Set(key, strconv.FormatFloat(v, 'G', -1, 64))
}

// SetInt stores an integer value for a keyword.
func (h Header) SetInt(key string, v int) {
	h.Set(key, strconv.Itoa(v))
}

// Value returns the trimmed raw value of a keyword, or "" when absent.
func (h Header) Value(key string) string {
	return strings.TrimSpace(h[strings.ToUpper(key)])
}

// Float parses a keyword as a number. The boolean is false when the keyword
// is absent or not numeric.
func (h Header) Float(key string) (float64, bool) {
	v, ok := h[strings.ToUpper(key)]
	if !ok {
		return 0, false
	}
	// FITS allows Fortran-style exponents (1.0D-03).
	v = strings.Replace(strings.TrimSpace(v), "D", "E", 1)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Int parses a keyword as a number and truncates it to an int.
func (h Header) Int(key string) (int, bool) {
	f, ok := h.Float(key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Clone returns an independent copy of the header.
func (h Header) Clone() Header {
	out := make(Header, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
