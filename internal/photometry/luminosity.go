package photometry

import "regexp"

// Marker sizes per luminosity class, largest for hypergiants.
var luminositySizes = map[string]float64{
	"0":   22,
	"Ia":  20,
	"Iab": 18,
	"Ib":  16,
	"II":  14,
	"III": 12,
	"IV":  10,
	"V":   8,
	"VI":  6,
	"VII": 4,
}

// MainSequenceSize is the size for class V, used when no class is found.
const MainSequenceSize = 8.0

// luminosityRE finds the first luminosity class after the spectral class
// and subclass, e.g. "III" in "G8III-IV". A bare 0 is only a class when
// whitespace separates it from the subclass ("O9.5 0", "B0 0-Ia").
var luminosityRE = regexp.MustCompile(`^\s*[A-Za-z]+[0-9.]*(?:\s+(0)(?:[^0-9.]|$)|[^IV]*?(Ia0|Iab|Ia|Ib|III|II|IV|VII|VI|V))`)

// LuminosityClass extracts the luminosity class from a spectral type.
func LuminosityClass(spType string) (string, bool) {
	m := luminosityRE.FindStringSubmatch(spType)
	switch {
	case m == nil:
		return "", false
	case m[1] == "0", m[2] == "Ia0":
		return "0", true
	}
	return m[2], true
}

// LuminositySize returns the marker size for a spectral type, defaulting
// to the main-sequence size.
func LuminositySize(spType string) float64 {
	class, ok := LuminosityClass(spType)
	if !ok {
		return MainSequenceSize
	}
	return luminositySizes[class]
}
