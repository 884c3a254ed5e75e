// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Terminal browser for overlay products, Parquet diagram export
// 0.2.0 - astrometry.net solving, XISF compression codecs, proper-motion diagram
// 0.1.0 - Initial release: WCS projections, FITS/XISF headers, SIMBAD overlays, coordinate grid
