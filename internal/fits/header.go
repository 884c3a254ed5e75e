// Package fits reads and writes FITS primary headers.
package fits

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/litescript/ls-skyfield/internal/wcs"
)

const (
	cardSize      = 80
	cardsPerBlock = 36
	blockSize     = cardSize * cardsPerBlock
)

// ErrNoEnd means the input ended before the END card.
var ErrNoEnd = errors.New("FITS header has no END card")

// ReadHeaderFile reads the primary header of a FITS file.
func ReadHeaderFile(path string) (wcs.Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening FITS file: %w", err)
	}
	defer f.Close()
	return ReadHeader(f)
}

// ReadHeader reads 80-byte cards in 2880-byte blocks up to the END card.
// String values are unquoted and logical values become "True"/"False".
// Pixel data after the header is not read.
func ReadHeader(r io.Reader) (wcs.Header, error) {
	h := wcs.Header{}
	block := make([]byte, blockSize)

	for {
		if _, err := io.ReadFull(r, block); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, ErrNoEnd
			}
			return nil, fmt.Errorf("reading FITS header block: %w", err)
		}

		for i := 0; i < cardsPerBlock; i++ {
			card := string(block[i*cardSize : (i+1)*cardSize])
			keyword := strings.TrimSpace(card[:8])

			if keyword == "END" {
				return h, nil
			}
			switch keyword {
			case "", "COMMENT", "HISTORY":
				continue
			}
			if card[8] != '=' {
				continue
			}

			if v := parseValue(card[10:]); v != "" {
				h[strings.ToUpper(keyword)] = v
			}
		}
	}
}

// parseValue extracts the value field of a card, dropping any comment.
func parseValue(field string) string {
	field = strings.TrimSpace(field)
	if field == "" {
		return ""
	}

	if strings.HasPrefix(field, "'") {
		// '' is an escaped quote inside a string value
		var b strings.Builder
		for i := 1; i < len(field); i++ {
			if field[i] == '\'' {
				if i+1 < len(field) && field[i+1] == '\'' {
					b.WriteByte('\'')
					i++
					continue
				}
				break
			}
			b.WriteByte(field[i])
		}
		return strings.TrimRight(b.String(), " ")
	}

	raw := strings.TrimSpace(strings.SplitN(field, "/", 2)[0])
	switch raw {
	case "T":
		return "True"
	case "F":
		return "False"
	}
	return raw
}

// leading keywords are written first, in this order
var leading = []string{
	"SIMPLE", "BITPIX", "NAXIS", "NAXIS1", "NAXIS2", "NAXIS3",
	"CTYPE1", "CTYPE2", "CRPIX1", "CRPIX2", "CRVAL1", "CRVAL2",
	"CD1_1", "CD1_2", "CD2_1", "CD2_2",
}

// WriteHeader writes h as a FITS primary header padded to a whole block.
func WriteHeader(w io.Writer, h wcs.Header) error {
	h = h.Clone()
	if !h.Has("SIMPLE") {
		h.Set("SIMPLE", "True")
	}
	if !h.Has("BITPIX") {
		h.SetInt("BITPIX", 8)
	}
	if !h.Has("NAXIS") {
		h.SetInt("NAXIS", 0)
	}

	keys := make([]string, 0, len(h))
	seen := make(map[string]bool, len(leading))
	for _, k := range leading {
		if h.Has(k) {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range h {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	keys = append(keys, rest...)

	bw := bufio.NewWriter(w)
	n := 0
	for _, k := range keys {
		if len(k) > 8 {
			continue
		}
		if _, err := bw.WriteString(formatCard(k, h[k])); err != nil {
			return err
		}
		n++
	}
	if _, err := bw.WriteString(fmt.Sprintf("%-80s", "END")); err != nil {
		return err
	}
	n++
	if pad := (cardsPerBlock - n%cardsPerBlock) % cardsPerBlock; pad > 0 {
		if _, err := bw.WriteString(strings.Repeat(" ", pad*cardSize)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func formatCard(key, value string) string {
	var v string
	switch {
	case value == "True":
		v = fmt.Sprintf("%20s", "T")
	case value == "False":
		v = fmt.Sprintf("%20s", "F")
	case isNumber(value):
		v = fmt.Sprintf("%20s", value)
	default:
		s := strings.ReplaceAll(value, "'", "''")
		v = fmt.Sprintf("'%-8s'", s)
	}
	card := fmt.Sprintf("%-8s= %s", key, v)
	if len(card) > cardSize {
		card = card[:cardSize]
	}
	return fmt.Sprintf("%-80s", card)
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
