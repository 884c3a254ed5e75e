// Package xisf reads metadata and attached data blocks from XISF 1.0
// containers.
package xisf

import (
	"bytes"
	"encoding/binary"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Signature is the 8-byte magic at the start of every XISF 1.0 file.
const Signature = "XISF0100"

const reservedLen = 4

// Errors returned by the reader.
var (
	ErrInvalidSignature       = errors.New("file doesn't have XISF signature")
	ErrUnsupportedCompression = errors.New("unsupported XISF compression codec")
	ErrUnsupportedLocation    = errors.New("unsupported XISF data block location")
	ErrChecksumMismatch       = errors.New("XISF data block checksum mismatch")
	ErrNoImage                = errors.New("XISF file has no image")
)

// Reader gives access to an XISF container's header and attachments.
type Reader struct {
	rs     io.ReadSeeker
	closer io.Closer
	images []ImageMeta
}

// ImageMeta describes one Image element of the XML header.
type ImageMeta struct {
	ID           string
	Width        int
	Height       int
	Channels     int
	SampleFormat string
	ColorSpace   string
	Properties   map[string]Property
	Keywords     []Keyword
	block        block
}

// Keyword is a FITS header keyword preserved in the XML header.
type Keyword struct {
	Name    string
	Value   string
	Comment string
}

type xmlDoc struct {
	XMLName xml.Name   `xml:"xisf"`
	Version string     `xml:"version,attr"`
	Images  []xmlImage `xml:"Image"`
}

type xmlImage struct {
	ID           string        `xml:"id,attr"`
	Geometry     string        `xml:"geometry,attr"`
	SampleFormat string        `xml:"sampleFormat,attr"`
	ColorSpace   string        `xml:"colorSpace,attr"`
	Location     string        `xml:"location,attr"`
	Compression  string        `xml:"compression,attr"`
	Checksum     string        `xml:"checksum,attr"`
	ByteOrder    string        `xml:"byteOrder,attr"`
	Properties   []xmlProperty `xml:"Property"`
	Keywords     []xmlKeyword  `xml:"FITSKeyword"`
}

type xmlProperty struct {
	ID          string   `xml:"id,attr"`
	Type        string   `xml:"type,attr"`
	Value       string   `xml:"value,attr"`
	Length      string   `xml:"length,attr"`
	Rows        string   `xml:"rows,attr"`
	Columns     string   `xml:"columns,attr"`
	Location    string   `xml:"location,attr"`
	Compression string   `xml:"compression,attr"`
	Checksum    string   `xml:"checksum,attr"`
	ByteOrder   string   `xml:"byteOrder,attr"`
	Text        string   `xml:",chardata"`
	Data        *xmlData `xml:"Data"`
}

type xmlData struct {
	Encoding    string `xml:"encoding,attr"`
	Compression string `xml:"compression,attr"`
	Text        string `xml:",chardata"`
}

type xmlKeyword struct {
	Name    string `xml:"name,attr"`
	Value   string `xml:"value,attr"`
	Comment string `xml:"comment,attr"`
}

// Open opens an XISF file. The caller must Close the returned Reader.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening XISF file: %w", err)
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewReader reads and parses the container header. Nothing beyond the
// signature is read when the signature does not match.
func NewReader(rs io.ReadSeeker) (*Reader, error) {
	sig := make([]byte, len(Signature))
	if _, err := io.ReadFull(rs, sig); err != nil {
		return nil, fmt.Errorf("reading XISF signature: %w", ErrInvalidSignature)
	}
	if string(sig) != Signature {
		return nil, ErrInvalidSignature
	}

	var headerLen uint32
	if err := binary.Read(rs, binary.LittleEndian, &headerLen); err != nil {
		return nil, fmt.Errorf("reading XISF header length: %w", err)
	}
	if _, err := io.CopyN(io.Discard, rs, reservedLen); err != nil {
		return nil, fmt.Errorf("skipping XISF reserved field: %w", err)
	}

	raw := make([]byte, headerLen)
	if _, err := io.ReadFull(rs, raw); err != nil {
		return nil, fmt.Errorf("reading XISF header: %w", err)
	}
	// the header block may be padded with zeros
	raw = bytes.TrimRight(raw, "\x00")

	var doc xmlDoc
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing XISF header: %w", err)
	}

	r := &Reader{rs: rs}
	for i, xi := range doc.Images {
		meta, err := r.imageMeta(xi)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		r.images = append(r.images, meta)
	}
	return r, nil
}

// Close closes the underlying file when the Reader was created by Open.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Images returns the metadata of every image in the container.
func (r *Reader) Images() []ImageMeta {
	return r.images
}

// ImageData returns the decompressed pixel data block of an image.
// Only attachment blocks are supported.
func (r *Reader) ImageData(index int) ([]byte, error) {
	if index < 0 || index >= len(r.images) {
		return nil, ErrNoImage
	}
	b := r.images[index].block
	if b.method != "attachment" {
		return nil, fmt.Errorf("image location %q: %w", b.method, ErrUnsupportedLocation)
	}
	return r.readBlock(b)
}

func (r *Reader) imageMeta(xi xmlImage) (ImageMeta, error) {
	meta := ImageMeta{
		ID:           xi.ID,
		SampleFormat: xi.SampleFormat,
		ColorSpace:   xi.ColorSpace,
		Properties:   make(map[string]Property, len(xi.Properties)),
		Channels:     1,
	}

	geom := strings.Split(xi.Geometry, ":")
	if len(geom) >= 2 {
		meta.Width, _ = strconv.Atoi(geom[0])
		meta.Height, _ = strconv.Atoi(geom[1])
	}
	if len(geom) >= 3 {
		meta.Channels, _ = strconv.Atoi(geom[2])
	}

	b, err := parseBlock(xi.Location, xi.Compression, xi.Checksum, xi.ByteOrder)
	if err != nil {
		return ImageMeta{}, err
	}
	meta.block = b

	for _, xp := range xi.Properties {
		p, err := r.property(xp)
		if err != nil {
			return ImageMeta{}, fmt.Errorf("property %s: %w", xp.ID, err)
		}
		meta.Properties[p.ID] = p
	}
	for _, k := range xi.Keywords {
		meta.Keywords = append(meta.Keywords, Keyword{
			Name:    strings.ToUpper(strings.TrimSpace(k.Name)),
			Value:   k.Value,
			Comment: k.Comment,
		})
	}
	return meta, nil
}
