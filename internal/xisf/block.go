package xisf

import (
	"bytes"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// block locates a data block and describes how it is stored.
type block struct {
	method    string // attachment, inline or embedded
	position  int64
	size      int64
	encoding  string // inline/embedded text encoding
	text      string
	codec     string
	shuffled  bool
	rawSize   int
	itemSize  int
	sumAlgo   string
	sum       []byte
	bigEndian bool
}

func parseBlock(location, compression, checksum, byteOrder string) (block, error) {
	var b block
	b.bigEndian = byteOrder == "big"

	if location != "" {
		parts := strings.Split(location, ":")
		b.method = parts[0]
		switch b.method {
		case "attachment":
			if len(parts) != 3 {
				return b, fmt.Errorf("malformed location %q", location)
			}
			var err error
			if b.position, err = strconv.ParseInt(parts[1], 10, 64); err != nil {
				return b, fmt.Errorf("location position: %w", err)
			}
			if b.size, err = strconv.ParseInt(parts[2], 10, 64); err != nil {
				return b, fmt.Errorf("location size: %w", err)
			}
		case "inline":
			if len(parts) > 1 {
				b.encoding = parts[1]
			}
		}
	}

	if compression != "" {
		parts := strings.Split(compression, ":")
		if len(parts) < 2 {
			return b, fmt.Errorf("malformed compression %q", compression)
		}
		codec, sh := strings.CutSuffix(parts[0], "+sh")
		b.codec, b.shuffled = codec, sh
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return b, fmt.Errorf("uncompressed size: %w", err)
		}
		b.rawSize = n
		b.itemSize = 1
		if len(parts) > 2 {
			if b.itemSize, err = strconv.Atoi(parts[2]); err != nil {
				return b, fmt.Errorf("item size: %w", err)
			}
		}
	}

	if checksum != "" {
		algo, digest, ok := strings.Cut(checksum, ":")
		if !ok {
			return b, fmt.Errorf("malformed checksum %q", checksum)
		}
		sum, err := hex.DecodeString(strings.TrimSpace(digest))
		if err != nil {
			return b, fmt.Errorf("checksum digest: %w", err)
		}
		b.sumAlgo, b.sum = strings.ToLower(algo), sum
	}

	return b, nil
}

// readBlock loads, verifies and decompresses a data block.
func (r *Reader) readBlock(b block) ([]byte, error) {
	var data []byte
	switch b.method {
	case "attachment":
		if _, err := r.rs.Seek(b.position, io.SeekStart); err != nil {
			return nil, fmt.Errorf("seeking data block: %w", err)
		}
		data = make([]byte, b.size)
		if _, err := io.ReadFull(r.rs, data); err != nil {
			return nil, fmt.Errorf("reading data block: %w", err)
		}
	case "inline", "embedded":
		var err error
		if data, err = decodeText(b.encoding, b.text); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("location %q: %w", b.method, ErrUnsupportedLocation)
	}

	if err := verifyChecksum(b, data); err != nil {
		return nil, err
	}
	return decompress(b, data)
}

func decodeText(encoding, text string) ([]byte, error) {
	text = strings.Join(strings.Fields(text), "")
	switch strings.ToLower(encoding) {
	case "base64":
		return base64.StdEncoding.DecodeString(text)
	case "hex", "base16":
		return hex.DecodeString(text)
	}
	return nil, fmt.Errorf("encoding %q: %w", encoding, ErrUnsupportedLocation)
}

func verifyChecksum(b block, data []byte) error {
	if b.sumAlgo == "" {
		return nil
	}
	var h hash.Hash
	switch b.sumAlgo {
	case "sha1", "sha-1":
		h = sha1.New()
	case "sha256", "sha-256":
		h = sha256.New()
	case "sha512", "sha-512":
		h = sha512.New()
	default:
		return fmt.Errorf("checksum algorithm %q: %w", b.sumAlgo, ErrChecksumMismatch)
	}
	h.Write(data)
	if !bytes.Equal(h.Sum(nil), b.sum) {
		return ErrChecksumMismatch
	}
	return nil
}

func decompress(b block, data []byte) ([]byte, error) {
	if b.codec == "" {
		return data, nil
	}

	var out []byte
	switch b.codec {
	case "zlib":
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("zlib: %w", err)
		}
		defer zr.Close()
		out = make([]byte, 0, b.rawSize)
		buf := bytes.NewBuffer(out)
		if _, err := io.Copy(buf, zr); err != nil {
			return nil, fmt.Errorf("zlib: %w", err)
		}
		out = buf.Bytes()
	case "lz4", "lz4hc":
		out = make([]byte, b.rawSize)
		n, err := lz4.UncompressBlock(data, out)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.codec, err)
		}
		out = out[:n]
	case "zstd":
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		if out, err = dec.DecodeAll(data, make([]byte, 0, b.rawSize)); err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
	default:
		return nil, fmt.Errorf("codec %q: %w", b.codec, ErrUnsupportedCompression)
	}

	if len(out) != b.rawSize {
		return nil, fmt.Errorf("%s: decompressed %d bytes, expected %d", b.codec, len(out), b.rawSize)
	}
	if b.shuffled && b.itemSize > 1 {
		out = unshuffle(out, b.itemSize)
	}
	return out, nil
}

// unshuffle reverses byte shuffling: the input holds byte 0 of every item,
// then byte 1 of every item, and so on. Trailing bytes that do not fill an
// item are stored unshuffled.
func unshuffle(in []byte, itemSize int) []byte {
	n := len(in) / itemSize
	out := make([]byte, len(in))
	for j := 0; j < itemSize; j++ {
		for i := 0; i < n; i++ {
			out[i*itemSize+j] = in[j*n+i]
		}
	}
	copy(out[n*itemSize:], in[n*itemSize:])
	return out
}
