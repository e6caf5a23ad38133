// Package marshal imports and exports index mappings. The on-disk format is
// chosen by file extension only.
package marshal

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Format identifies an on-disk encoding.
type Format int

const (
	// FormatGob is the binary serialized-object format (default, e.g. ".pic").
	FormatGob Format = iota
	// FormatJSON is indented JSON (".json").
	FormatJSON
	// FormatZstd is zstd-compressed gob (".zst").
	FormatZstd
	// FormatLZ4 is lz4-framed gob (".lz4").
	FormatLZ4
)

// String implements fmt.Stringer.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatZstd:
		return "gob+zstd"
	case FormatLZ4:
		return "gob+lz4"
	default:
		return "gob"
	}
}

// FormatForPath maps a file path to its format by extension.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".zst", ".zstd":
		return FormatZstd
	case ".lz4":
		return FormatLZ4
	default:
		return FormatGob
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil)
}

// Encode writes v to w in format f.
func Encode(w io.Writer, f Format, v any) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)

	case FormatZstd:
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(v); err != nil {
			return err
		}
		enc, err := getZstdEncoder()
		if err != nil {
			return fmt.Errorf("create zstd encoder: %w", err)
		}
		defer zstdEncoderPool.Put(enc)
		_, err = w.Write(enc.EncodeAll(buf.Bytes(), nil))
		return err

	case FormatLZ4:
		zw := lz4.NewWriter(w)
		if err := gob.NewEncoder(zw).Encode(v); err != nil {
			return err
		}
		return zw.Close()

	default:
		return gob.NewEncoder(w).Encode(v)
	}
}

// Decode reads a value in format f from r into v, which must be a pointer.
func Decode(r io.Reader, f Format, v any) error {
	switch f {
	case FormatJSON:
		return json.NewDecoder(r).Decode(v)

	case FormatZstd:
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		dec, err := getZstdDecoder()
		if err != nil {
			return fmt.Errorf("create zstd decoder: %w", err)
		}
		defer zstdDecoderPool.Put(dec)
		raw, err := dec.DecodeAll(data, nil)
		if err != nil {
			return fmt.Errorf("zstd decode: %w", err)
		}
		return gob.NewDecoder(bytes.NewReader(raw)).Decode(v)

	case FormatLZ4:
		return gob.NewDecoder(lz4.NewReader(r)).Decode(v)

	default:
		return gob.NewDecoder(r).Decode(v)
	}
}

// countingWriter discards bytes and counts them.
type countingWriter struct{ n int }

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += len(p)
	return len(p), nil
}

// EncodedSize returns the gob-encoded size of v in bytes, used as an
// approximation of its in-memory footprint.
func EncodedSize(v any) (int, error) {
	var cw countingWriter
	if err := gob.NewEncoder(&cw).Encode(v); err != nil {
		return 0, err
	}
	return cw.n, nil
}
