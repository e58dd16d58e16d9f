// pkg/binio/reader.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package binio provides a positioned little-endian view over an
// in-memory byte slice. Scenery files are small enough (tens of MB at
// worst) that reading them whole is simpler and faster than buffered
// streaming.
package binio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"unicode/utf8"
)

// ErrPastEOF is the recoverable sentinel for reads beyond the end of
// the file. Callers abandon the current record and reposition.
var ErrPastEOF = errors.New("read past end of file")

type Encoding int

const (
	EncodingLatin1 Encoding = iota
	EncodingUTF8
)

// Reader is a positioned cursor over a byte slice. Read methods return
// the zero value and latch an error once any read fails; Err reports
// the first failure. This keeps record parsers free of per-read error
// plumbing while still surfacing truncation.
type Reader struct {
	data []byte
	pos  int
	err  error
	name string
}

func NewReader(data []byte, name string) *Reader {
	return &Reader{data: data, name: name}
}

// NewReaderFromFile reads the whole file into memory.
func NewReaderFromFile(path string) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewReader(data, path), nil
}

func (r *Reader) Name() string { return r.name }
func (r *Reader) Size() int { return len(r.data) }
func (r *Reader) Tell() int { return r.pos }

// Err returns the first read failure, or nil.
func (r *Reader) Err() error { return r.err }

// ClearErr resets the latched error so the cursor can be reused after
// repositioning past a bad record.
func (r *Reader) ClearErr() { r.err = nil }

func (r *Reader) Seek(offset int) {
	if offset < 0 || offset > len(r.data) {
		r.fail(offset)
		return
	}
	r.pos = offset
}

func (r *Reader) Skip(n int) {
	r.Seek(r.pos + n)
}

func (r *Reader) fail(at int) {
	if r.err == nil {
		r.err = fmt.Errorf("%s: offset %#x of %#x: %w", r.name, at, len(r.data), ErrPastEOF)
	}
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.pos+n > len(r.data) {
		r.fail(r.pos)
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *Reader) U8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) U16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *Reader) U32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) I16() int16 { return int16(r.U16()) }
func (r *Reader) I32() int32 { return int32(r.U32()) }

func (r *Reader) F32() float32 {
	return math.Float32frombits(r.U32())
}

func (r *Reader) F64() float64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

// String reads exactly n bytes, trims at the first NUL and decodes.
func (r *Reader) String(n int, enc Encoding) string {
	b := r.take(n)
	if b == nil {
		return ""
	}
	if i := strings.IndexByte(string(b), 0); i != -1 {
		b = b[:i]
	}

	switch enc {
	case EncodingUTF8:
		if utf8.Valid(b) {
			return string(b)
		}
		fallthrough
	default:
		// LATIN-1: each byte maps onto the same code point.
		var sb strings.Builder
		sb.Grow(len(b))
		for _, c := range b {
			sb.WriteRune(rune(c))
		}
		return sb.String()
	}
}
