// pkg/binio/reader_test.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package binio

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func TestReaderIntegers(t *testing.T) {
	var buf []byte
	buf = append(buf, 0x42)
	buf = binary.LittleEndian.AppendUint16(buf, 0x1234)
	buf = binary.LittleEndian.AppendUint32(buf, 0xdeadbeef)
	neg7 := int16(-7)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(neg7))
	buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(1.5))
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(-2.25))

	r := NewReader(buf, "test")
	if got := r.U8(); got != 0x42 {
		t.Errorf("U8 = %#x", got)
	}
	if got := r.U16(); got != 0x1234 {
		t.Errorf("U16 = %#x", got)
	}
	if got := r.U32(); got != 0xdeadbeef {
		t.Errorf("U32 = %#x", got)
	}
	if got := r.I16(); got != -7 {
		t.Errorf("I16 = %d", got)
	}
	if got := r.F32(); got != 1.5 {
		t.Errorf("F32 = %v", got)
	}
	if got := r.F64(); got != -2.25 {
		t.Errorf("F64 = %v", got)
	}
	if r.Err() != nil {
		t.Errorf("unexpected error %v", r.Err())
	}
	if r.Tell() != len(buf) {
		t.Errorf("Tell = %d, want %d", r.Tell(), len(buf))
	}
}

func TestReaderString(t *testing.T) {
	r := NewReader([]byte{'E', 'D', 'D', 'F', 0, 0, 0, 0}, "test")
	if got := r.String(8, EncodingLatin1); got != "EDDF" {
		t.Errorf("String = %q", got)
	}

	r = NewReader([]byte{0xc9, 'T', 'E'}, "test") // LATIN-1 É
	if got := r.String(3, EncodingLatin1); got != "ÉTE" {
		t.Errorf("latin1 String = %q", got)
	}
}

func TestReaderPastEOF(t *testing.T) {
	r := NewReader([]byte{1, 2}, "test")
	if got := r.U32(); got != 0 {
		t.Errorf("U32 past EOF = %#x, want 0", got)
	}
	if !errors.Is(r.Err(), ErrPastEOF) {
		t.Errorf("Err = %v, want ErrPastEOF", r.Err())
	}

	// Error is latched until cleared.
	if got := r.U8(); got != 0 {
		t.Errorf("U8 after error = %#x", got)
	}

	r.ClearErr()
	r.Seek(0)
	if got := r.U8(); got != 1 || r.Err() != nil {
		t.Errorf("recovery read = %#x, err %v", got, r.Err())
	}
}

func TestReaderSeekSkip(t *testing.T) {
	r := NewReader(make([]byte, 16), "test")
	r.Seek(8)
	r.Skip(4)
	if r.Tell() != 12 {
		t.Errorf("Tell = %d, want 12", r.Tell())
	}
	r.Seek(32)
	if !errors.Is(r.Err(), ErrPastEOF) {
		t.Errorf("Seek past size should fail, err = %v", r.Err())
	}
}
