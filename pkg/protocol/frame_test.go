package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestFrameEncodeDecode(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, 300)
	f := NewFrame(FrameOps, payload)
	data := f.Encode()

	// 300 needs a two-byte varint.
	if len(data) != 1+2+300 {
		t.Fatalf("len(data) = %d, want %d", len(data), 303)
	}
	got, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}
	if got.Type != FrameOps {
		t.Errorf("Type = %v, want %v", got.Type, FrameOps)
	}
	if !bytes.Equal(got.Payload, payload) {
		t.Error("payload mismatch")
	}
}

func TestDecodeFrameErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, io.ErrUnexpectedEOF},
		{"unknown type", []byte{0x7F, 0x00}, ErrInvalidFrameType},
		{"short payload", []byte{byte(FrameEvent), 0x05, 0x01}, io.ErrUnexpectedEOF},
		{"incomplete length", []byte{byte(FrameEvent), 0x80}, io.ErrUnexpectedEOF},
		{"trailing", []byte{byte(FrameEvent), 0x01, 0x01, 0x02}, ErrTrailingData},
		{"too large", []byte{byte(FrameOps), 0x80, 0x80, 0x80, 0x08}, ErrFrameTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFrame(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("DecodeFrame() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFrameTypeString(t *testing.T) {
	if FrameError.String() != "Error" {
		t.Errorf("String() = %q, want %q", FrameError.String(), "Error")
	}
	if FrameType(0x42).String() != "Unknown" {
		t.Errorf("String() = %q, want %q", FrameType(0x42).String(), "Unknown")
	}
}

func TestDecodeUvarint(t *testing.T) {
	tests := []struct {
		buf   []byte
		value uint64
		n     int
	}{
		{[]byte{0x00}, 0, 1},
		{[]byte{0x7F}, 127, 1},
		{[]byte{0xAC, 0x02}, 300, 2},
		{[]byte{0x80}, 0, -1},
		{bytes.Repeat([]byte{0xFF}, 11), 0, -2},
	}
	for _, tt := range tests {
		v, n := DecodeUvarint(tt.buf)
		if v != tt.value || n != tt.n {
			t.Errorf("DecodeUvarint(%x) = (%d, %d), want (%d, %d)", tt.buf, v, n, tt.value, tt.n)
		}
	}
	if UvarintLen(300) != 2 {
		t.Errorf("UvarintLen(300) = %d, want 2", UvarintLen(300))
	}
}

func TestDecoderLimits(t *testing.T) {
	e := NewEncoder()
	e.WriteUvarint(MaxCollectionCount + 1)
	if _, err := NewDecoder(e.Bytes()).ReadCollectionCount(); !errors.Is(err, ErrCollectionTooLarge) {
		t.Errorf("ReadCollectionCount() error = %v, want %v", err, ErrCollectionTooLarge)
	}

	e.Reset()
	e.WriteUvarint(10)
	e.WriteByte('x')
	if _, err := NewDecoder(e.Bytes()).ReadString(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadString() error = %v, want %v", err, io.ErrUnexpectedEOF)
	}

	e.Reset()
	e.WriteUvarint(1 << 33)
	if _, err := NewDecoder(e.Bytes()).ReadUint32(); !errors.Is(err, ErrVarintOverflow) {
		t.Errorf("ReadUint32() error = %v, want %v", err, ErrVarintOverflow)
	}

	e.Reset()
	e.WriteFloat64(-2.5)
	e.WriteBool(true)
	d := NewDecoder(e.Bytes())
	if f, _ := d.ReadFloat64(); f != -2.5 {
		t.Errorf("ReadFloat64() = %v, want -2.5", f)
	}
	if b, _ := d.ReadBool(); !b {
		t.Error("ReadBool() = false, want true")
	}
	if !d.EOF() {
		t.Errorf("Remaining() = %d, want 0", d.Remaining())
	}
}
