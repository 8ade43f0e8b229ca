package protocol

import (
	"errors"
	"io"
)

// MaxPayloadSize bounds a single frame payload (8MB).
const MaxPayloadSize = 8 * 1024 * 1024

// FrameType identifies the type of frame.
type FrameType uint8

const (
	FrameHello FrameType = 0x00 // Server → Client session greeting
	FrameEvent FrameType = 0x01 // Client → Server events
	FrameOps   FrameType = 0x02 // Server → Client host operations
	FrameError FrameType = 0x05 // Error message
)

// String returns the string representation of the frame type.
func (ft FrameType) String() string {
	switch ft {
	case FrameHello:
		return "Hello"
	case FrameEvent:
		return "Event"
	case FrameOps:
		return "Ops"
	case FrameError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Frame errors.
var (
	ErrFrameTooLarge    = errors.New("protocol: frame payload too large")
	ErrInvalidFrameType = errors.New("protocol: invalid frame type")
	ErrTrailingData     = errors.New("protocol: trailing data after frame")
)

// Frame represents a protocol frame.
type Frame struct {
	Type    FrameType
	Payload []byte
}

// NewFrame creates a new frame with the given type and payload.
func NewFrame(ft FrameType, payload []byte) *Frame {
	return &Frame{Type: ft, Payload: payload}
}

// Encode encodes the frame to bytes including the header.
func (f *Frame) Encode() []byte {
	e := &Encoder{buf: make([]byte, 0, 1+UvarintLen(uint64(len(f.Payload)))+len(f.Payload))}
	e.WriteByte(byte(f.Type))
	e.WriteUvarint(uint64(len(f.Payload)))
	e.buf = append(e.buf, f.Payload...)
	return e.Bytes()
}

// DecodeFrame decodes exactly one frame from data.
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) < 2 {
		return nil, io.ErrUnexpectedEOF
	}
	ft := FrameType(data[0])
	switch ft {
	case FrameHello, FrameEvent, FrameOps, FrameError:
	default:
		return nil, ErrInvalidFrameType
	}

	length, n := DecodeUvarint(data[1:])
	switch {
	case n == -1:
		return nil, io.ErrUnexpectedEOF
	case n < 0:
		return nil, ErrVarintOverflow
	case length > MaxPayloadSize:
		return nil, ErrFrameTooLarge
	}
	start := 1 + n
	end := start + int(length)
	if len(data) < end {
		return nil, io.ErrUnexpectedEOF
	}
	if len(data) > end {
		return nil, ErrTrailingData
	}

	payload := make([]byte, length)
	copy(payload, data[start:end])
	return &Frame{Type: ft, Payload: payload}, nil
}
