package protocol

import (
	"errors"
	"fmt"
)

// OpCode identifies a host operation.
type OpCode uint8

const (
	OpCreateElement OpCode = iota + 1 // Node, Value=tag
	OpCreateText                      // Node, Value=text
	OpCreateComment                   // Node, Value=text
	OpInsert                          // Node, Parent, Anchor (0 = append)
	OpRemove                          // Node
	OpSetText                         // Node, Value=text
	OpSetElementText                  // Node, Value=text
	OpSetAttr                         // Node, Key, Value
	OpRemoveAttr                      // Node, Key
	OpSetHandler                      // Node, Key (event prop)
	OpRemoveHandler                   // Node, Key (event prop)
)

// String returns the op name.
func (c OpCode) String() string {
	switch c {
	case OpCreateElement:
		return "CreateElement"
	case OpCreateText:
		return "CreateText"
	case OpCreateComment:
		return "CreateComment"
	case OpInsert:
		return "Insert"
	case OpRemove:
		return "Remove"
	case OpSetText:
		return "SetText"
	case OpSetElementText:
		return "SetElementText"
	case OpSetAttr:
		return "SetAttr"
	case OpRemoveAttr:
		return "RemoveAttr"
	case OpSetHandler:
		return "SetHandler"
	case OpRemoveHandler:
		return "RemoveHandler"
	default:
		return fmt.Sprintf("OpCode(%d)", uint8(c))
	}
}

// ErrUnknownOp is returned when decoding an op code this version does not
// know.
var ErrUnknownOp = errors.New("protocol: unknown op code")

// HostOp is one host operation. Node ids are assigned by the server and
// never reused within a session.
type HostOp struct {
	Code   OpCode
	Node   uint32
	Parent uint32
	Anchor uint32
	Key    string
	Value  string
}

// OpsFrame carries the host operations produced by one flush.
type OpsFrame struct {
	Seq uint64
	Ops []HostOp
}

// EncodeOps encodes an ops frame payload.
func EncodeOps(f *OpsFrame) []byte {
	e := NewEncoder()
	e.WriteUvarint(f.Seq)
	e.WriteUvarint(uint64(len(f.Ops)))
	for i := range f.Ops {
		encodeOp(e, &f.Ops[i])
	}
	return e.Bytes()
}

func encodeOp(e *Encoder, op *HostOp) {
	e.WriteByte(byte(op.Code))
	e.WriteUvarint(uint64(op.Node))
	switch op.Code {
	case OpCreateElement, OpCreateText, OpCreateComment, OpSetText, OpSetElementText:
		e.WriteString(op.Value)
	case OpInsert:
		e.WriteUvarint(uint64(op.Parent))
		e.WriteUvarint(uint64(op.Anchor))
	case OpSetAttr:
		e.WriteString(op.Key)
		e.WriteString(op.Value)
	case OpRemoveAttr, OpSetHandler, OpRemoveHandler:
		e.WriteString(op.Key)
	}
}

// DecodeOps decodes an ops frame payload.
func DecodeOps(data []byte) (*OpsFrame, error) {
	d := NewDecoder(data)
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	f := &OpsFrame{Seq: seq, Ops: make([]HostOp, count)}
	for i := range f.Ops {
		if err := decodeOp(d, &f.Ops[i]); err != nil {
			return nil, fmt.Errorf("op %d: %w", i, err)
		}
	}
	return f, nil
}

func decodeOp(d *Decoder, op *HostOp) error {
	code, err := d.ReadByte()
	if err != nil {
		return err
	}
	op.Code = OpCode(code)
	if op.Node, err = d.ReadUint32(); err != nil {
		return err
	}
	switch op.Code {
	case OpRemove:
	case OpCreateElement, OpCreateText, OpCreateComment, OpSetText, OpSetElementText:
		op.Value, err = d.ReadString()
	case OpInsert:
		if op.Parent, err = d.ReadUint32(); err != nil {
			return err
		}
		op.Anchor, err = d.ReadUint32()
	case OpSetAttr:
		if op.Key, err = d.ReadString(); err != nil {
			return err
		}
		op.Value, err = d.ReadString()
	case OpRemoveAttr, OpSetHandler, OpRemoveHandler:
		op.Key, err = d.ReadString()
	default:
		return fmt.Errorf("%w: %d", ErrUnknownOp, code)
	}
	return err
}
