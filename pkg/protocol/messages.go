package protocol

// Hello is the first frame a session sends: its id and the node id of the
// container the app is mounted into.
type Hello struct {
	SessionID string
	Root      uint32
}

// EncodeHello encodes a hello payload.
func EncodeHello(h *Hello) []byte {
	e := NewEncoder()
	e.WriteString(h.SessionID)
	e.WriteUvarint(uint64(h.Root))
	return e.Bytes()
}

// DecodeHello decodes a hello payload.
func DecodeHello(data []byte) (*Hello, error) {
	d := NewDecoder(data)
	id, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	root, err := d.ReadUint32()
	if err != nil {
		return nil, err
	}
	return &Hello{SessionID: id, Root: root}, nil
}

// Event is a client event aimed at one node.
type Event struct {
	Seq     uint64
	Node    uint32
	Name    string // "click", "input", ...
	Payload string
}

// EncodeEvent encodes an event payload.
func EncodeEvent(ev *Event) []byte {
	e := NewEncoder()
	e.WriteUvarint(ev.Seq)
	e.WriteUvarint(uint64(ev.Node))
	e.WriteString(ev.Name)
	e.WriteString(ev.Payload)
	return e.Bytes()
}

// DecodeEvent decodes an event payload.
func DecodeEvent(data []byte) (*Event, error) {
	d := NewDecoder(data)
	var ev Event
	var err error
	if ev.Seq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if ev.Node, err = d.ReadUint32(); err != nil {
		return nil, err
	}
	if ev.Name, err = d.ReadString(); err != nil {
		return nil, err
	}
	if ev.Payload, err = d.ReadString(); err != nil {
		return nil, err
	}
	return &ev, nil
}

// ErrorMessage reports a server-side error to the client.
type ErrorMessage struct {
	Code    string
	Message string
	Fatal   bool
}

// EncodeError encodes an error payload.
func EncodeError(m *ErrorMessage) []byte {
	e := NewEncoder()
	e.WriteString(m.Code)
	e.WriteString(m.Message)
	e.WriteBool(m.Fatal)
	return e.Bytes()
}

// DecodeError decodes an error payload.
func DecodeError(data []byte) (*ErrorMessage, error) {
	d := NewDecoder(data)
	var m ErrorMessage
	var err error
	if m.Code, err = d.ReadString(); err != nil {
		return nil, err
	}
	if m.Message, err = d.ReadString(); err != nil {
		return nil, err
	}
	if m.Fatal, err = d.ReadBool(); err != nil {
		return nil, err
	}
	return &m, nil
}
