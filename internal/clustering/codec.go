package clustering

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/PHoulding/ecs-clustering"
)

// ErrMalformed is returned by Decode when a payload is truncated or
// names an unknown message kind (§7 MALFORMED_MESSAGE).
var ErrMalformed = errors.New("clustering: malformed message")

// wire layout (big-endian, no length prefix — the transport frames the
// datagram): id u64, timestamp_ms u64, sender_role u8, kind u8,
// [table_size u64 — MEETING only].
const (
	headerSize      = 8 + 8 + 1 + 1
	meetingBodySize = headerSize + 8
)

// Encode renders m to its wire form. Encode(Decode(b)) == b for any b
// that Encode produced; Decode ignores trailing bytes, so other
// accepted inputs do not round-trip byte for byte.
func Encode(m Message) ([]byte, error) {
	if !m.Kind.valid() {
		return nil, fmt.Errorf("clustering: encode: unknown message kind %d", m.Kind)
	}

	size := headerSize
	if m.Kind == KindMeeting {
		size = meetingBodySize
	}

	buf := bytes.NewBuffer(make([]byte, 0, size))
	_ = binary.Write(buf, binary.BigEndian, uint64(m.ID))
	_ = binary.Write(buf, binary.BigEndian, m.TimestampMS)
	_ = binary.Write(buf, binary.BigEndian, uint8(m.SenderRole))
	_ = binary.Write(buf, binary.BigEndian, uint8(m.Kind))
	if m.Kind == KindMeeting {
		_ = binary.Write(buf, binary.BigEndian, m.TableSize)
	}
	return buf.Bytes(), nil
}

// Decode parses a wire payload produced by Encode. It fails with
// ErrMalformed when required fields are missing or the kind is unknown.
func Decode(b []byte) (Message, error) {
	if len(b) < headerSize {
		return Message{}, fmt.Errorf("%w: short header (%d bytes)", ErrMalformed, len(b))
	}

	r := bytes.NewReader(b)
	var id uint64
	var ts uint64
	var role uint8
	var kind uint8
	if err := binary.Read(r, binary.BigEndian, &id); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := binary.Read(r, binary.BigEndian, &ts); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := binary.Read(r, binary.BigEndian, &role); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := binary.Read(r, binary.BigEndian, &kind); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	m := Message{
		ID:          ecscluster.MessageID(id),
		TimestampMS: ts,
		SenderRole:  ecscluster.Role(role),
		Kind:        MessageKind(kind),
	}
	if !m.Kind.valid() {
		return Message{}, fmt.Errorf("%w: unknown kind %d", ErrMalformed, kind)
	}
	if !m.SenderRole.Valid() {
		return Message{}, fmt.Errorf("%w: unknown sender role %d", ErrMalformed, role)
	}

	if m.Kind == KindMeeting {
		var size uint64
		if err := binary.Read(r, binary.BigEndian, &size); err != nil {
			return Message{}, fmt.Errorf("%w: MEETING missing table_size: %v", ErrMalformed, err)
		}
		m.TableSize = size
	}

	return m, nil
}
