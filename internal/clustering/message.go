package clustering

import (
	"sync"

	"github.com/PHoulding/ecs-clustering"
)

// MessageKind is the wire discriminant for the six message types (§3).
type MessageKind uint8

const (
	KindPing MessageKind = iota
	KindClaim
	KindStatus
	KindMeeting
	KindResign
	KindInquiry
)

func (k MessageKind) String() string {
	switch k {
	case KindPing:
		return "PING"
	case KindClaim:
		return "CLAIM"
	case KindStatus:
		return "STATUS"
	case KindMeeting:
		return "MEETING"
	case KindResign:
		return "RESIGN"
	case KindInquiry:
		return "INQUIRY"
	default:
		return "UNKNOWN"
	}
}

func (k MessageKind) valid() bool {
	return k <= KindInquiry
}

// Message is the common envelope carried by all six kinds (§3). Only
// KindMeeting populates TableSize.
type Message struct {
	ID          ecscluster.MessageID
	TimestampMS uint64
	SenderRole  ecscluster.Role
	Kind        MessageKind
	TableSize   uint64 // valid only when Kind == KindMeeting
}

// MessageIDGenerator hands out process-unique, monotonically increasing
// message ids. §5 notes this counter is process-wide state in the
// original design; a real multi-scheduler deployment should confine one
// instance per scheduler and pass it through, which is why it is an
// explicit, injectable value here rather than a package-level global.
type MessageIDGenerator struct {
	mu   sync.Mutex
	next ecscluster.MessageID
}

// NewMessageIDGenerator creates a generator starting at id 1.
func NewMessageIDGenerator() *MessageIDGenerator {
	return &MessageIDGenerator{next: 1}
}

// Next returns the next id and advances the counter.
func (g *MessageIDGenerator) Next() ecscluster.MessageID {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.next
	g.next++
	return id
}
