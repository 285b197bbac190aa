// Package trigger models document-store events independently of the hosting
// platform, so handlers can be driven by a test harness as well as by the
// CloudEvent adapters.
package trigger

// Kind is the document event kind.
type Kind int

const (
	KindCreate Kind = iota
	KindUpdate
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindCreate:
		return "create"
	case KindUpdate:
		return "update"
	case KindDelete:
		return "delete"
	}
	return "unknown"
}

// Event is one document write delivered to a handler. Params carries the
// path parameters extracted from the document path (conversationId,
// messageId, userId, friendId, requestId, ...). Before is nil for creates,
// After is nil for deletes.
type Event struct {
	Kind   Kind
	Params map[string]string
	Before Snapshot
	After  Snapshot
}
