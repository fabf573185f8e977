package driver

// EventKind tags progress events sent to the UI.
type EventKind uint8

const (
	// EventUnitStarted fires when a worker picks up a unit.
	EventUnitStarted EventKind = iota + 1
	// EventUnitFinished fires when a unit's result is in.
	EventUnitFinished
)

// Event is one progress update. Index and Total describe the run, not the
// order of completion.
type Event struct {
	Kind   EventKind
	Unit   string
	Index  int
	Total  int
	OK     bool
	Cached bool
}

// Sink receives progress events. Implementations must tolerate calls from
// multiple goroutines.
type Sink interface {
	Send(Event)
}

type nopSink struct{}

func (nopSink) Send(Event) {}

// NopSink discards all events.
var NopSink Sink = nopSink{}

// ChannelSink forwards events to a channel, dropping them when the receiver
// lags so workers never block on the UI.
type ChannelSink struct {
	C chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	return &ChannelSink{C: make(chan Event, buffer)}
}

func (s *ChannelSink) Send(ev Event) {
	select {
	case s.C <- ev:
	default:
	}
}
