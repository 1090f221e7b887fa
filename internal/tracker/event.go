package tracker

type Event int32

const (
	EventNone Event = iota
	EventCompleted
	EventStarted
	EventStopped
)

var eventNames = [...]string{
	"empty",
	"completed",
	"started",
	"stopped",
}

// String returns the event name as sent in the HTTP tracker protocol.
func (e Event) String() string {
	return eventNames[e]
}

// ParseEvent maps an event name back to its value. The empty string and
// "empty" both mean no event.
func ParseEvent(s string) (Event, bool) {
	if s == "" {
		return EventNone, true
	}
	for i, name := range eventNames {
		if s == name {
			return Event(i), true
		}
	}
	return EventNone, false
}
