package envelope

import (
	"time"

	"github.com/cimcore/cim/codec"
)

// eventCanonical is the canonical projection hashed for an event (spec
// §4.C): event type, aggregate id, and the caller-supplied data,
// excluding event id, timestamp, and correlation id.
type eventCanonical struct {
	EventType   string
	AggregateID string
	Data        any
}

// EventHeader carries the full event record, transient fields included.
type EventHeader struct {
	ID            string
	EventType     string
	AggregateID   string
	Data          any
	Timestamp     time.Time
	CorrelationID string
}

// EventEnvelope wraps a domain event. ContentType is always Event; the
// codec code for a given event type is supplied by the caller so
// distinct event shapes can be versioned independently within the
// reserved core-event range.
type EventEnvelope struct {
	ID            string
	EventType     string
	AggregateID   string
	Data          any
	Timestamp     time.Time
	CorrelationID string
	codecCode     uint64
}

// NewEvent constructs an EventEnvelope. codecCode must fall within
// [codec.CoreEventRangeStart, codec.CoreEventRangeEnd]; callers that
// don't need per-type versioning can pass
// codec.CoreEventRangeStart+codec.CoreEventOffsetDefault.
func NewEvent(eventType, aggregateID string, data any, codecCode uint64) *EventEnvelope {
	return &EventEnvelope{EventType: eventType, AggregateID: aggregateID, Data: data, codecCode: codecCode}
}

func (e *EventEnvelope) Type() ContentType { return Event }

func (e *EventEnvelope) CodecCode() uint64 {
	if e.codecCode != 0 {
		return e.codecCode
	}
	return codec.CoreEventRangeStart + codec.CoreEventOffsetDefault
}

func (e *EventEnvelope) CanonicalBytes() ([]byte, error) {
	return codec.Marshal(eventCanonical{
		EventType:   e.EventType,
		AggregateID: e.AggregateID,
		Data:        e.Data,
	})
}

func (e *EventEnvelope) Marshal() ([]byte, error) {
	return codec.Marshal(EventHeader{
		ID:            e.ID,
		EventType:     e.EventType,
		AggregateID:   e.AggregateID,
		Data:          e.Data,
		Timestamp:     e.Timestamp,
		CorrelationID: e.CorrelationID,
	})
}

func UnmarshalEvent(data []byte, codecCode uint64) (*EventEnvelope, error) {
	var header EventHeader
	if err := codec.Unmarshal(data, &header); err != nil {
		return nil, err
	}
	return &EventEnvelope{
		ID:            header.ID,
		EventType:     header.EventType,
		AggregateID:   header.AggregateID,
		Data:          header.Data,
		Timestamp:     header.Timestamp,
		CorrelationID: header.CorrelationID,
		codecCode:     codecCode,
	}, nil
}
