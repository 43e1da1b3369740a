package realtime

import "encoding/json"

// Publisher fans an event out to the subscribers of a room. Delivery is
// best-effort and at most once; subscribers that are offline miss the event.
type Publisher interface {
	Publish(room, event string, payload interface{})
}

// Envelope is the frame exchanged with websocket clients and across instances.
type Envelope struct {
	Room  string          `json:"room,omitempty"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JoinRequest is the data of a client "join"/"leave" frame.
type JoinRequest struct {
	Room string `json:"room"`
}

func encodeEnvelope(room, event string, payload interface{}) ([]byte, error) {
	var data json.RawMessage
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		data = raw
	}
	return json.Marshal(Envelope{Room: room, Event: event, Data: data})
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(room, event string, payload interface{})

func (f PublisherFunc) Publish(room, event string, payload interface{}) {
	f(room, event, payload)
}

// Nop drops every event.
var Nop Publisher = PublisherFunc(func(string, string, interface{}) {})
