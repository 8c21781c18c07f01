package amqp

import (
	"encoding/json"
	"time"
)

// EndpointChangedMessage announces that a replica saved a new backend endpoint.
// Origin identifies the publishing instance so it can skip its own messages.
type EndpointChangedMessage struct {
	URL       string    `json:"url"`
	Origin    string    `json:"origin"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEndpointChangedMessage(url, origin string) *EndpointChangedMessage {
	return &EndpointChangedMessage{
		URL:       url,
		Origin:    origin,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *EndpointChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EndpointChangedMessageFromJSON creates a message from JSON bytes
func EndpointChangedMessageFromJSON(data []byte) (*EndpointChangedMessage, error) {
	var msg EndpointChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
