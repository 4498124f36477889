package events

import (
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// TypeUserContactUpdated is emitted by the user service after a
	// contact mutation commits.
	TypeUserContactUpdated = "user.contact.updated"

	// SchemaVersion tags the producer generation in message metadata.
	SchemaVersion = "v2"

	headerType    = "type"
	headerVersion = "version"
)

var (
	ErrMissingType   = errors.New("events: envelope type is required")
	ErrMissingUserID = errors.New("events: user_id is required")
)

// Payload is the message body. Old values ride along for audit/diffing.
type Payload struct {
	EventID            string `json:"event_id"`
	UserID             string `json:"user_id"`
	Email              string `json:"email,omitempty"`
	DeliveryAddress    string `json:"delivery_address,omitempty"`
	OldEmail           string `json:"old_email,omitempty"`
	OldDeliveryAddress string `json:"old_delivery_address,omitempty"`
}

// Envelope is the unit of durable communication: the payload plus the
// type/version tags carried in message headers rather than the body.
type Envelope struct {
	Type    string
	Version string
	Payload
}

// Validate enforces the envelope invariants: a non-empty type, and a
// non-empty user id for contact updates.
func (e Envelope) Validate() error {
	if e.Type == "" {
		return ErrMissingType
	}
	if e.Type == TypeUserContactUpdated && e.UserID == "" {
		return ErrMissingUserID
	}
	return nil
}

// ContactChanged reports whether the new contact values differ from the
// old ones. Unchanged envelopes are suppressed before publish.
func (e Envelope) ContactChanged() bool {
	return e.Email != e.OldEmail || e.DeliveryAddress != e.OldDeliveryAddress
}

// Encode produces the wire body and headers.
func Encode(e Envelope) ([]byte, amqp.Table, error) {
	body, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, nil, fmt.Errorf("events: encoding payload: %w", err)
	}
	version := e.Version
	if version == "" {
		version = SchemaVersion
	}
	headers := amqp.Table{
		headerType:    e.Type,
		headerVersion: version,
	}
	return body, headers, nil
}

// Decode rebuilds an envelope from a delivered body and headers.
func Decode(body []byte, headers amqp.Table) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env.Payload); err != nil {
		return Envelope{}, fmt.Errorf("events: decoding payload: %w", err)
	}
	env.Type = headerString(headers, headerType)
	env.Version = headerString(headers, headerVersion)
	return env, nil
}

func headerString(headers amqp.Table, key string) string {
	if headers == nil {
		return ""
	}
	if value, ok := headers[key].(string); ok {
		return value
	}
	return ""
}
