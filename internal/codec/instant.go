// Package codec is the JSON wire format shared by the record store and the
// backup document.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const instantType = "instant"

var (
	// ErrUntaggedInstant is returned when a timestamp field holds anything
	// other than a tagged instant, including a bare ISO-8601 string.
	ErrUntaggedInstant = errors.New("timestamp is not a tagged instant")

	// ErrDuplicateID is returned when a collection holds the same id twice.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrInstantOutOfRange is returned for times RFC 3339 cannot carry
	// (years before 0000 or after 9999).
	ErrInstantOutOfRange = errors.New("instant out of range")

	// ErrAmountPrecision is returned for amounts with more than two decimals.
	ErrAmountPrecision = errors.New("amount has more than two decimal places")
)

// Instant is a time.Time that travels as {"$type":"instant","value":"<RFC 3339>"}.
// Values are normalised to UTC with full nanosecond precision.
type Instant time.Time

type instantWire struct {
	Type  string `json:"$type"`
	Value string `json:"value"`
}

func (i Instant) Time() time.Time { return time.Time(i) }

func (i Instant) MarshalJSON() ([]byte, error) {
	t := time.Time(i).UTC()
	if y := t.Year(); y < 0 || y > 9999 {
		return nil, fmt.Errorf("%w: year %d", ErrInstantOutOfRange, y)
	}
	return json.Marshal(instantWire{
		Type:  instantType,
		Value: t.Format(time.RFC3339Nano),
	})
}

func (i *Instant) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return fmt.Errorf("%w: %s", ErrUntaggedInstant, data)
	}
	var w instantWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decoding instant: %w", err)
	}
	if w.Type != instantType {
		return fmt.Errorf("%w: $type %q", ErrUntaggedInstant, w.Type)
	}
	t, err := time.Parse(time.RFC3339Nano, w.Value)
	if err != nil {
		return fmt.Errorf("parsing instant %q: %w", w.Value, err)
	}
	*i = Instant(t.UTC())
	return nil
}
