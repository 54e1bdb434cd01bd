package fanout

import (
	"encoding/json"
	"errors"
)

// Outcome is the result of one per-key operation: exactly one of a value or an error message.
type Outcome[V any] struct {
	value V
	err   string
	ok    bool
}

// Ok returns a successful outcome holding v.
func Ok[V any](v V) Outcome[V] {
	return Outcome[V]{value: v, ok: true}
}

// Err returns a failed outcome carrying msg.
func Err[V any](msg string) Outcome[V] {
	return Outcome[V]{err: msg}
}

// IsOk reports whether the outcome holds a value.
func (o Outcome[V]) IsOk() bool {
	return o.ok
}

// Value returns the held value and whether the outcome succeeded.
func (o Outcome[V]) Value() (V, bool) {
	return o.value, o.ok
}

// ErrMessage returns the failure description, or "" for a successful outcome.
func (o Outcome[V]) ErrMessage() string {
	if o.ok {
		return ""
	}
	return o.err
}

type outcomeJSON struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error *string         `json:"error,omitempty"`
}

// MarshalJSON encodes {"data": v} or {"error": "msg"}.
func (o Outcome[V]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		msg := o.err
		return json.Marshal(outcomeJSON{Error: &msg})
	}
	data, err := json.Marshal(o.value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(outcomeJSON{Data: data})
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (o *Outcome[V]) UnmarshalJSON(b []byte) error {
	var raw outcomeJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	switch {
	case raw.Error != nil:
		*o = Err[V](*raw.Error)
	case len(raw.Data) > 0:
		var v V
		if err := json.Unmarshal(raw.Data, &v); err != nil {
			return err
		}
		*o = Ok(v)
	default:
		return errors.New("fanout: outcome has neither data nor error")
	}
	return nil
}

// CountOrdered returns how many outcomes succeeded and failed.
func CountOrdered[V any](outcomes []Outcome[V]) (ok, failed int) {
	for _, o := range outcomes {
		if o.ok {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}

// CountKeyed returns how many outcomes succeeded and failed.
func CountKeyed[V any](outcomes map[string]Outcome[V]) (ok, failed int) {
	for _, o := range outcomes {
		if o.ok {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}
