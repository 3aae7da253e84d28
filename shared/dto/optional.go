package dto

import (
	"bytes"
	"encoding/json"
)

var jsonNull = []byte("null")

// Optional distinguishes a JSON key that was omitted from one that was sent,
// including an explicit null. Set is true whenever the key appeared in the body.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true

	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		o.Value = nil

		return nil
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return err //nolint:wrapcheck
	}

	o.Value = &value

	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return jsonNull, nil
	}

	return json.Marshal(o.Value) //nolint:wrapcheck
}

// IsNull reports whether the key was sent with a null value.
func (o Optional[T]) IsNull() bool {
	return o.Set && o.Value == nil
}

// Some builds a present, non-null Optional.
func Some[T any](value T) Optional[T] {
	return Optional[T]{Set: true, Value: &value}
}

// Null builds a present Optional holding null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

func (o Optional[T]) IsSet() bool {
	return o.Set
}

// Interface returns the dereferenced value, or nil for null.
func (o Optional[T]) Interface() any {
	if o.Value == nil {
		return nil
	}

	return *o.Value
}
