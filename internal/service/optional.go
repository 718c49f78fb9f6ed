package service

import "encoding/json"

// Optional carries a value that is applied only when Set is true. Decoding a
// JSON document marks every key that is present, including explicit nulls,
// so a partial update can tell "clear this" apart from "leave it alone".
type Optional[T any] struct {
	Set   bool
	Value T
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
