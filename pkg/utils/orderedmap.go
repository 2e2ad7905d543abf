package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OrderedMap keeps both fast by-key lookup and stable insertion order, which
// pkg/jack relies on for deterministic iteration over class fields,
// subroutine arguments and (most importantly) the top-level program, whose
// label-counter-driven codegen would otherwise depend on Go's randomized map
// iteration order.
type OrderedMap[K comparable, V any] struct {
	index map[K]int
	keys  []K
	vals  []V
}

// NewOrderedMap returns an empty OrderedMap ready to use.
func NewOrderedMap[K comparable, V any]() OrderedMap[K, V] {
	return OrderedMap[K, V]{index: map[K]int{}}
}

// Set inserts 'value' under 'key', or overwrites it in place if 'key' is
// already present (preserving its original position).
func (m *OrderedMap[K, V]) Set(key K, value V) {
	if m.index == nil {
		m.index = map[K]int{}
	}
	if i, ok := m.index[key]; ok {
		m.vals[i] = value
		return
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.vals = append(m.vals, value)
}

// Get looks up 'key', returning the zero value and an error if absent.
func (m *OrderedMap[K, V]) Get(key K) (V, error) {
	if i, ok := m.index[key]; ok {
		return m.vals[i], nil
	}
	var zero V
	return zero, fmt.Errorf("key %v not found", key)
}

// Has reports whether 'key' is present.
func (m *OrderedMap[K, V]) Has(key K) bool {
	_, ok := m.index[key]
	return ok
}

// Count returns the number of entries.
func (m *OrderedMap[K, V]) Count() int { return len(m.keys) }

// Keys returns the keys in insertion order.
func (m *OrderedMap[K, V]) Keys() []K { return m.keys }

// Entries returns the values in insertion order.
func (m *OrderedMap[K, V]) Entries() []V { return m.vals }

// Iterator yields (key, value) pairs in insertion order, following the
// range-over-func idiom used by utils.Stack.Iterator.
func (m *OrderedMap[K, V]) Iterator() func(yield func(K, V) bool) {
	return func(yield func(K, V) bool) {
		for i, k := range m.keys {
			if !yield(k, m.vals[i]) {
				return
			}
		}
	}
}

// MarshalJSON renders the map as a JSON object, keys in insertion order.
// encoding/json can't reach the unexported index/keys/vals fields via
// reflection, so both directions (stdlib.json's embedded ABI is the only
// current caller) need to be hand-rolled.
func (m OrderedMap[K, V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(fmt.Sprintf("%v", k))
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := json.Marshal(m.vals[i])
		if err != nil {
			return nil, err
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON populates the map from a JSON object, preserving the source's
// key order (rather than the random order map[string]any would give) by
// walking the token stream instead of decoding into a plain Go map first.
// Only K = string is supported, which covers every OrderedMap instantiated
// in this module.
func (m *OrderedMap[K, V]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("utils.OrderedMap: expected JSON object, got %v", tok)
	}

	*m = NewOrderedMap[K, V]()

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		keyStr, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("utils.OrderedMap: expected string key, got %v", keyTok)
		}
		key, ok := any(keyStr).(K)
		if !ok {
			return fmt.Errorf("utils.OrderedMap: key type %T unsupported", *new(K))
		}

		var value V
		if err := dec.Decode(&value); err != nil {
			return err
		}
		m.Set(key, value)
	}

	if _, err := dec.Token(); err != nil { // trailing '}'
		return err
	}
	return nil
}
