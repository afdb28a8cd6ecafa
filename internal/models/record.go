package models

import (
	"bytes"
	"encoding/json"
)

// Record maps columns to string values and remembers insertion order.
// The zero value is ready to use.
type Record struct {
	keys   []Column
	values map[Column]string
}

// NewRecord returns a record whose key order is seeded with columns.
func NewRecord(columns ...Column) Record {
	r := Record{values: make(map[Column]string, len(columns))}
	for _, c := range columns {
		r.Set(c, "")
	}
	return r
}

// Set stores v under c, appending c to the key order if it is new.
func (r *Record) Set(c Column, v string) {
	if r.values == nil {
		r.values = make(map[Column]string)
	}
	if _, ok := r.values[c]; !ok {
		r.keys = append(r.keys, c)
	}
	r.values[c] = v
}

// Get returns the value stored under c, or "".
func (r Record) Get(c Column) string {
	return r.values[c]
}

// Has reports whether c was ever set.
func (r Record) Has(c Column) bool {
	_, ok := r.values[c]
	return ok
}

// Columns returns the keys in insertion order.
func (r Record) Columns() []Column {
	out := make([]Column, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of keys.
func (r Record) Len() int {
	return len(r.keys)
}

// Empty reports whether every value is blank.
func (r Record) Empty() bool {
	for _, v := range r.values {
		if v != "" {
			return false
		}
	}
	return true
}

// MarshalJSON writes the record as an object with keys in insertion order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(c))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[c])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
