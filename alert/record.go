package alert

import (
	"bytes"
	"encoding/json"
)

// Record is an alert as submitted to Alerta. The set of fields is open ended,
// fields keep the order in which they were first set.
type Record struct {
	keys   []string
	fields map[string]Value
}

func NewRecord() *Record {
	return &Record{
		fields: make(map[string]Value),
	}
}

// Set assigns v to key. Assigning an existing key replaces its value and keeps its position.
func (r *Record) Set(key string, v Value) {
	if r.fields == nil {
		r.fields = make(map[string]Value)
	}
	if _, ok := r.fields[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.fields[key] = v
}

func (r *Record) SetString(key, s string) {
	r.Set(key, String(s))
}

func (r *Record) Get(key string) (Value, bool) {
	v, ok := r.fields[key]
	return v, ok
}

// GetString returns the value of key if it is present and a scalar.
func (r *Record) GetString(key string) (string, bool) {
	v, ok := r.fields[key]
	if !ok {
		return "", false
	}
	return v.AsString()
}

func (r *Record) Has(key string) bool {
	_, ok := r.fields[key]
	return ok
}

// Delete removes key and returns the value it held.
func (r *Record) Delete(key string) (Value, bool) {
	v, ok := r.fields[key]
	if !ok {
		return Value{}, false
	}
	delete(r.fields, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
	return v, true
}

// Keys returns the field names in record order.
func (r *Record) Keys() []string {
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

func (r *Record) Len() int {
	return len(r.keys)
}

// Map returns the record as plain Go values.
func (r *Record) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(r.keys))
	for _, k := range r.keys {
		m[k] = r.fields[k].Interface()
	}
	return m
}

func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := r.fields[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
