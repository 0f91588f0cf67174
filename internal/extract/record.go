package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// record is a decoded JSON object that remembers document key order. The
// stdlib map randomizes iteration, but harvesting must visit leftover keys in
// the order they appear in the source record, so objects are decoded through
// a token walk instead of json.Unmarshal. Values are the decoder's closed set:
// nil, bool, float64, string, []any, *record.
type record struct {
	keys []string
	vals map[string]any
}

func (r *record) get(k string) any {
	return r.vals[k]
}

func (r *record) lookup(k string) (any, bool) {
	v, ok := r.vals[k]
	return v, ok
}

// MarshalJSON writes keys in document order, matching how the source record
// was laid out. Canonical signatures use canonicalJSON instead.
func (r *record) MarshalJSON() ([]byte, error) {
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
		vb, err := json.Marshal(r.vals[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

var errBadToken = errors.New("unexpected json token")

// parseRecord decodes data as exactly one JSON object with nothing trailing.
func parseRecord(data []byte) (*record, bool) {
	dec := json.NewDecoder(bytes.NewReader(data))
	v, err := decodeValue(dec)
	if err != nil {
		return nil, false
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, false
	}
	rec, ok := v.(*record)
	return rec, ok && rec != nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil // string, float64, bool or nil
	}
	switch delim {
	case '{':
		rec := &record{vals: make(map[string]any)}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, errBadToken
			}
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			// duplicate keys keep their first position, last value
			if _, dup := rec.vals[key]; !dup {
				rec.keys = append(rec.keys, key)
			}
			rec.vals[key] = val
		}
		if _, err := dec.Token(); err != nil { // closing brace
			return nil, err
		}
		return rec, nil
	case '[':
		var arr []any
		for dec.More() {
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		if _, err := dec.Token(); err != nil { // closing bracket
			return nil, err
		}
		return arr, nil
	}
	return nil, errBadToken
}

// canonicalJSON serializes v with object keys sorted at every level, so the
// same object recovered under two encodings shares one signature regardless
// of how its keys were ordered.
func canonicalJSON(v any) ([]byte, error) {
	return json.Marshal(plainValue(v))
}

func plainValue(v any) any {
	switch t := v.(type) {
	case *record:
		m := make(map[string]any, len(t.keys))
		for _, k := range t.keys {
			m[k] = plainValue(t.vals[k])
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plainValue(e)
		}
		return out
	}
	return v
}
