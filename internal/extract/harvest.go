package extract

import (
	"strings"
)

// contentKeys are visited first, in this order, regardless of how the object
// stores its keys. This ordering decides which text ends up as a session's
// preview, so it must stay stable.
var contentKeys = []string{"text", "content", "message", "prompt", "output", "input", "value", "body"}

// metadataKeys never contribute text, no matter how string-like their values.
var metadataKeys = map[string]struct{}{
	"type":      {},
	"id":        {},
	"uuid":      {},
	"role":      {},
	"sender":    {},
	"author":    {},
	"version":   {},
	"updatedAt": {},
	"createdAt": {},
	"timestamp": {},
	"time":      {},
	"ts":        {},
}

// harvestText collects the non-empty trimmed strings out of an arbitrary
// decoded JSON value, depth-first. Numbers, booleans and nulls contribute
// nothing.
func harvestText(v any) []string {
	var out []string
	harvestInto(&out, v)
	return out
}

func harvestInto(out *[]string, v any) {
	switch val := v.(type) {
	case string:
		if s := strings.TrimSpace(val); s != "" {
			*out = append(*out, s)
		}
	case []any:
		for _, item := range val {
			harvestInto(out, item)
		}
	case *record:
		for _, k := range contentKeys {
			if inner, ok := val.lookup(k); ok {
				harvestInto(out, inner)
			}
		}
		// remaining keys follow in document order
		for _, k := range val.keys {
			if isContentKey(k) {
				continue
			}
			if _, skip := metadataKeys[k]; skip {
				continue
			}
			harvestInto(out, val.vals[k])
		}
	}
}

func isContentKey(k string) bool {
	for _, c := range contentKeys {
		if k == c {
			return true
		}
	}
	return false
}
