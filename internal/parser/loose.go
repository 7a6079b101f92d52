package parser

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// The upstream API is not consistent about numeric encoding: the same
// field can arrive as a JSON number, a quoted string, or an object with
// a "value"/"displayValue" member depending on endpoint and game state.
// LooseFloat and LooseInt absorb all three shapes.

// LooseFloat unmarshals a number, a numeric string, or an object
// carrying "value". Empty strings and "--" decode as unset.
type LooseFloat struct {
	Value float64
	Valid bool
}

func (f *LooseFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" || s == "--" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// Unparseable display strings are treated as unset, not errors
			return nil
		}
		f.Value, f.Valid = v, true
		return nil
	case '{':
		var obj struct {
			Value        *float64 `json:"value"`
			DisplayValue string   `json:"displayValue"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		if obj.Value != nil {
			f.Value, f.Valid = *obj.Value, true
			return nil
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(obj.DisplayValue), 64); err == nil {
			f.Value, f.Valid = v, true
		}
		return nil
	default:
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		f.Value, f.Valid = v, true
		return nil
	}
}

// LooseInt is LooseFloat truncated to an integer
type LooseInt struct {
	Value int
	Valid bool
}

func (i *LooseInt) UnmarshalJSON(data []byte) error {
	var f LooseFloat
	if err := f.UnmarshalJSON(data); err != nil {
		return err
	}
	i.Value, i.Valid = int(f.Value), f.Valid
	return nil
}

// parseStatInt converts a displayValue string to an int.
// "--" and empty strings are unset.
func parseStatInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "--" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, false
		}
		return int(f), true
	}
	return v, true
}

// parseStatFloat converts a displayValue string to a float.
func parseStatFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "--" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseMadeAttempted splits a "made-attempted" pair like "24-58".
// Returns ok=false when the string is absent or not a pair.
func parseMadeAttempted(s string) (made, attempted int, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "--" {
		return 0, 0, false
	}
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	m, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	a, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return m, a, true
}

// idFromRef pulls the trailing numeric path segment out of an API link
// like .../teams/2509?lang=en. Returns ok=false when none is found.
func idFromRef(ref string) (int, bool) {
	if cut := strings.IndexByte(ref, '?'); cut >= 0 {
		ref = ref[:cut]
	}
	ref = strings.TrimSuffix(ref, "/")
	if cut := strings.LastIndexByte(ref, '/'); cut >= 0 {
		ref = ref[cut+1:]
	}
	id, err := strconv.Atoi(ref)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
