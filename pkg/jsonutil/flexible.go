package jsonutil

import (
	"encoding/json"
	"fmt"
)

// FlexibleString converts a json.RawMessage to a *string, tolerating clients
// that send numbers or booleans where a string is expected. Returns nil for
// absent/null values so the caller can distinguish "clear the correction"
// (explicit empty string) from "no value".
func FlexibleString(raw json.RawMessage) *string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		return &strVal
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		var s string
		if numVal == float64(int64(numVal)) {
			s = fmt.Sprintf("%d", int64(numVal))
		} else {
			s = fmt.Sprintf("%g", numVal)
		}
		return &s
	}

	var boolVal bool
	if err := json.Unmarshal(raw, &boolVal); err == nil {
		s := fmt.Sprintf("%t", boolVal)
		return &s
	}

	// Fallback: raw string representation
	s := string(raw)
	return &s
}
