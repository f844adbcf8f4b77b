package api

import (
	"encoding/json"
	"fmt"
)

// The backend's response envelopes are not consistent across endpoints:
// sometimes a bare array, sometimes {data: [...]}, sometimes nested one
// level deeper, sometimes a named collection key. The unwrap functions
// below resolve the shape once at the boundary so call sites never probe.

// UnwrapList extracts the list payload from a response body. keys are
// endpoint-specific collection names ("customers", "invoices") tried
// after the generic shapes.
func UnwrapList(body []byte, keys ...string) ([]json.RawMessage, error) {
	var list []json.RawMessage
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}

	var object map[string]json.RawMessage
	if err := json.Unmarshal(body, &object); err != nil {
		return nil, fmt.Errorf("response is neither a list nor an object")
	}

	// {data: ...} wraps any of the other shapes one level down
	if data, ok := object["data"]; ok {
		if nested, err := UnwrapList(data, keys...); err == nil {
			return nested, nil
		}
	}

	for _, key := range keys {
		if raw, ok := object[key]; ok {
			if err := json.Unmarshal(raw, &list); err == nil {
				return list, nil
			}
		}
	}

	// Last resort: the first array-valued field of the object
	for _, raw := range object {
		if err := json.Unmarshal(raw, &list); err == nil {
			return list, nil
		}
	}

	return nil, fmt.Errorf("no list payload found in response")
}

// UnwrapObject resolves a single-record payload: {data: {...}} or the
// body itself.
func UnwrapObject(body []byte) json.RawMessage {
	var object map[string]json.RawMessage
	if err := json.Unmarshal(body, &object); err != nil {
		return body
	}

	if data, ok := object["data"]; ok {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(data, &inner); err == nil {
			return data
		}
	}

	return body
}
