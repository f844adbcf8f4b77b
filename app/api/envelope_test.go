package api

import (
	"encoding/json"
	"testing"
)

func TestUnwrapListShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		keys []string
		want int
	}{
		{"bare array", `[{"id":1},{"id":2}]`, nil, 2},
		{"data array", `{"data":[{"id":1}]}`, nil, 1},
		{"double nested data", `{"data":{"data":[{"id":1},{"id":2},{"id":3}]}}`, nil, 3},
		{"named key", `{"customers":[{"id":1},{"id":2}]}`, []string{"customers"}, 2},
		{"named key under data", `{"data":{"invoices":[{"id":9}]}}`, []string{"invoices"}, 1},
		{"first array value", `{"count":2,"rows":[{"id":1},{"id":2}]}`, nil, 2},
		{"empty array", `[]`, nil, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows, err := UnwrapList([]byte(tc.body), tc.keys...)
			if err != nil {
				t.Fatalf("UnwrapList: %v", err)
			}
			if len(rows) != tc.want {
				t.Errorf("got %d rows, want %d", len(rows), tc.want)
			}
		})
	}
}

func TestUnwrapListNoPayload(t *testing.T) {
	if _, err := UnwrapList([]byte(`{"count":5}`)); err == nil {
		t.Error("expected error for object without any list")
	}
	if _, err := UnwrapList([]byte(`"just a string"`)); err == nil {
		t.Error("expected error for scalar body")
	}
}

func TestUnwrapObject(t *testing.T) {
	type record struct {
		ID int `json:"id"`
	}

	var direct record
	if err := json.Unmarshal(UnwrapObject([]byte(`{"id":7}`)), &direct); err != nil || direct.ID != 7 {
		t.Errorf("direct object: id=%d err=%v", direct.ID, err)
	}

	var wrapped record
	if err := json.Unmarshal(UnwrapObject([]byte(`{"data":{"id":8}}`)), &wrapped); err != nil || wrapped.ID != 8 {
		t.Errorf("wrapped object: id=%d err=%v", wrapped.ID, err)
	}

	// data holding a non-object must not be unwrapped
	var scalar struct {
		Data int `json:"data"`
	}
	if err := json.Unmarshal(UnwrapObject([]byte(`{"data":5}`)), &scalar); err != nil || scalar.Data != 5 {
		t.Errorf("scalar data: %+v err=%v", scalar, err)
	}
}
