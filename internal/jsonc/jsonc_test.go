package jsonc

import (
	"strings"
	"testing"
)

func TestStandardizeKeepsOffsets(t *testing.T) {
	input := "{\n  // comment\n  \"a\": 1, /* block */\n  \"b\": [2,],\n}"
	got, err := Standardize([]byte(input))
	if err != nil {
		t.Fatalf("Standardize() error = %v", err)
	}
	if len(got) != len(input) {
		t.Errorf("len = %d, want %d", len(got), len(input))
	}
	if strings.Index(string(got), `"b"`) != strings.Index(input, `"b"`) {
		t.Errorf("offset of \"b\" moved:\n%s", got)
	}
}

func TestUnmarshal(t *testing.T) {
	var v struct {
		Name  string   `json:"name"`
		Items []string `json:"items"`
	}
	err := Unmarshal([]byte(`{
  // trailing commas are fine
  "name": "titan",
  "items": ["a", "b",],
}`), &v)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if v.Name != "titan" || len(v.Items) != 2 {
		t.Errorf("got %+v", v)
	}

	if err := Unmarshal([]byte(`{"name": }`), &v); err == nil {
		t.Error("Unmarshal() expected error for invalid input")
	}
}
