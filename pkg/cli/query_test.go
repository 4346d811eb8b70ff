package cli

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

type queryVoice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestQuery(t *testing.T) {
	voices := []queryVoice{{"ryan", "Ryan"}, {"my_voice", "My Voice"}}

	tests := []struct {
		name string
		expr string
		want any
	}{
		{"single", ".[0].id", "ryan"},
		{"many", ".[].id", []any{"ryan", "my_voice"}},
		{"length", "length", 2},
		{"select", `map(select(.id == "my_voice")) | .[0].name`, "My Voice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Query(tt.expr, voices)
			if err != nil {
				t.Fatalf("Query error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Query(%q) = %#v, want %#v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestQuery_Errors(t *testing.T) {
	if _, err := Query(".[", nil); err == nil {
		t.Error("Query should reject a malformed expression")
	}
	if _, err := Query("empty", map[string]int{"a": 1}); err == nil {
		t.Error("Query should fail when nothing is produced")
	}
	if _, err := Query(`error("boom")`, 1); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("Query error = %v, want the jq error", err)
	}
}

func TestOutput_Query(t *testing.T) {
	var buf bytes.Buffer
	result := map[string]any{"output": "hello.wav", "sample_rate": 24000}
	if err := Output(result, OutputOptions{Format: FormatJSON, Writer: &buf, Query: ".sample_rate"}); err != nil {
		t.Fatalf("Output error: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "24000" {
		t.Errorf("Output = %q, want 24000", got)
	}
}
