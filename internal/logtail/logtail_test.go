package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestRead(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}
	if err := os.WriteFile(logPath, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{name: "read all (0)", maxLines: 0, expected: expectedAll},
		{name: "read all (negative)", maxLines: -1, expected: expectedAll},
		{name: "read partial (5)", maxLines: 5, expected: expectedAll[5:]},
		{name: "read exactly all (10)", maxLines: 10, expected: expectedAll},
		{name: "read more than exists (20)", maxLines: 20, expected: expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read() = %v, %v; want nil, nil", got, err)
	}
}

func TestParse_ZerologLine(t *testing.T) {
	raw := `{"level":"warn","service":"triagedesk","error":"execute request: connection refused","quiet":true,"time":1700000000,"message":"monitor log load failed"}`

	line := Parse(raw)
	if !line.Structured {
		t.Fatalf("Structured = false, want true")
	}
	if line.Level != "WARN" {
		t.Fatalf("Level = %q, want WARN", line.Level)
	}
	if !line.Time.Equal(time.Unix(1700000000, 0)) {
		t.Fatalf("Time = %v, want unix 1700000000", line.Time)
	}

	want := time.Unix(1700000000, 0).Local().Format("15:04:05") +
		` WARN monitor log load failed error="execute request: connection refused" quiet=true`
	if got := line.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestParse_NestedAndRFC3339(t *testing.T) {
	raw := `{"level":"debug","time":"2025-03-01T10:00:00Z","path":"/api/status","ids":[1,2],"message":"probe"}`
	line := Parse(raw)

	if line.Time.IsZero() {
		t.Fatalf("Time is zero, want parsed RFC3339")
	}
	if len(line.Fields) != 2 || line.Fields[0].Key != "ids" || line.Fields[0].Value != "[1,2]" {
		t.Fatalf("Fields = %#v, want ids first", line.Fields)
	}
	if line.Fields[1].Value != "/api/status" {
		t.Fatalf("path = %q, want /api/status", line.Fields[1].Value)
	}
}

func TestParse_PlainTextPassesThrough(t *testing.T) {
	for _, raw := range []string{"", "panic: boom", "{broken"} {
		line := Parse(raw)
		if line.Structured {
			t.Fatalf("Parse(%q).Structured = true, want false", raw)
		}
		if got := line.String(); got != raw {
			t.Fatalf("Parse(%q).String() = %q", raw, got)
		}
	}
}

func TestFormat(t *testing.T) {
	out := Format([]string{
		`{"level":"info","message":"started"}`,
		"plain",
	})
	want := []string{"INFO started", "plain"}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("Format() = %q, want %q", out, want)
	}
}
