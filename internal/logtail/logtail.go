package logtail

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Field is one extra key=value pair from a structured line.
type Field struct {
	Key   string
	Value string
}

// Line is a parsed log line. Structured is false for lines that were not
// zerolog JSON; those keep their text in Message.
type Line struct {
	Time       time.Time
	Level      string
	Message    string
	Fields     []Field
	Structured bool
}

// skipped fields are either rendered elsewhere or constant per process.
var skipped = map[string]bool{
	"time":    true,
	"level":   true,
	"message": true,
	"service": true,
}

// Parse decodes one zerolog JSON line.
func Parse(raw string) Line {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return Line{Message: raw}
	}
	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()
	var rec map[string]any
	if err := dec.Decode(&rec); err != nil {
		return Line{Message: raw}
	}

	line := Line{Structured: true}
	line.Time = parseTime(rec["time"])
	if lvl, ok := rec["level"].(string); ok {
		line.Level = strings.ToUpper(lvl)
	}
	if msg, ok := rec["message"].(string); ok {
		line.Message = msg
	}

	keys := make([]string, 0, len(rec))
	for k := range rec {
		if !skipped[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		line.Fields = append(line.Fields, Field{Key: k, Value: formatValue(rec[k])})
	}
	return line
}

// String renders the line as "HH:MM:SS LEVEL message key=value ...".
func (l Line) String() string {
	if !l.Structured {
		return l.Message
	}
	var b strings.Builder
	if !l.Time.IsZero() {
		b.WriteString(l.Time.Local().Format("15:04:05"))
		b.WriteByte(' ')
	}
	if l.Level != "" {
		b.WriteString(l.Level)
		b.WriteByte(' ')
	}
	b.WriteString(l.Message)
	for _, f := range l.Fields {
		b.WriteByte(' ')
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(f.Value)
	}
	return strings.TrimRight(b.String(), " ")
}

// Format parses and renders every line.
func Format(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, raw := range lines {
		out = append(out, Parse(raw).String())
	}
	return out
}

func parseTime(v any) time.Time {
	switch t := v.(type) {
	case json.Number:
		if secs, err := t.Int64(); err == nil {
			return time.Unix(secs, 0)
		}
		if f, err := t.Float64(); err == nil {
			return time.Unix(0, int64(f*float64(time.Second)))
		}
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		if val == "" || strings.ContainsAny(val, " \t\"=") {
			return strconv.Quote(val)
		}
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(val); err != nil {
			return fmt.Sprint(val)
		}
		return strings.TrimSpace(buf.String())
	}
}
