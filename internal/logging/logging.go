// Package logging wraps zerolog to emit a fixed pipe-delimited wire format:
//
//	YYYY-MM-DD HH:MM:SS | LEVEL(8) | module(30) | event_type=<id> k=v …
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds a Logger that writes the §6 line format to w, scoped to module.
func New(w io.Writer, module string) Logger {
	zerolog.TimeFieldFormat = "2006-01-02 15:04:05"
	z := zerolog.New(pipeWriter{out: w}).With().Timestamp().Logger()
	return Logger{z: z, module: padRight(module, 30)}
}

// Logger emits §6-formatted lines for a single module.
type Logger struct {
	z      zerolog.Logger
	module string
}

// pipeWriter reformats zerolog's default one-JSON-object-per-line record
// into the §6 wire line. zerolog.ConsoleWriter's PartsOrder only joins
// timestamp/level/message with a hardcoded single space — there is no hook
// to make that separator " | " — so the pipes are inserted here instead,
// by decoding the record zerolog already produced and re-emitting it.
type pipeWriter struct {
	out io.Writer
}

func (p pipeWriter) Write(b []byte) (int, error) {
	var rec struct {
		Time    string `json:"time"`
		Level   string `json:"level"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(b, &rec); err != nil {
		return p.out.Write(b)
	}
	line := fmt.Sprintf("%s | %s | %s\n", rec.Time, padRight(strings.ToUpper(rec.Level), 8), rec.Message)
	if _, err := p.out.Write([]byte(line)); err != nil {
		return 0, err
	}
	return len(b), nil
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s[:n]
	}
	return s + strings.Repeat(" ", n-len(s))
}

// Event logs one line: module | event_type=<id> k=v … with fields rendered
// in sorted-key order for deterministic output.
func (l Logger) Event(level zerolog.Level, eventType string, fields map[string]any) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "%s | event_type=%s", l.module, eventType)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}

	ev := l.z.WithLevel(level)
	ev.Msg(b.String())
}

func (l Logger) Info(eventType string, fields map[string]any)  { l.Event(zerolog.InfoLevel, eventType, fields) }
func (l Logger) Warn(eventType string, fields map[string]any)  { l.Event(zerolog.WarnLevel, eventType, fields) }
func (l Logger) Error(eventType string, fields map[string]any) { l.Event(zerolog.ErrorLevel, eventType, fields) }

// Now is exposed so callers that need a timestamp for a log field use the
// same clock the logger does; kept trivial to avoid a second time source.
func Now() time.Time { return time.Now().UTC() }
