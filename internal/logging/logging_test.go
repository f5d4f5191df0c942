package logging

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_EmitsSortedFieldsAndModuleColumn(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := New(&buf, "explorer")

	log.Info("state_recorded", map[string]any{"state_id": "S1", "gate": "encryption"})

	out := buf.String()
	assert.Contains(t, out, "event_type=state_recorded")
	assert.Contains(t, out, "gate=encryption state_id=S1") // sorted-key order
	assert.Contains(t, out, "explorer")
}

func TestNew_PadsModuleNameTo30Chars(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := New(&buf, "short")
	log.Info("x", nil)

	assert.Contains(t, buf.String(), "short"+strings.Repeat(" ", 25))
}

func TestNew_EmitsExactPipeDelimitedWireFormat(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := New(&buf, "explorer")
	log.Info("state_recorded", map[string]any{"state_id": "S1"})

	line := strings.TrimRight(buf.String(), "\n")
	re := regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} \| INFO {5}\| explorer {23}\| event_type=state_recorded state_id=S1$`)
	assert.Regexp(t, re, line)
}

func TestWarnAndError_UseDistinctLevels(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := New(&buf, "core")
	log.Warn("budget_hit", map[string]any{"max_states": 30})
	log.Error("apply_failed", map[string]any{"selector": "#x"})

	out := buf.String()
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "ERROR")
}
