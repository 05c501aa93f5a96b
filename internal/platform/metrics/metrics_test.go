package metrics

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRecordCommandCountsRejectionsByName(t *testing.T) {
	c := New()

	c.RecordCommand("start_craft", nil, false)
	c.RecordCommand("start_craft", errors.New("insufficient"), false)
	c.RecordCommand("attempt_vent", errors.New("cooldown"), false)
	c.RecordCommand("attempt_vent", errors.New("cooldown"), false)

	if c.CommandsAccepted != 1 || c.CommandsRejected != 3 {
		t.Fatalf("accepted=%d rejected=%d", c.CommandsAccepted, c.CommandsRejected)
	}
	snap := c.Snapshot()["commands"].(map[string]interface{})
	by := snap["rejected_by"].(map[string]int64)
	if by["attempt_vent"] != 2 || by["start_craft"] != 1 {
		t.Fatalf("unexpected per-command counts %v", by)
	}
}

func TestHandlersRender(t *testing.T) {
	c := New()
	c.RecordTick(2 * time.Millisecond)
	c.RecordCommand("gamble", errors.New("not in city"), false)

	rec := httptest.NewRecorder()
	c.Handler()(rec, httptest.NewRequest("GET", "/metrics", nil))
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("json handler output: %v", err)
	}
	if _, ok := body["tick"]; !ok {
		t.Errorf("missing tick section")
	}

	rec = httptest.NewRecorder()
	c.PrometheusHandler()(rec, httptest.NewRequest("GET", "/metrics/prometheus", nil))
	text := rec.Body.String()
	if !strings.Contains(text, "drill_tick_count 1") {
		t.Errorf("missing tick counter:\n%s", text)
	}
	if !strings.Contains(text, `drill_commands_rejected{command="gamble"} 1`) {
		t.Errorf("missing labelled rejection:\n%s", text)
	}
}
