package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/geocoder89/taskhub/internal/actorctx"
)

func TestLoggerAddsCaller(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod")

	ctx := actorctx.WithActor(context.Background(), actorctx.Actor{UserID: "u-42"})
	log.InfoContext(ctx, "task completed", "task_id", "t-1")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not json: %v (%s)", err, buf.String())
	}
	if rec["caller_id"] != "u-42" {
		t.Fatalf("caller_id missing: %v", rec)
	}
	if _, ok := rec["trace_id"]; ok {
		t.Fatal("no span in context, trace_id should be absent")
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer

	newLogger(&buf, "prod").Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug should be filtered outside dev: %s", buf.String())
	}

	newLogger(&buf, "dev").Debug("shown")
	if buf.Len() == 0 {
		t.Fatal("debug should be logged in dev")
	}
}
