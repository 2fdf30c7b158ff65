package nats

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/Weavly/AppLoom/internal/port/toolevent"
)

// testConnect connects to NATS or skips the test if NATS_URL is not set.
func testConnect(t *testing.T) *Sink {
	t.Helper()

	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("requires NATS_URL")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := Connect(ctx, url)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return s
}

func TestSink_PublishToolResult(t *testing.T) {
	s := testConnect(t)

	data, err := json.Marshal(toolevent.Payload{
		SessionID:  "sess-" + t.Name(),
		CallID:     "call-1",
		Tool:       "list_files",
		Success:    true,
		DurationMS: 3,
		FileCount:  2,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if err := s.Publish(context.Background(), toolevent.SubjectToolResult, data); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}

func TestSink_PublishRejectsInvalidPayload(t *testing.T) {
	s := testConnect(t)

	err := s.Publish(context.Background(), toolevent.SubjectToolResult, []byte("not json"))
	if err == nil {
		t.Fatal("expected validation error for malformed payload")
	}
}
