package tutor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/paperlab/oshiete/internal/llm"
)

// scriptedClient returns queued replies or errors in order.
type scriptedClient struct {
	replies []string
	errs    []error
	calls   int
	// seen records the message history of each call.
	seen [][]llm.Message
}

func (s *scriptedClient) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	hist := make([]llm.Message, len(messages))
	copy(hist, messages)
	s.seen = append(s.seen, hist)
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.replies) {
		return s.replies[i], nil
	}
	return "ok", nil
}

func factoryFor(c llm.Client) ClientFactory {
	return func() (llm.Client, error) { return c, nil }
}

func failingFactory(err error) ClientFactory {
	return func() (llm.Client, error) { return nil, err }
}

func TestNewSession_initError(t *testing.T) {
	_, err := NewSession(failingFactory(fmt.Errorf("missing API key")), "sp")
	var initErr *BackendInitError
	if !errors.As(err, &initErr) {
		t.Fatalf("want BackendInitError, got %v", err)
	}
}

func TestSession_sendCommitsHistory(t *testing.T) {
	client := &scriptedClient{replies: []string{"first reply", "second reply"}}
	s, err := NewSession(factoryFor(client), "system prompt")
	if err != nil {
		t.Fatal(err)
	}
	if s.Turns() != 0 {
		t.Errorf("fresh session has %d turns", s.Turns())
	}

	reply, err := s.Send(context.Background(), "What is X?")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply != "first reply" {
		t.Errorf("reply = %q", reply)
	}
	if s.Turns() != 2 {
		t.Errorf("turns = %d, want 2", s.Turns())
	}

	// The second call must carry the full prior history plus the new turn.
	if _, err := s.Send(context.Background(), "And Y?"); err != nil {
		t.Fatal(err)
	}
	last := client.seen[len(client.seen)-1]
	want := []string{"system prompt", "What is X?", "first reply", "And Y?"}
	if len(last) != len(want) {
		t.Fatalf("history length = %d, want %d", len(last), len(want))
	}
	for i, content := range want {
		if last[i].Content != content {
			t.Errorf("history[%d] = %q, want %q", i, last[i].Content, content)
		}
	}
}

func TestSession_failedSendLeavesHistoryIntact(t *testing.T) {
	client := &scriptedClient{
		errs:    []error{fmt.Errorf("rate limited"), nil},
		replies: []string{"", "recovered"},
	}
	s, err := NewSession(factoryFor(client), "sp")
	if err != nil {
		t.Fatal(err)
	}

	_, err = s.Send(context.Background(), "turn one")
	var callErr *BackendCallError
	if !errors.As(err, &callErr) {
		t.Fatalf("want BackendCallError, got %v", err)
	}
	if s.Turns() != 0 {
		t.Errorf("failed send committed %d turns", s.Turns())
	}

	// A caller retry must not duplicate the failed user turn.
	if _, err := s.Send(context.Background(), "turn one"); err != nil {
		t.Fatal(err)
	}
	last := client.seen[len(client.seen)-1]
	userTurns := 0
	for _, m := range last {
		if m.Role == "user" && m.Content == "turn one" {
			userTurns++
		}
	}
	if userTurns != 1 {
		t.Errorf("retried turn appears %d times in backend history", userTurns)
	}
}
