package delivery

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "deliveries.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreRecordAndLoad(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	in := []Result{
		{Sink: SinkCaller, Outcome: OutcomeSent},
		{Sink: SinkEmail, Recipient: "a@b.com", Outcome: OutcomeSent},
		{Sink: SinkEmail, Recipient: "c@d.com", Outcome: OutcomeFailed, Error: "bounced"},
	}
	if err := s.Record(ctx, "run-1", in); err != nil {
		t.Fatalf("Record: %v", err)
	}

	out, err := s.RunResults(ctx, "run-1")
	if err != nil {
		t.Fatalf("RunResults: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("rows = %v", out)
	}
	if out[0].Sink != SinkCaller || out[1].Recipient != "a@b.com" {
		t.Fatalf("insert order not preserved: %v", out)
	}
	if out[2].Outcome != OutcomeFailed || out[2].Error != "bounced" {
		t.Fatalf("failure row = %+v", out[2])
	}
}

func TestStoreIsolatesRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Record(ctx, "run-a", []Result{{Sink: SinkCaller, Outcome: OutcomeSent}}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Record(ctx, "run-b", []Result{{Sink: SinkCaller, Outcome: OutcomeSent}}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	out, err := s.RunResults(ctx, "run-a")
	if err != nil {
		t.Fatalf("RunResults: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("run-a rows = %v", out)
	}
}

func TestDispatchWritesAuditRows(t *testing.T) {
	s := openTestStore(t)
	d := NewDispatcher(&blockingSender{}, s)

	d.Dispatch(context.Background(), Document{
		RunID:      "run-audit",
		PDF:        []byte("pdf"),
		Recipients: []string{"a@b.com"},
	})

	out, err := s.RunResults(context.Background(), "run-audit")
	if err != nil {
		t.Fatalf("RunResults: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("audit rows = %v", out)
	}
}
