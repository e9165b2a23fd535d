package chat

import (
	"reflect"
	"testing"
)

func TestAppendTurnReturnsPlaceholderHandle(t *testing.T) {
	log, idx := AppendTurn(nil, "hello")
	if len(log) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(log))
	}
	if idx != 1 {
		t.Fatalf("expected placeholder index 1, got %d", idx)
	}
	if log[0].Role != RoleUser || log[0].Content != "hello" {
		t.Fatalf("unexpected user entry: %+v", log[0])
	}
	placeholder := log[idx]
	if placeholder.Role != RoleAssistant || placeholder.Content != "" || !placeholder.Loading || placeholder.Complete {
		t.Fatalf("unexpected placeholder: %+v", placeholder)
	}
}

func TestTransitionsDoNotMutateInput(t *testing.T) {
	orig := []Message{
		{Role: RoleUser, Content: "q"},
		{Role: RoleAssistant, Content: "partial", Loading: true},
	}
	snapshot := cloneLog(orig)

	_, _ = AppendTurn(orig, "next")
	_ = AppendReveal(orig, 1, "x")
	_ = FinalizeTurn(orig, 1, "done")
	_ = StopLatestPending(orig)
	_ = ClearForReveal(orig, 1)

	if !reflect.DeepEqual(orig, snapshot) {
		t.Fatalf("input log was mutated: %+v", orig)
	}
}

func TestOutOfRangeIndexIsNoOp(t *testing.T) {
	log := []Message{{Role: RoleUser, Content: "q"}}
	for _, idx := range []int{-1, 1, 99} {
		if got := AppendReveal(log, idx, "x"); !reflect.DeepEqual(got, log) {
			t.Fatalf("AppendReveal(%d) changed the log", idx)
		}
		if got := FinalizeTurn(log, idx, "x"); !reflect.DeepEqual(got, log) {
			t.Fatalf("FinalizeTurn(%d) changed the log", idx)
		}
		if got := FailTurn(log, idx, "x"); !reflect.DeepEqual(got, log) {
			t.Fatalf("FailTurn(%d) changed the log", idx)
		}
		if got := ClearForReveal(log, idx); !reflect.DeepEqual(got, log) {
			t.Fatalf("ClearForReveal(%d) changed the log", idx)
		}
	}
}

func TestFinalizeTurnConvergesFlags(t *testing.T) {
	log, idx := AppendTurn(nil, "q")
	log = FinalizeTurn(log, idx, "answer")
	got := log[idx]
	if got.Content != "answer" || got.Loading || !got.Complete {
		t.Fatalf("finalize did not converge flags: %+v", got)
	}
}

func TestAppendRevealConcatenates(t *testing.T) {
	log, idx := AppendTurn(nil, "q")
	log = ClearForReveal(log, idx)
	log = AppendReveal(log, idx, "he")
	log = AppendReveal(log, idx, "llo")
	if log[idx].Content != "hello" {
		t.Fatalf("expected hello, got %q", log[idx].Content)
	}
	if !log[idx].Loading || log[idx].Complete {
		t.Fatalf("reveal chunks must not settle the entry: %+v", log[idx])
	}
}

func TestStopLatestPendingSettlesLastIncomplete(t *testing.T) {
	log := []Message{
		{Role: RoleUser, Content: "a"},
		{Role: RoleAssistant, Content: "done", Complete: true},
		{Role: RoleUser, Content: "b"},
		{Role: RoleAssistant, Content: "part", Loading: true},
	}
	got := StopLatestPending(log)
	last := got[3]
	if last.Content != "part" || last.Loading || !last.Complete {
		t.Fatalf("expected partial content settled, got %+v", last)
	}
	if !got[1].Complete {
		t.Fatalf("earlier settled entry must not change")
	}
}

func TestStopLatestPendingNoPendingIsNoOp(t *testing.T) {
	log := []Message{
		{Role: RoleUser, Content: "a"},
		{Role: RoleAssistant, Content: "done", Complete: true},
	}
	if got := StopLatestPending(log); !reflect.DeepEqual(got, log) {
		t.Fatalf("expected no-op, got %+v", got)
	}
}

func TestResetAndLoad(t *testing.T) {
	log, _ := AppendTurn(nil, "q")
	if got := Reset(log); len(got) != 0 {
		t.Fatalf("reset must empty the log")
	}
	items := []Message{{Role: RoleAssistant, Content: "x", Complete: true}}
	got := Load(log, items)
	if !reflect.DeepEqual(got, items) {
		t.Fatalf("load must replace wholesale, got %+v", got)
	}
}

func TestUserMessageCount(t *testing.T) {
	if n := UserMessageCount(nil); n != 0 {
		t.Fatalf("empty log should count 0, got %d", n)
	}
	log := []Message{
		{Role: RoleAssistant, Content: "hi"},
		{Role: RoleUser, Content: "a"},
		{Role: RoleUser, Content: "b"},
	}
	if n := UserMessageCount(log); n != 2 {
		t.Fatalf("expected 2, got %d", n)
	}
}
