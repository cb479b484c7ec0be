package inbox

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Sh1ra083/codex/internal/docstore"
	"github.com/Sh1ra083/codex/internal/errors"
)

func TestInbox_SendAndRead(t *testing.T) {
	ib := New(t.TempDir())
	if err := ib.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := ib.CreateInbox("alice"); err != nil {
		t.Fatalf("CreateInbox: %v", err)
	}

	msg := Message{From: "bob", Timestamp: "2026-01-01T00:00:00Z", Content: "Hello Alice!"}
	if err := ib.SendMessage("alice", msg); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	messages, err := ib.ReadInbox("alice")
	if err != nil {
		t.Fatalf("ReadInbox: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if messages[0].Content != "Hello Alice!" {
		t.Errorf("Content = %q, want %q", messages[0].Content, "Hello Alice!")
	}
	if messages[0].Read {
		t.Error("new message should be unread")
	}
}

func TestInbox_SendCreatesMissingLog(t *testing.T) {
	ib := New(t.TempDir())

	// No Init, no CreateInbox: the log is created transparently.
	msg := Message{From: "bob", Timestamp: "2026-01-01T00:00:00Z", Content: "hi"}
	if err := ib.SendMessage("carol", msg); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	messages, err := ib.ReadInbox("carol")
	if err != nil {
		t.Fatalf("ReadInbox: %v", err)
	}
	if len(messages) != 1 {
		t.Errorf("expected 1 message, got %d", len(messages))
	}
}

func TestInbox_ReadMissingLogIsEmpty(t *testing.T) {
	ib := New(t.TempDir())

	messages, err := ib.ReadInbox("nobody")
	if err != nil {
		t.Fatalf("reading a missing log should not error: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("expected empty log, got %d messages", len(messages))
	}
}

func TestInbox_CreateInboxDoesNotOverwrite(t *testing.T) {
	ib := New(t.TempDir())
	if err := ib.CreateInbox("alice"); err != nil {
		t.Fatalf("CreateInbox: %v", err)
	}
	if err := ib.SendMessage("alice", Message{From: "bob", Content: "keep"}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if err := ib.CreateInbox("alice"); err != nil {
		t.Fatalf("second CreateInbox: %v", err)
	}

	messages, _ := ib.ReadInbox("alice")
	if len(messages) != 1 {
		t.Error("CreateInbox must not overwrite an existing log")
	}
}

func TestInbox_CreateInboxWaitsForMailboxLock(t *testing.T) {
	dir := t.TempDir()
	ib := New(dir, WithLockTimeout(100*time.Millisecond))

	// A sender mid-write holds the mailbox lock; provisioning must not run
	// its existence probe and write around it.
	fl := docstore.NewFileLock(filepath.Join(dir, "fresh.json"))
	if err := fl.Lock(time.Second); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer func() { _ = fl.Unlock() }()

	err := ib.CreateInbox("fresh")
	if !errors.IsBusy(err) {
		t.Errorf("CreateInbox against a held mailbox lock should be busy, got %v", err)
	}
}

func TestInbox_ConcurrentCreateAndSendKeepsMessage(t *testing.T) {
	ib := New(t.TempDir())
	msg := Message{From: "bob", Timestamp: "2026-01-01T00:00:00Z", Content: "hi"}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := ib.SendMessage("fresh", msg); err != nil {
			t.Errorf("SendMessage: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := ib.CreateInbox("fresh"); err != nil {
			t.Errorf("CreateInbox: %v", err)
		}
	}()
	wg.Wait()

	messages, err := ib.ReadInbox("fresh")
	if err != nil {
		t.Fatalf("ReadInbox: %v", err)
	}
	if len(messages) != 1 {
		t.Errorf("message sent during provisioning was lost: got %d messages", len(messages))
	}
}

func TestInbox_ConsumeUnreadMarksAsRead(t *testing.T) {
	ib := New(t.TempDir())
	if err := ib.CreateInbox("alice"); err != nil {
		t.Fatalf("CreateInbox: %v", err)
	}

	sent := []string{"first", "second", "third"}
	for _, content := range sent {
		if err := ib.SendMessage("alice", Message{From: "bob", Content: content}); err != nil {
			t.Fatalf("SendMessage: %v", err)
		}
	}

	unread, err := ib.ConsumeUnread("alice")
	if err != nil {
		t.Fatalf("ConsumeUnread: %v", err)
	}
	if len(unread) != len(sent) {
		t.Fatalf("expected %d unread, got %d", len(sent), len(unread))
	}
	for i, msg := range unread {
		if msg.Content != sent[i] {
			t.Errorf("unread[%d].Content = %q, want %q (send order)", i, msg.Content, sent[i])
		}
	}

	// Second call returns empty.
	unread, err = ib.ConsumeUnread("alice")
	if err != nil {
		t.Fatalf("second ConsumeUnread: %v", err)
	}
	if len(unread) != 0 {
		t.Errorf("second consume should be empty, got %d", len(unread))
	}

	// The log itself keeps every message, now flagged read.
	messages, _ := ib.ReadInbox("alice")
	if len(messages) != len(sent) {
		t.Fatalf("log should retain all messages, got %d", len(messages))
	}
	for i, msg := range messages {
		if !msg.Read {
			t.Errorf("messages[%d] should be flagged read", i)
		}
	}
}

func TestInbox_ConsumeUnreadExcludesAlreadyRead(t *testing.T) {
	ib := New(t.TempDir())
	if err := ib.CreateInbox("alice"); err != nil {
		t.Fatalf("CreateInbox: %v", err)
	}

	if err := ib.SendMessage("alice", Message{From: "bob", Content: "old"}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if _, err := ib.ConsumeUnread("alice"); err != nil {
		t.Fatalf("ConsumeUnread: %v", err)
	}

	if err := ib.SendMessage("alice", Message{From: "bob", Content: "new"}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	unread, err := ib.ConsumeUnread("alice")
	if err != nil {
		t.Fatalf("ConsumeUnread: %v", err)
	}
	if len(unread) != 1 || unread[0].Content != "new" {
		t.Errorf("expected only the new message, got %+v", unread)
	}
}

func TestInbox_BroadcastExcludesSelf(t *testing.T) {
	ib := New(t.TempDir())
	for _, agent := range []string{"leader", "alice", "bob"} {
		if err := ib.CreateInbox(agent); err != nil {
			t.Fatalf("CreateInbox(%s): %v", agent, err)
		}
	}

	if err := ib.Broadcast("leader", "Team update!", true); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}

	for _, agent := range []string{"alice", "bob"} {
		messages, err := ib.ReadInbox(agent)
		if err != nil {
			t.Fatalf("ReadInbox(%s): %v", agent, err)
		}
		if len(messages) != 1 {
			t.Errorf("%s should have exactly 1 message, got %d", agent, len(messages))
		}
	}

	leaderMsgs, _ := ib.ReadInbox("leader")
	if len(leaderMsgs) != 0 {
		t.Errorf("sender should be excluded, got %d messages", len(leaderMsgs))
	}
}

func TestInbox_BroadcastIncludesSelf(t *testing.T) {
	ib := New(t.TempDir())
	for _, agent := range []string{"leader", "alice"} {
		if err := ib.CreateInbox(agent); err != nil {
			t.Fatalf("CreateInbox(%s): %v", agent, err)
		}
	}

	if err := ib.Broadcast("leader", "note to all", false); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}

	leaderMsgs, _ := ib.ReadInbox("leader")
	if len(leaderMsgs) != 1 {
		t.Errorf("sender should receive its own broadcast, got %d", len(leaderMsgs))
	}
}

func TestInbox_BroadcastSharedTimestamp(t *testing.T) {
	fixed := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	ib := New(t.TempDir(), WithClock(func() time.Time { return fixed }))
	for _, agent := range []string{"alice", "bob"} {
		if err := ib.CreateInbox(agent); err != nil {
			t.Fatalf("CreateInbox(%s): %v", agent, err)
		}
	}

	if err := ib.Broadcast("leader", "sync", false); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}

	want := "2026-02-03T04:05:06Z"
	for _, agent := range []string{"alice", "bob"} {
		messages, _ := ib.ReadInbox(agent)
		if len(messages) != 1 || messages[0].Timestamp != want {
			t.Errorf("%s timestamp = %v, want shared %q", agent, messages, want)
		}
	}
}

func TestInbox_BroadcastContinuesPastFailure(t *testing.T) {
	dir := t.TempDir()
	ib := New(dir)
	for _, agent := range []string{"alice", "bob", "carol"} {
		if err := ib.CreateInbox(agent); err != nil {
			t.Fatalf("CreateInbox(%s): %v", agent, err)
		}
	}

	// Damage alice's log so the load inside SendMessage fails for her.
	alicePath := filepath.Join(dir, "alice.json")
	if err := os.WriteFile(alicePath, []byte("{damaged"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := ib.Broadcast("leader", "still delivered", true)
	if !errors.IsCorruptState(err) {
		t.Fatalf("expected the first per-recipient error to be reported, got %v", err)
	}

	// Remaining recipients were still attempted.
	for _, agent := range []string{"bob", "carol"} {
		messages, readErr := ib.ReadInbox(agent)
		if readErr != nil {
			t.Fatalf("ReadInbox(%s): %v", agent, readErr)
		}
		if len(messages) != 1 {
			t.Errorf("%s should have received the broadcast despite the failure, got %d", agent, len(messages))
		}
	}
}

func TestInbox_ConsumeAsTags(t *testing.T) {
	ib := New(t.TempDir())
	if err := ib.CreateInbox("alice"); err != nil {
		t.Fatalf("CreateInbox: %v", err)
	}

	if err := ib.SendMessage("alice", Message{From: "bob", Content: "Found a bug"}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if err := ib.SendMessage("alice", Message{From: "carol", Content: "On it"}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	text, ok, err := ib.ConsumeAsTags("alice")
	if err != nil {
		t.Fatalf("ConsumeAsTags: %v", err)
	}
	if !ok {
		t.Fatal("expected rendered tags")
	}
	if !strings.Contains(text, `<teammate-message from="bob">`) {
		t.Errorf("missing bob's tag in %q", text)
	}
	if !strings.Contains(text, "Found a bug") || !strings.Contains(text, "On it") {
		t.Errorf("missing message content in %q", text)
	}
	if !strings.Contains(text, "</teammate-message>\n\n<teammate-message") {
		t.Errorf("blocks should be joined by a blank line: %q", text)
	}

	// Nothing unread now.
	_, ok, err = ib.ConsumeAsTags("alice")
	if err != nil {
		t.Fatalf("second ConsumeAsTags: %v", err)
	}
	if ok {
		t.Error("second call should yield nothing")
	}
}

func TestInbox_CorruptLog(t *testing.T) {
	dir := t.TempDir()
	ib := New(dir)
	if err := os.WriteFile(filepath.Join(dir, "alice.json"), []byte("!!"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ib.ReadInbox("alice")
	if !errors.IsCorruptState(err) {
		t.Errorf("expected ErrCorruptState, got %v", err)
	}
}
