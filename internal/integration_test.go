// Package internal contains integration tests that verify the coordination
// packages work together correctly: the Hub facade, the three stores, and
// the event bus routing between them.
package internal

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Sh1ra083/codex/internal/coordination"
	"github.com/Sh1ra083/codex/internal/event"
	"github.com/Sh1ra083/codex/internal/team"
)

// stubControl is a minimal in-memory AgentControl for integration tests.
type stubControl struct {
	mu       sync.Mutex
	nextID   int
	statuses map[team.AgentID]string
}

func newStubControl() *stubControl {
	return &stubControl{statuses: make(map[team.AgentID]string)}
}

func (s *stubControl) Spawn(_ context.Context, _, _ string) (team.AgentID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := team.AgentID(fmt.Sprintf("agent-%d", s.nextID))
	s.statuses[id] = "running"
	return id, nil
}

func (s *stubControl) Shutdown(_ context.Context, id team.AgentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[id] = "shutdown"
	return nil
}

func (s *stubControl) Status(_ context.Context, id team.AgentID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statuses[id], nil
}

// TestTeamWorkflowIntegration walks a whole team lifecycle through the Hub:
// create, spawn, dependency-gated task flow, messaging, and cleanup.
func TestTeamWorkflowIntegration(t *testing.T) {
	ctx := context.Background()
	bus := event.NewBus()

	var mu sync.Mutex
	var published []event.EventType
	bus.SubscribeAll(func(e event.Event) {
		mu.Lock()
		published = append(published, e.Type())
		mu.Unlock()
	})

	hub, err := coordination.NewHub(coordination.Config{
		Root:    t.TempDir(),
		Bus:     bus,
		Control: newStubControl(),
	})
	if err != nil {
		t.Fatalf("NewHub: %v", err)
	}

	if err := hub.CreateTeam("release", "leader-agent"); err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}
	if _, err := hub.SpawnTeammate(ctx, "release", "alice", "implementer", "implement the feature"); err != nil {
		t.Fatalf("SpawnTeammate: %v", err)
	}
	if _, err := hub.SpawnTeammate(ctx, "release", "bob", "reviewer", "review alice's work"); err != nil {
		t.Fatalf("SpawnTeammate: %v", err)
	}

	// Two tasks; the second depends on the first.
	impl, err := hub.AssignTask("release", "implement feature", "", nil)
	if err != nil {
		t.Fatalf("AssignTask: %v", err)
	}
	review, err := hub.AssignTask("release", "review feature", "", []string{impl.ID})
	if err != nil {
		t.Fatalf("AssignTask: %v", err)
	}

	// The review task is dependency-blocked until the implementation is done.
	claimed, err := hub.AcceptTask("release", "alice")
	if err != nil {
		t.Fatalf("AcceptTask: %v", err)
	}
	if claimed == nil || claimed.ID != impl.ID {
		t.Fatalf("alice should claim the implementation task, got %+v", claimed)
	}
	blocked, err := hub.AcceptTask("release", "bob")
	if err != nil {
		t.Fatalf("AcceptTask: %v", err)
	}
	if blocked != nil {
		t.Fatalf("review task should be blocked, got %+v", blocked)
	}

	if err := hub.CompleteTask("release", impl.ID); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	unblocked, err := hub.AcceptTask("release", "bob")
	if err != nil {
		t.Fatalf("AcceptTask: %v", err)
	}
	if unblocked == nil || unblocked.ID != review.ID {
		t.Fatalf("bob should claim the review task after the dependency completes, got %+v", unblocked)
	}

	// Messaging round trip: alice notifies bob, bob consumes once.
	if err := hub.SendMessage("release", "alice", "bob", "ready for review"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	unread, err := hub.Inbox("release").ConsumeUnread("bob")
	if err != nil {
		t.Fatalf("ConsumeUnread: %v", err)
	}
	if len(unread) != 1 || unread[0].Content != "ready for review" {
		t.Fatalf("bob's unread = %+v", unread)
	}
	again, err := hub.Inbox("release").ConsumeUnread("bob")
	if err != nil {
		t.Fatalf("second ConsumeUnread: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("second consume should be empty, got %d messages", len(again))
	}

	if err := hub.CleanupTeam(ctx, "release"); err != nil {
		t.Fatalf("CleanupTeam: %v", err)
	}
	if hub.Teams().Exists("release") {
		t.Error("team state should be gone after cleanup")
	}

	// The bus saw the whole lifecycle.
	mu.Lock()
	defer mu.Unlock()
	want := []event.EventType{
		event.TypeTeamCreated,
		event.TypeMemberAdded,
		event.TypeTaskCreated,
		event.TypeTaskClaimed,
		event.TypeTaskCompleted,
		event.TypeMessageSent,
		event.TypeTeamCleanedUp,
	}
	seen := make(map[event.EventType]bool, len(published))
	for _, typ := range published {
		seen[typ] = true
	}
	for _, typ := range want {
		if !seen[typ] {
			t.Errorf("expected event %s to be published", typ)
		}
	}
}

// TestSharedRootAcrossHubs verifies that two Hub instances over the same
// coordination root observe each other's writes, the way two independent
// processes would.
func TestSharedRootAcrossHubs(t *testing.T) {
	root := t.TempDir()

	leaderHub, err := coordination.NewHub(coordination.Config{Root: root})
	if err != nil {
		t.Fatalf("NewHub: %v", err)
	}
	workerHub, err := coordination.NewHub(coordination.Config{Root: root})
	if err != nil {
		t.Fatalf("NewHub: %v", err)
	}

	if err := leaderHub.CreateTeam("shared", "leader-agent"); err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}
	if _, err := leaderHub.AssignTask("shared", "do the thing", "", nil); err != nil {
		t.Fatalf("AssignTask: %v", err)
	}

	// The worker hub claims through its own store instances.
	task, err := workerHub.AcceptTask("shared", "worker")
	if err != nil {
		t.Fatalf("AcceptTask: %v", err)
	}
	if task == nil || task.AssignedTo != "worker" {
		t.Fatalf("worker should claim the task, got %+v", task)
	}

	// And the leader observes the claim.
	tasks, err := leaderHub.Tasks("shared")
	if err != nil {
		t.Fatalf("Tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].AssignedTo != "worker" {
		t.Fatalf("leader should see the claim, got %+v", tasks)
	}

	// Shutdown requests flow from worker to leader mailbox across hubs.
	if err := workerHub.RequestShutdown("shared", "worker"); err != nil {
		t.Fatalf("RequestShutdown: %v", err)
	}
	messages, err := leaderHub.Inbox("shared").ReadInbox(coordination.LeaderInboxName)
	if err != nil {
		t.Fatalf("ReadInbox: %v", err)
	}
	if len(messages) != 1 || messages[0].From != "worker" {
		t.Fatalf("leader inbox = %+v", messages)
	}
}

// TestConcurrentClaimsAcrossHubs runs claimants from separate Hub instances
// against one queue and checks every task is claimed exactly once.
func TestConcurrentClaimsAcrossHubs(t *testing.T) {
	root := t.TempDir()

	seed, err := coordination.NewHub(coordination.Config{Root: root})
	if err != nil {
		t.Fatalf("NewHub: %v", err)
	}
	if err := seed.CreateTeam("busy", "leader-agent"); err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}
	const taskCount = 6
	for i := 0; i < taskCount; i++ {
		if _, err := seed.AssignTask("busy", fmt.Sprintf("task %d", i), "", nil); err != nil {
			t.Fatalf("AssignTask: %v", err)
		}
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	claims := make(map[string]string)
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			hub, err := coordination.NewHub(coordination.Config{Root: root},
				coordination.WithLockTimeout(10*time.Second))
			if err != nil {
				t.Errorf("NewHub: %v", err)
				return
			}
			name := fmt.Sprintf("worker-%d", worker)
			for {
				task, err := hub.AcceptTask("busy", name)
				if err != nil {
					t.Errorf("AcceptTask: %v", err)
					return
				}
				if task == nil {
					return
				}
				mu.Lock()
				if prev, dup := claims[task.ID]; dup {
					t.Errorf("task %s claimed by both %s and %s", task.ID, prev, name)
				}
				claims[task.ID] = name
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()

	if len(claims) != taskCount {
		t.Errorf("expected %d claimed tasks, got %d", taskCount, len(claims))
	}
}
