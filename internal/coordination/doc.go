// Package coordination provides a Hub that wires the team stores together
// for a single coordination root.
//
// The Hub composes the three persistent stores:
//
//	team.Manager → roster and team config
//	tasklist.TaskList → dependency-gated work queue
//	inbox.Inbox → read-once mailboxes
//
// Plus the runtime collaborator:
//
//   - AgentControl (spawning, shutting down, and polling live agents)
//
// And the observer infrastructure:
//
//   - Event bus (typed coordination events)
//   - Structured logger
//
// Usage:
//
//	hub, err := coordination.NewHub(coordination.Config{
//	    Root:    root,
//	    Bus:     bus,
//	    Control: control,
//	})
//	if err != nil {
//	    return err
//	}
//
//	if err := hub.CreateTeam("demo", leaderID); err != nil {
//	    return err
//	}
//	id, err := hub.SpawnTeammate(ctx, "demo", "alice", "reviewer", prompt)
package coordination
