// Package tasklist implements the shared work queue for agent teams.
//
// Each team owns a single document at tasks/{team}/tasks.json under the
// list's root. Claiming is dependency-gated and exclusive: AcceptNextTask
// holds the queue's cross-process lock across its whole scan-and-claim
// sequence, so two concurrent claimants can never both receive the same task.
package tasklist
