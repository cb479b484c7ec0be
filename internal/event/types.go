package event

import "time"

// EventType represents the type identifier for events.
// Using string type allows for easy debugging and extensibility.
type EventType string

// Event types for team lifecycle
const (
	// TypeTeamCreated indicates a team was created
	TypeTeamCreated EventType = "team.created"
	// TypeTeamCleanedUp indicates a team's state was removed
	TypeTeamCleanedUp EventType = "team.cleaned_up"
	// TypeMemberAdded indicates a member joined the team roster
	TypeMemberAdded EventType = "member.added"
	// TypeMemberRemoved indicates a member left the team roster
	TypeMemberRemoved EventType = "member.removed"
	// TypeMemberStatusChanged indicates a member's lifecycle status changed
	TypeMemberStatusChanged EventType = "member.status_changed"
)

// Event types for the work queue
const (
	// TypeTaskCreated indicates a task was appended to the queue
	TypeTaskCreated EventType = "task.created"
	// TypeTaskClaimed indicates a task transitioned to in_progress
	TypeTaskClaimed EventType = "task.claimed"
	// TypeTaskCompleted indicates a task reached its terminal status
	TypeTaskCompleted EventType = "task.completed"
)

// Event types for messaging
const (
	// TypeMessageSent indicates a direct message was delivered to a mailbox
	TypeMessageSent EventType = "message.sent"
	// TypeBroadcastSent indicates a message fanned out to the whole team
	TypeBroadcastSent EventType = "message.broadcast"
)

// Event is the interface that all events must implement.
// It provides a minimal contract for event identification and timing.
type Event interface {
	// Type returns the event type identifier
	Type() EventType
	// TeamName returns the team this event belongs to
	TeamName() string
	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
// Concrete event types should embed this struct.
type BaseEvent struct {
	eventType EventType
	teamName  string
	timestamp time.Time
}

// Type returns the event type identifier
func (e *BaseEvent) Type() EventType {
	return e.eventType
}

// TeamName returns the team this event belongs to
func (e *BaseEvent) TeamName() string {
	return e.teamName
}

// Timestamp returns when the event occurred
func (e *BaseEvent) Timestamp() time.Time {
	return e.timestamp
}

// NewBaseEvent creates a new BaseEvent with the current timestamp
func NewBaseEvent(eventType EventType, teamName string) BaseEvent {
	return BaseEvent{
		eventType: eventType,
		teamName:  teamName,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Team Events
// -----------------------------------------------------------------------------

// TeamCreatedEvent is emitted when a team and its state tree are created
type TeamCreatedEvent struct {
	BaseEvent
	LeaderID string // Agent ID of the founding leader
}

// NewTeamCreatedEvent creates a new TeamCreatedEvent
func NewTeamCreatedEvent(teamName, leaderID string) *TeamCreatedEvent {
	return &TeamCreatedEvent{
		BaseEvent: NewBaseEvent(TypeTeamCreated, teamName),
		LeaderID:  leaderID,
	}
}

// TeamCleanedUpEvent is emitted after a team's persisted state is removed
type TeamCleanedUpEvent struct {
	BaseEvent
}

// NewTeamCleanedUpEvent creates a new TeamCleanedUpEvent
func NewTeamCleanedUpEvent(teamName string) *TeamCleanedUpEvent {
	return &TeamCleanedUpEvent{
		BaseEvent: NewBaseEvent(TypeTeamCleanedUp, teamName),
	}
}

// MemberAddedEvent is emitted when a member is registered on the roster
type MemberAddedEvent struct {
	BaseEvent
	MemberName string // Roster name of the new member
	AgentID    string // Runtime identity of the new member
}

// NewMemberAddedEvent creates a new MemberAddedEvent
func NewMemberAddedEvent(teamName, memberName, agentID string) *MemberAddedEvent {
	return &MemberAddedEvent{
		BaseEvent:  NewBaseEvent(TypeMemberAdded, teamName),
		MemberName: memberName,
		AgentID:    agentID,
	}
}

// MemberRemovedEvent is emitted when a member is dropped from the roster
type MemberRemovedEvent struct {
	BaseEvent
	MemberName string // Roster name of the removed member
}

// NewMemberRemovedEvent creates a new MemberRemovedEvent
func NewMemberRemovedEvent(teamName, memberName string) *MemberRemovedEvent {
	return &MemberRemovedEvent{
		BaseEvent:  NewBaseEvent(TypeMemberRemoved, teamName),
		MemberName: memberName,
	}
}

// MemberStatusChangedEvent is emitted when a member's status is updated
type MemberStatusChangedEvent struct {
	BaseEvent
	MemberName string // Roster name of the member
	Status     string // New lifecycle status
}

// NewMemberStatusChangedEvent creates a new MemberStatusChangedEvent
func NewMemberStatusChangedEvent(teamName, memberName, status string) *MemberStatusChangedEvent {
	return &MemberStatusChangedEvent{
		BaseEvent:  NewBaseEvent(TypeMemberStatusChanged, teamName),
		MemberName: memberName,
		Status:     status,
	}
}

// -----------------------------------------------------------------------------
// Task Events
// -----------------------------------------------------------------------------

// TaskCreatedEvent is emitted when a task is appended to a team's queue
type TaskCreatedEvent struct {
	BaseEvent
	TaskID string // Queue-unique task identifier
	Title  string // Human-readable task description
}

// NewTaskCreatedEvent creates a new TaskCreatedEvent
func NewTaskCreatedEvent(teamName, taskID, title string) *TaskCreatedEvent {
	return &TaskCreatedEvent{
		BaseEvent: NewBaseEvent(TypeTaskCreated, teamName),
		TaskID:    taskID,
		Title:     title,
	}
}

// TaskClaimedEvent is emitted when a task is claimed by an agent
type TaskClaimedEvent struct {
	BaseEvent
	TaskID   string // Queue-unique task identifier
	Claimant string // Agent that now holds the task
}

// NewTaskClaimedEvent creates a new TaskClaimedEvent
func NewTaskClaimedEvent(teamName, taskID, claimant string) *TaskClaimedEvent {
	return &TaskClaimedEvent{
		BaseEvent: NewBaseEvent(TypeTaskClaimed, teamName),
		TaskID:    taskID,
		Claimant:  claimant,
	}
}

// TaskCompletedEvent is emitted when a task reaches its terminal status
type TaskCompletedEvent struct {
	BaseEvent
	TaskID string // Queue-unique task identifier
}

// NewTaskCompletedEvent creates a new TaskCompletedEvent
func NewTaskCompletedEvent(teamName, taskID string) *TaskCompletedEvent {
	return &TaskCompletedEvent{
		BaseEvent: NewBaseEvent(TypeTaskCompleted, teamName),
		TaskID:    taskID,
	}
}

// -----------------------------------------------------------------------------
// Messaging Events
// -----------------------------------------------------------------------------

// MessageSentEvent is emitted after a direct message lands in a mailbox
type MessageSentEvent struct {
	BaseEvent
	From string // Sending agent
	To   string // Receiving agent
}

// NewMessageSentEvent creates a new MessageSentEvent
func NewMessageSentEvent(teamName, from, to string) *MessageSentEvent {
	return &MessageSentEvent{
		BaseEvent: NewBaseEvent(TypeMessageSent, teamName),
		From:      from,
		To:        to,
	}
}

// BroadcastSentEvent is emitted after a message fans out to the team
type BroadcastSentEvent struct {
	BaseEvent
	From       string // Sending agent
	Recipients int    // Number of mailboxes attempted
}

// NewBroadcastSentEvent creates a new BroadcastSentEvent
func NewBroadcastSentEvent(teamName, from string, recipients int) *BroadcastSentEvent {
	return &BroadcastSentEvent{
		BaseEvent:  NewBaseEvent(TypeBroadcastSent, teamName),
		From:       from,
		Recipients: recipients,
	}
}
