package coordination

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sh1ra083/codex/internal/errors"
	"github.com/Sh1ra083/codex/internal/event"
	"github.com/Sh1ra083/codex/internal/inbox"
	"github.com/Sh1ra083/codex/internal/logging"
	"github.com/Sh1ra083/codex/internal/tasklist"
	"github.com/Sh1ra083/codex/internal/team"
)

// LeaderInboxName is the reserved mailbox name for the team leader.
// Teammates address the leader by this name rather than by agent ID.
const LeaderInboxName = "leader"

// AgentControl is the runtime collaborator that manages live agents.
// The Hub persists coordination state; AgentControl owns the processes
// (or threads, or sessions) behind each roster member.
type AgentControl interface {
	// Spawn starts a new agent working on the given prompt and returns
	// its runtime identity.
	Spawn(ctx context.Context, name, prompt string) (team.AgentID, error)
	// Shutdown stops a running agent.
	Shutdown(ctx context.Context, id team.AgentID) error
	// Status reports an agent's lifecycle status (e.g. "running", "done").
	Status(ctx context.Context, id team.AgentID) (string, error)
}

// TeammateStatus is one member's entry in a roster poll.
type TeammateStatus struct {
	Name    string
	AgentID team.AgentID
	Role    string
	Status  string
}

// Config holds required dependencies for creating a Hub.
type Config struct {
	// Root is the coordination root directory holding all team state.
	Root string
	// Bus receives typed coordination events. Optional; a private bus is
	// created when nil so publishing is always safe.
	Bus *event.Bus
	// Logger receives structured log entries. Optional; defaults to a
	// no-op logger.
	Logger *logging.Logger
	// Control manages live agents. Optional; verbs that spawn, shut down,
	// or poll agents fail without it.
	Control AgentControl
}

// Hub wires the team stores, event bus, and agent control together for a
// single coordination root.
type Hub struct {
	teams   *team.Manager
	tasks   *tasklist.TaskList
	bus     *event.Bus
	logger  *logging.Logger
	control AgentControl

	lockTimeout time.Duration
	waitPoll    time.Duration
	now         func() time.Time
}

// NewHub creates a Hub rooted at cfg.Root.
func NewHub(cfg Config, opts ...Option) (*Hub, error) {
	if cfg.Root == "" {
		return nil, errors.New("coordination: Root is required")
	}

	hc := &hubConfig{
		waitPoll: 500 * time.Millisecond,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(hc)
	}

	var teamOpts []team.Option
	var taskOpts []tasklist.Option
	if hc.lockTimeout > 0 {
		teamOpts = append(teamOpts, team.WithLockTimeout(hc.lockTimeout))
		taskOpts = append(taskOpts, tasklist.WithLockTimeout(hc.lockTimeout))
	}

	bus := cfg.Bus
	if bus == nil {
		bus = event.NewBus()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}

	return &Hub{
		teams:       team.NewManager(filepath.Join(cfg.Root, "teams"), teamOpts...),
		tasks:       tasklist.New(filepath.Join(cfg.Root, "tasks"), taskOpts...),
		bus:         bus,
		logger:      logger,
		control:     cfg.Control,
		lockTimeout: hc.lockTimeout,
		waitPoll:    hc.waitPoll,
		now:         hc.now,
	}, nil
}

// Teams returns the underlying membership registry.
func (h *Hub) Teams() *team.Manager { return h.teams }

// TaskList returns the underlying work queue.
func (h *Hub) TaskList() *tasklist.TaskList { return h.tasks }

// Bus returns the event bus the Hub publishes on.
func (h *Hub) Bus() *event.Bus { return h.bus }

// Inbox returns the mailbox store for a team.
func (h *Hub) Inbox(teamName string) *inbox.Inbox {
	opts := []inbox.Option{inbox.WithClock(h.now)}
	if h.lockTimeout > 0 {
		opts = append(opts, inbox.WithLockTimeout(h.lockTimeout))
	}
	return inbox.New(h.teams.InboxesDir(teamName), opts...)
}

// CreateTeam creates a team's full state tree: roster config, work queue,
// and the leader's mailbox. Creating a team that already exists fails with
// ErrAlreadyExists.
func (h *Hub) CreateTeam(teamName string, leaderID team.AgentID) error {
	if _, err := h.teams.CreateTeam(teamName, leaderID); err != nil {
		return err
	}
	if err := h.tasks.Init(teamName); err != nil {
		return err
	}
	if err := h.Inbox(teamName).CreateInbox(LeaderInboxName); err != nil {
		return err
	}

	h.logger.WithTeam(teamName).Info("team created", "leader_id", leaderID.String())
	h.bus.Publish(event.NewTeamCreatedEvent(teamName, leaderID.String()))
	return nil
}

// SpawnTeammate starts a new agent via AgentControl and registers it on the
// roster with status running. A spawn failure is fatal; a roster persistence
// failure after a successful spawn is logged and the spawn still reported as
// success, since the agent is already running.
func (h *Hub) SpawnTeammate(ctx context.Context, teamName, name, role, prompt string) (team.AgentID, error) {
	if h.control == nil {
		return "", errors.New("coordination: AgentControl is required to spawn teammates")
	}

	// A duplicate name fails before any agent is started; degraded success
	// is reserved for persistence failures after the spawn.
	if cfg, err := h.teams.Load(teamName); err == nil {
		if _, exists := cfg.Member(name); exists {
			return "", errors.NewStoreError("spawn teammate", teamName, errors.ErrAlreadyExists, nil)
		}
	}

	id, err := h.control.Spawn(ctx, name, prompt)
	if err != nil {
		return "", errors.Wrapf(err, "failed to spawn teammate %s", name)
	}

	member := team.Member{
		Name:    name,
		AgentID: id,
		Role:    role,
		Status:  team.StatusRunning,
		Prompt:  prompt,
	}
	log := h.logger.WithTeam(teamName).WithAgent(name)
	if err := h.teams.AddMember(teamName, member); err != nil {
		// The agent is already running; report success anyway.
		log.Warn("spawned teammate but failed to persist member", "error", err.Error())
	}

	log.Info("teammate spawned", "agent_id", id.String(), "role", role)
	h.bus.Publish(event.NewMemberAddedEvent(teamName, name, id.String()))
	return id, nil
}

// UpdateTeammateStatus records a member's new lifecycle status on the roster.
func (h *Hub) UpdateTeammateStatus(teamName, name string, status team.MemberStatus) error {
	if err := h.teams.UpdateMemberStatus(teamName, name, status); err != nil {
		return err
	}
	h.logger.WithTeam(teamName).WithAgent(name).Debug("teammate status updated", "status", status.String())
	h.bus.Publish(event.NewMemberStatusChangedEvent(teamName, name, status.String()))
	return nil
}

// newTaskID generates a queue-unique task identifier.
func newTaskID() string {
	return "task-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// AssignTask appends a new task to the team's queue. When assignee is
// non-empty the task is direct-assigned and skips the claim flow.
func (h *Hub) AssignTask(teamName, title, assignee string, dependsOn []string) (*tasklist.Task, error) {
	if err := h.tasks.Init(teamName); err != nil {
		return nil, err
	}

	task := tasklist.Task{
		ID:         newTaskID(),
		Title:      title,
		Status:     tasklist.TaskPending,
		AssignedTo: assignee,
		DependsOn:  dependsOn,
	}
	if err := h.tasks.CreateTask(teamName, task); err != nil {
		return nil, err
	}
	if assignee != "" {
		if _, err := h.tasks.AssignTask(teamName, task.ID, assignee); err != nil {
			return nil, err
		}
		task.Status = tasklist.TaskInProgress
	}

	h.logger.WithTeam(teamName).Info("task created",
		"task_id", task.ID, "title", title, "assigned_to", assignee)
	h.bus.Publish(event.NewTaskCreatedEvent(teamName, task.ID, title))
	return &task, nil
}

// AcceptTask claims the next available task for the claimant. Returns
// (nil, nil) when nothing is claimable.
func (h *Hub) AcceptTask(teamName, claimant string) (*tasklist.Task, error) {
	task, err := h.tasks.AcceptNextTask(teamName, claimant)
	if err != nil || task == nil {
		return task, err
	}

	h.logger.WithTeam(teamName).WithAgent(claimant).Info("task claimed", "task_id", task.ID)
	h.bus.Publish(event.NewTaskClaimedEvent(teamName, task.ID, claimant))
	return task, nil
}

// CompleteTask marks a task completed. Completing an unknown task is a no-op.
func (h *Hub) CompleteTask(teamName, taskID string) error {
	found, err := h.tasks.CompleteTask(teamName, taskID)
	if err != nil {
		return err
	}
	if found {
		h.logger.WithTeam(teamName).Info("task completed", "task_id", taskID)
		h.bus.Publish(event.NewTaskCompletedEvent(teamName, taskID))
	}
	return nil
}

// Tasks returns every task in the team's queue in creation order.
func (h *Hub) Tasks(teamName string) ([]tasklist.Task, error) {
	return h.tasks.GetAllTasks(teamName)
}

// SendMessage delivers a direct message to a teammate's mailbox.
func (h *Hub) SendMessage(teamName, from, to, content string) error {
	msg := inbox.Message{
		From:      from,
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Content:   content,
	}
	if err := h.Inbox(teamName).SendMessage(to, msg); err != nil {
		return err
	}

	h.logger.WithTeam(teamName).WithAgent(from).Debug("message sent", "to", to)
	h.bus.Publish(event.NewMessageSentEvent(teamName, from, to))
	return nil
}

// Broadcast fans a message out to every mailbox in the team except the
// sender's. Delivery continues past per-recipient failures; the first
// failure is returned.
func (h *Hub) Broadcast(teamName, from, content string) error {
	err := h.Inbox(teamName).Broadcast(from, content, true)

	recipients := 0
	if cfg, loadErr := h.teams.Load(teamName); loadErr == nil {
		recipients = len(cfg.Members)
	}

	h.logger.WithTeam(teamName).WithAgent(from).Debug("broadcast sent",
		"recipients", recipients)
	h.bus.Publish(event.NewBroadcastSentEvent(teamName, from, recipients))
	return err
}

// RequestShutdown lets a teammate signal the leader that its work is done.
// The request lands in the leader's mailbox as an ordinary message.
func (h *Hub) RequestShutdown(teamName, from string) error {
	return h.SendMessage(teamName, from, LeaderInboxName, "Requesting shutdown — work complete.")
}

// PollTeammates reports every roster member's live status via AgentControl.
func (h *Hub) PollTeammates(ctx context.Context, teamName string) ([]TeammateStatus, error) {
	if h.control == nil {
		return nil, errors.New("coordination: AgentControl is required to poll teammates")
	}

	cfg, err := h.teams.Load(teamName)
	if err != nil {
		return nil, err
	}

	statuses := make([]TeammateStatus, 0, len(cfg.Members))
	for _, member := range cfg.Members {
		status, err := h.control.Status(ctx, member.AgentID)
		if err != nil {
			status = "unknown"
		}
		statuses = append(statuses, TeammateStatus{
			Name:    member.Name,
			AgentID: member.AgentID,
			Role:    member.Role,
			Status:  status,
		})
	}
	return statuses, nil
}

// terminalAgentStatus reports whether a live status means the agent has
// stopped doing work.
func terminalAgentStatus(status string) bool {
	switch strings.ToLower(status) {
	case "done", "exited", "shutdown", "stopped":
		return true
	}
	return false
}

// WaitForTeammates blocks until every roster member reports a terminal
// status, polling AgentControl at the configured interval. Members whose
// status cannot be determined are treated as still running.
func (h *Hub) WaitForTeammates(ctx context.Context, teamName string) error {
	ticker := time.NewTicker(h.waitPoll)
	defer ticker.Stop()

	for {
		statuses, err := h.PollTeammates(ctx, teamName)
		if err != nil {
			return err
		}

		allDone := true
		for _, s := range statuses {
			if !terminalAgentStatus(s.Status) {
				allDone = false
				break
			}
		}
		if allDone {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ShutdownTeammate stops a member's agent and drops it from the roster.
// The shutdown and the roster removal are both best-effort once the member
// has been resolved; failures are logged.
func (h *Hub) ShutdownTeammate(ctx context.Context, teamName, name string) error {
	if h.control == nil {
		return errors.New("coordination: AgentControl is required to shut down teammates")
	}

	cfg, err := h.teams.Load(teamName)
	if err != nil {
		return err
	}
	member, ok := cfg.Member(name)
	if !ok {
		return errors.NewStoreError("shutdown teammate", teamName, errors.ErrNotFound, nil)
	}

	log := h.logger.WithTeam(teamName).WithAgent(name)
	if err := h.control.Shutdown(ctx, member.AgentID); err != nil {
		log.Warn("failed to shut down agent", "error", err.Error())
	}
	if err := h.teams.RemoveMember(teamName, name); err != nil {
		log.Warn("failed to remove teammate from roster", "error", err.Error())
	}

	log.Info("teammate shut down", "agent_id", member.AgentID.String())
	h.bus.Publish(event.NewMemberRemovedEvent(teamName, name))
	return nil
}

// CleanupTeam shuts down every member (best-effort), then removes the
// team's queue and roster state. Cleaning up an unknown team is a no-op.
func (h *Hub) CleanupTeam(ctx context.Context, teamName string) error {
	log := h.logger.WithTeam(teamName)

	if cfg, err := h.teams.Load(teamName); err == nil && h.control != nil {
		for _, member := range cfg.Members {
			if err := h.control.Shutdown(ctx, member.AgentID); err != nil {
				log.Warn("failed to shut down teammate during cleanup",
					"member", member.Name, "error", err.Error())
			}
		}
	}

	if err := h.tasks.Cleanup(teamName); err != nil {
		log.Warn("failed to clean up task queue", "error", err.Error())
	}
	if err := h.teams.Cleanup(teamName); err != nil {
		return err
	}

	log.Info("team cleaned up")
	h.bus.Publish(event.NewTeamCleanedUpEvent(teamName))
	return nil
}
