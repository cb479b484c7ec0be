package team

// AgentID is the opaque identity handle correlating a team member to its
// execution context in the agent layer. The registry never interprets it.
type AgentID string

// String returns the textual form of the identity handle.
func (id AgentID) String() string { return string(id) }

// MemberStatus is the lifecycle status of a team member. Known values are
// listed below; values written by newer versions deserialize intact and
// report Known() == false.
type MemberStatus string

const (
	// StatusRunning indicates the member's agent is executing.
	StatusRunning MemberStatus = "running"

	// StatusIdle indicates the member is waiting for work.
	StatusIdle MemberStatus = "idle"

	// StatusShuttingDown indicates shutdown has been requested.
	StatusShuttingDown MemberStatus = "shutting-down"

	// StatusDone indicates the member finished its work.
	StatusDone MemberStatus = "done"
)

// String returns the string representation of the status.
func (s MemberStatus) String() string { return string(s) }

// Known reports whether this is a recognized status value.
func (s MemberStatus) Known() bool {
	switch s {
	case StatusRunning, StatusIdle, StatusShuttingDown, StatusDone:
		return true
	default:
		return false
	}
}

// Member is the persisted record of a single team member.
type Member struct {
	Name    string       `json:"name"`
	AgentID AgentID      `json:"agent_id"`
	Role    string       `json:"role,omitempty"`
	Status  MemberStatus `json:"status"`
	Prompt  string       `json:"prompt,omitempty"`
}

// Team is the persisted configuration of a single team.
// DisplayMode and DelegationMode are opaque pass-through flags owned by the
// caller; the registry persists them without interpreting them.
type Team struct {
	Name           string   `json:"name"`
	CreatedAt      string   `json:"created_at"`
	LeaderID       AgentID  `json:"leader_id"`
	Members        []Member `json:"members"`
	DisplayMode    string   `json:"display_mode,omitempty"`
	DelegationMode bool     `json:"delegation_mode,omitempty"`
}

// Member returns the member with the given name and true, or a zero Member
// and false if no member matches.
func (t *Team) Member(name string) (Member, bool) {
	for _, m := range t.Members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}
