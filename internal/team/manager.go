package team

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Sh1ra083/codex/internal/docstore"
	"github.com/Sh1ra083/codex/internal/errors"
)

const configFileName = "config.json"

// Manager is the membership registry for all teams under a single root
// directory (typically <coordination root>/teams). It is safe for concurrent
// use across goroutines and processes: every mutation holds the team's
// document lock for the full load-modify-save sequence.
type Manager struct {
	root        string
	lockTimeout time.Duration
	now         func() time.Time
}

// NewManager creates a Manager rooted at the given directory.
func NewManager(teamsRoot string, opts ...Option) *Manager {
	m := &Manager{
		root:        teamsRoot,
		lockTimeout: docstore.DefaultLockTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// teamDir returns the directory for a specific team.
func (m *Manager) teamDir(name string) string {
	return filepath.Join(m.root, name)
}

// configPath returns the path to the team's config document.
func (m *Manager) configPath(name string) string {
	return filepath.Join(m.teamDir(name), configFileName)
}

// InboxesDir returns the team's mailbox directory. The mailbox store is
// constructed over this path; the registry only provisions it.
func (m *Manager) InboxesDir(name string) string {
	return filepath.Join(m.teamDir(name), "inboxes")
}

// CreateTeam creates a new team with an empty member list and persists it.
// The team's mailbox directory is provisioned so later mailbox operations
// never need to special-case a missing directory. Fails with ErrAlreadyExists
// if a config document already exists for the name.
func (m *Manager) CreateTeam(name string, leader AgentID) (*Team, error) {
	dir := m.teamDir(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.NewStoreError("team.create", dir, errors.ErrIO, err)
	}
	if err := os.MkdirAll(m.InboxesDir(name), 0o755); err != nil {
		return nil, errors.NewStoreError("team.create", dir, errors.ErrIO, err)
	}

	path := m.configPath(name)
	fl := docstore.NewFileLock(path)
	if err := fl.Lock(m.lockTimeout); err != nil {
		return nil, err
	}
	defer func() { _ = fl.Unlock() }()

	// The exists probe happens under the lock so two racing creators
	// cannot both win.
	if _, err := os.Stat(path); err == nil {
		return nil, errors.NewStoreError("team.create", path, errors.ErrAlreadyExists, nil)
	}

	cfg := &Team{
		Name:        name,
		CreatedAt:   m.now().UTC().Format(time.RFC3339),
		LeaderID:    leader,
		Members:     []Member{},
		DisplayMode: "in-process",
	}
	if err := docstore.WriteJSON(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// AddMember appends a member to the team and persists the config. A member
// with a duplicate name is rejected with ErrAlreadyExists, since ambiguous
// names would break later lookups. An empty mailbox is provisioned for the
// member if one does not already exist; an existing mailbox with prior
// messages is never clobbered.
func (m *Manager) AddMember(teamName string, member Member) error {
	path := m.configPath(teamName)
	if !m.Exists(teamName) {
		return errors.NewStoreError("team.add_member", path, errors.ErrNotFound, nil)
	}

	fl := docstore.NewFileLock(path)
	if err := fl.Lock(m.lockTimeout); err != nil {
		return err
	}
	defer func() { _ = fl.Unlock() }()

	cfg, err := m.loadLocked(teamName)
	if err != nil {
		return err
	}

	if _, exists := cfg.Member(member.Name); exists {
		return errors.NewStoreError("team.add_member", path, errors.ErrAlreadyExists, nil)
	}

	// Mailbox provisioning takes the mailbox document's own lock: the config
	// lock held above does not cover it, and a message sent between the
	// existence probe and the write must not be clobbered.
	inboxPath := filepath.Join(m.InboxesDir(teamName), member.Name+".json")
	ifl := docstore.NewFileLock(inboxPath)
	if err := ifl.Lock(m.lockTimeout); err != nil {
		return err
	}
	if _, err := os.Stat(inboxPath); os.IsNotExist(err) {
		if err := docstore.WriteJSON(inboxPath, []any{}); err != nil {
			_ = ifl.Unlock()
			return err
		}
	}
	if err := ifl.Unlock(); err != nil {
		return err
	}

	cfg.Members = append(cfg.Members, member)
	return docstore.WriteJSON(path, cfg)
}

// RemoveMember removes all members with the given name and persists.
// Removing a name with no matching member is a no-op, not an error.
func (m *Manager) RemoveMember(teamName, memberName string) error {
	path := m.configPath(teamName)
	if !m.Exists(teamName) {
		return errors.NewStoreError("team.remove_member", path, errors.ErrNotFound, nil)
	}

	fl := docstore.NewFileLock(path)
	if err := fl.Lock(m.lockTimeout); err != nil {
		return err
	}
	defer func() { _ = fl.Unlock() }()

	cfg, err := m.loadLocked(teamName)
	if err != nil {
		return err
	}

	kept := cfg.Members[:0]
	for _, mem := range cfg.Members {
		if mem.Name != memberName {
			kept = append(kept, mem)
		}
	}
	cfg.Members = kept
	return docstore.WriteJSON(path, cfg)
}

// UpdateMemberStatus sets the status of the named member and persists.
// A missing member is a no-op.
func (m *Manager) UpdateMemberStatus(teamName, memberName string, status MemberStatus) error {
	path := m.configPath(teamName)
	if !m.Exists(teamName) {
		return errors.NewStoreError("team.update_status", path, errors.ErrNotFound, nil)
	}

	fl := docstore.NewFileLock(path)
	if err := fl.Lock(m.lockTimeout); err != nil {
		return err
	}
	defer func() { _ = fl.Unlock() }()

	cfg, err := m.loadLocked(teamName)
	if err != nil {
		return err
	}

	for i := range cfg.Members {
		if cfg.Members[i].Name == memberName {
			cfg.Members[i].Status = status
			return docstore.WriteJSON(path, cfg)
		}
	}
	return nil
}

// Load reads the team config from disk. Fails with ErrNotFound if no
// document exists and ErrCorruptState if the document does not parse.
func (m *Manager) Load(teamName string) (*Team, error) {
	return m.loadLocked(teamName)
}

// loadLocked reads the config document. Callers performing a mutation must
// hold the document lock; pure reads are safe unlocked because writes are
// atomic renames.
func (m *Manager) loadLocked(teamName string) (*Team, error) {
	path := m.configPath(teamName)
	var cfg Team
	if err := docstore.ReadJSON(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewStoreError("team.load", path, errors.ErrNotFound, nil)
		}
		return nil, err
	}
	return &cfg, nil
}

// ListMembers returns a mapping of member name to identity handle.
func (m *Manager) ListMembers(teamName string) (map[string]AgentID, error) {
	cfg, err := m.Load(teamName)
	if err != nil {
		return nil, err
	}

	members := make(map[string]AgentID, len(cfg.Members))
	for _, mem := range cfg.Members {
		members[mem.Name] = mem.AgentID
	}
	return members, nil
}

// ListTeams returns the names of every team under the root, sorted.
// A missing root yields an empty list.
func (m *Manager) ListTeams() ([]string, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.NewStoreError("team.list", m.root, errors.ErrIO, err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		// Only directories that actually carry a team config count.
		if m.Exists(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Exists reports whether a team with the given name exists on disk.
// It never fails: any read error counts as "does not exist" for this probe.
func (m *Manager) Exists(teamName string) bool {
	_, err := os.Stat(m.configPath(teamName))
	return err == nil
}

// Cleanup deletes the team's entire persisted subtree (config and inboxes).
// Idempotent: succeeds even if nothing exists. The team's work queue lives
// under the task root and is removed by the task list's own Cleanup.
func (m *Manager) Cleanup(teamName string) error {
	if err := os.RemoveAll(m.teamDir(teamName)); err != nil {
		return errors.NewStoreError("team.cleanup", m.teamDir(teamName), errors.ErrIO, err)
	}
	return nil
}
