package inbox

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Sh1ra083/codex/internal/docstore"
	"github.com/Sh1ra083/codex/internal/errors"
)

// Inbox manages the mailbox documents for one team, rooted at the team's
// inboxes directory (typically teams/{team}/inboxes).
type Inbox struct {
	dir         string
	lockTimeout time.Duration
	now         func() time.Time
}

// Option configures an Inbox.
type Option func(*Inbox)

// WithLockTimeout sets the mailbox lock acquisition timeout.
// Zero or negative values leave the default in place.
func WithLockTimeout(d time.Duration) Option {
	return func(ib *Inbox) {
		if d > 0 {
			ib.lockTimeout = d
		}
	}
}

// WithClock overrides the clock used for broadcast timestamps. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(ib *Inbox) {
		if now != nil {
			ib.now = now
		}
	}
}

// New creates an Inbox over the given directory.
func New(inboxesDir string, opts ...Option) *Inbox {
	ib := &Inbox{
		dir:         inboxesDir,
		lockTimeout: docstore.DefaultLockTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(ib)
	}
	return ib
}

// path returns the mailbox document for a specific agent.
func (ib *Inbox) path(agentName string) string {
	return filepath.Join(ib.dir, agentName+".json")
}

// Init ensures the inboxes directory exists.
func (ib *Inbox) Init() error {
	if err := os.MkdirAll(ib.dir, 0o755); err != nil {
		return errors.NewStoreError("inbox.init", ib.dir, errors.ErrIO, err)
	}
	return nil
}

// CreateInbox ensures an empty message log exists for the agent.
// An existing log is never overwritten: the existence probe and the write
// run under the mailbox lock, so a concurrent send cannot slip between them
// and be clobbered.
func (ib *Inbox) CreateInbox(agentName string) error {
	if err := ib.Init(); err != nil {
		return err
	}

	path := ib.path(agentName)
	fl := docstore.NewFileLock(path)
	if err := fl.Lock(ib.lockTimeout); err != nil {
		return err
	}
	defer func() { _ = fl.Unlock() }()

	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return docstore.WriteJSON(path, []Message{})
}

// SendMessage appends a message to the recipient's log, creating the log
// transparently if absent. Atomic with respect to other sends and consumes
// on the same recipient.
func (ib *Inbox) SendMessage(to string, msg Message) error {
	if err := ib.Init(); err != nil {
		return err
	}

	fl := docstore.NewFileLock(ib.path(to))
	if err := fl.Lock(ib.lockTimeout); err != nil {
		return err
	}
	defer func() { _ = fl.Unlock() }()

	messages, err := ib.readLog(to)
	if err != nil {
		return err
	}
	messages = append(messages, msg)
	return docstore.WriteJSON(ib.path(to), messages)
}

// Broadcast sends content from one agent to every provisioned mailbox,
// with one shared timestamp across recipients. When excludeSelf is set the
// sender's own mailbox is skipped. A failure for one recipient does not
// abort the fan-out: remaining recipients are still attempted and the first
// error encountered is returned.
func (ib *Inbox) Broadcast(from, content string, excludeSelf bool) error {
	agents, err := ib.listAgents()
	if err != nil {
		return err
	}

	timestamp := ib.now().UTC().Format(time.RFC3339)
	var firstErr error
	for _, agent := range agents {
		if excludeSelf && agent == from {
			continue
		}
		msg := Message{
			From:      from,
			Timestamp: timestamp,
			Content:   content,
		}
		if err := ib.SendMessage(agent, msg); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ReadInbox returns every message in the agent's log, oldest first.
// A missing log yields an empty slice, not an error.
func (ib *Inbox) ReadInbox(agentName string) ([]Message, error) {
	return ib.readLog(agentName)
}

// ConsumeUnread atomically captures every unread message, flags the whole
// log as read, persists, and returns the captured set in log order.
// Messages already read before the call are excluded and left unchanged.
// Calling twice in a row with no intervening send yields a full set, then
// an empty one.
func (ib *Inbox) ConsumeUnread(agentName string) ([]Message, error) {
	if err := ib.Init(); err != nil {
		return nil, err
	}

	fl := docstore.NewFileLock(ib.path(agentName))
	if err := fl.Lock(ib.lockTimeout); err != nil {
		return nil, err
	}
	defer func() { _ = fl.Unlock() }()

	all, err := ib.readLog(agentName)
	if err != nil {
		return nil, err
	}

	var unread []Message
	for _, msg := range all {
		if !msg.Read {
			unread = append(unread, msg)
		}
	}
	if len(unread) == 0 {
		return nil, nil
	}

	for i := range all {
		all[i].Read = true
	}
	if err := docstore.WriteJSON(ib.path(agentName), all); err != nil {
		return nil, err
	}
	return unread, nil
}

// ConsumeAsTags consumes unread messages and renders them as delimited
// teammate-message blocks for injection into an agent's conversation,
// joined by blank lines. Returns "" and false when nothing is unread.
func (ib *Inbox) ConsumeAsTags(agentName string) (string, bool, error) {
	unread, err := ib.ConsumeUnread(agentName)
	if err != nil {
		return "", false, err
	}
	if len(unread) == 0 {
		return "", false, nil
	}

	tags := make([]string, 0, len(unread))
	for _, msg := range unread {
		var b strings.Builder
		b.WriteString(`<teammate-message from="`)
		b.WriteString(msg.From)
		b.WriteString("\">\n")
		b.WriteString(msg.Content)
		b.WriteString("\n</teammate-message>")
		tags = append(tags, b.String())
	}
	return strings.Join(tags, "\n\n"), true, nil
}

// readLog reads an agent's message log. Missing logs read as empty.
func (ib *Inbox) readLog(agentName string) ([]Message, error) {
	var messages []Message
	if err := docstore.ReadJSON(ib.path(agentName), &messages); err != nil {
		if os.IsNotExist(err) {
			return []Message{}, nil
		}
		return nil, err
	}
	return messages, nil
}

// listAgents returns every agent with a provisioned mailbox.
func (ib *Inbox) listAgents() ([]string, error) {
	entries, err := os.ReadDir(ib.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.NewStoreError("inbox.list", ib.dir, errors.ErrIO, err)
	}

	var agents []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		agents = append(agents, strings.TrimSuffix(name, ".json"))
	}
	return agents, nil
}
