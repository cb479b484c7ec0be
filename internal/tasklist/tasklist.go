package tasklist

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Sh1ra083/codex/internal/docstore"
	"github.com/Sh1ra083/codex/internal/errors"
)

const tasksFileName = "tasks.json"

// TaskList manages the per-team work queues under a single root directory
// (typically <coordination root>/tasks). Safe for concurrent use across
// goroutines and processes.
type TaskList struct {
	root        string
	lockTimeout time.Duration
}

// Option configures a TaskList.
type Option func(*TaskList)

// WithLockTimeout sets the queue lock acquisition timeout.
// Zero or negative values leave the default in place.
func WithLockTimeout(d time.Duration) Option {
	return func(tl *TaskList) {
		if d > 0 {
			tl.lockTimeout = d
		}
	}
}

// New creates a TaskList rooted at the given directory.
func New(tasksRoot string, opts ...Option) *TaskList {
	tl := &TaskList{
		root:        tasksRoot,
		lockTimeout: docstore.DefaultLockTimeout,
	}
	for _, opt := range opts {
		opt(tl)
	}
	return tl
}

// teamDir returns the directory for a specific team's queue.
func (tl *TaskList) teamDir(teamName string) string {
	return filepath.Join(tl.root, teamName)
}

// tasksPath returns the path to the team's queue document.
func (tl *TaskList) tasksPath(teamName string) string {
	return filepath.Join(tl.teamDir(teamName), tasksFileName)
}

// Init creates an empty queue document for the team if none exists.
// Idempotent: an existing document, and any tasks in it, are left untouched.
func (tl *TaskList) Init(teamName string) error {
	if err := os.MkdirAll(tl.teamDir(teamName), 0o755); err != nil {
		return errors.NewStoreError("tasklist.init", tl.teamDir(teamName), errors.ErrIO, err)
	}

	path := tl.tasksPath(teamName)
	fl := docstore.NewFileLock(path)
	if err := fl.Lock(tl.lockTimeout); err != nil {
		return err
	}
	defer func() { _ = fl.Unlock() }()

	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return docstore.WriteJSON(path, queueData{Tasks: []Task{}})
}

// load reads the queue document. A missing document yields an empty queue.
func (tl *TaskList) load(teamName string) (*queueData, error) {
	var data queueData
	if err := docstore.ReadJSON(tl.tasksPath(teamName), &data); err != nil {
		if os.IsNotExist(err) {
			return &queueData{Tasks: []Task{}}, nil
		}
		return nil, err
	}
	return &data, nil
}

// save persists the queue document.
func (tl *TaskList) save(teamName string, data *queueData) error {
	if err := os.MkdirAll(tl.teamDir(teamName), 0o755); err != nil {
		return errors.NewStoreError("tasklist.save", tl.teamDir(teamName), errors.ErrIO, err)
	}
	return docstore.WriteJSON(tl.tasksPath(teamName), data)
}

// update runs fn against the team's queue under the document lock and
// persists the result when fn reports a mutation.
func (tl *TaskList) update(teamName string, fn func(*queueData) (bool, error)) error {
	if err := os.MkdirAll(tl.teamDir(teamName), 0o755); err != nil {
		return errors.NewStoreError("tasklist.update", tl.teamDir(teamName), errors.ErrIO, err)
	}

	fl := docstore.NewFileLock(tl.tasksPath(teamName))
	if err := fl.Lock(tl.lockTimeout); err != nil {
		return err
	}
	defer func() { _ = fl.Unlock() }()

	data, err := tl.load(teamName)
	if err != nil {
		return err
	}

	dirty, err := fn(data)
	if err != nil {
		return err
	}
	if !dirty {
		return nil
	}
	return tl.save(teamName, data)
}

// CreateTask appends a task to the team's queue. The task must be pending
// (an empty status defaults to pending); an assignee may be set only when
// the caller is pre-assigning, in which case the facade follows up with
// AssignTask to advance the status.
func (tl *TaskList) CreateTask(teamName string, task Task) error {
	if task.Status == "" {
		task.Status = TaskPending
	}
	if task.Status != TaskPending {
		return fmt.Errorf("tasklist: new task %q must be pending, got %q", task.ID, task.Status)
	}
	if task.DependsOn == nil {
		task.DependsOn = []string{}
	}

	return tl.update(teamName, func(data *queueData) (bool, error) {
		data.Tasks = append(data.Tasks, task)
		return true, nil
	})
}

// AcceptNextTask atomically claims the next available task for a teammate:
// the first task in creation order that is pending, unassigned, and whose
// dependencies are all completed. Returns nil with no error when no task is
// currently claimable; callers should treat that as "try again later".
func (tl *TaskList) AcceptNextTask(teamName, claimant string) (*Task, error) {
	var claimed *Task

	err := tl.update(teamName, func(data *queueData) (bool, error) {
		completed := make(map[string]bool)
		for _, t := range data.Tasks {
			if t.Status == TaskCompleted {
				completed[t.ID] = true
			}
		}

		for i := range data.Tasks {
			if !claimable(&data.Tasks[i], completed) {
				continue
			}
			data.Tasks[i].Status = TaskInProgress
			data.Tasks[i].AssignedTo = claimant
			cp := data.Tasks[i]
			claimed = &cp
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// claimable reports whether the task is pending, unassigned, and has every
// dependency in the completed set.
func claimable(task *Task, completed map[string]bool) bool {
	if task.Status != TaskPending || task.AssignedTo != "" {
		return false
	}
	for _, dep := range task.DependsOn {
		if !completed[dep] {
			return false
		}
	}
	return true
}

// AssignTask directly sets the task's assignee, regardless of any current
// assignee. A pending task advances to in-progress; an in-progress or
// completed task keeps its status. Returns false if the task id is unknown.
func (tl *TaskList) AssignTask(teamName, taskID, assignee string) (bool, error) {
	found := false
	err := tl.update(teamName, func(data *queueData) (bool, error) {
		for i := range data.Tasks {
			if data.Tasks[i].ID != taskID {
				continue
			}
			data.Tasks[i].AssignedTo = assignee
			if data.Tasks[i].Status == TaskPending {
				data.Tasks[i].Status = TaskInProgress
			}
			found = true
			return true, nil
		}
		return false, nil
	})
	return found, err
}

// CompleteTask sets the task's status to completed, from any prior status.
// Completing an already-completed task is an idempotent success.
// Returns false if the task id is unknown.
func (tl *TaskList) CompleteTask(teamName, taskID string) (bool, error) {
	found := false
	err := tl.update(teamName, func(data *queueData) (bool, error) {
		for i := range data.Tasks {
			if data.Tasks[i].ID != taskID {
				continue
			}
			data.Tasks[i].Status = TaskCompleted
			found = true
			return true, nil
		}
		return false, nil
	})
	return found, err
}

// GetAllTasks returns every task in the team's queue in creation order.
// A missing queue document yields an empty slice.
func (tl *TaskList) GetAllTasks(teamName string) ([]Task, error) {
	data, err := tl.load(teamName)
	if err != nil {
		return nil, err
	}
	return data.Tasks, nil
}

// Cleanup deletes the team's queue directory. Idempotent.
func (tl *TaskList) Cleanup(teamName string) error {
	if err := os.RemoveAll(tl.teamDir(teamName)); err != nil {
		return errors.NewStoreError("tasklist.cleanup", tl.teamDir(teamName), errors.ErrIO, err)
	}
	return nil
}
