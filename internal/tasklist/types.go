package tasklist

// TaskStatus represents the current state of a queued task.
type TaskStatus string

const (
	// TaskPending indicates the task is waiting to be claimed or assigned.
	TaskPending TaskStatus = "pending"

	// TaskInProgress indicates the task is claimed by or assigned to a
	// teammate.
	TaskInProgress TaskStatus = "in_progress"

	// TaskCompleted indicates the task is finished. Terminal: there is no
	// regression path backward.
	TaskCompleted TaskStatus = "completed"
)

// String returns the string representation of the task status.
func (s TaskStatus) String() string { return string(s) }

// IsTerminal returns true if this status represents a final state.
func (s TaskStatus) IsTerminal() bool { return s == TaskCompleted }

// Task is a single unit of work in a team's queue.
//
// DependsOn holds opaque task ids; a dependency id that never resolves to a
// completed task permanently blocks its dependents, which is accepted rather
// than treated as an error.
type Task struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Status     TaskStatus `json:"status"`
	AssignedTo string     `json:"assigned_to,omitempty"`
	DependsOn  []string   `json:"depends_on"`
}

// queueData is the on-disk shape of a team's work queue: an object with a
// single tasks array, in creation order.
type queueData struct {
	Tasks []Task `json:"tasks"`
}
