// Package tasks derives the PSP onboarding task lists shown to merchants.
package tasks

// Status is the status of a single onboarding task.
type Status string

const (
	StatusNotStarted           Status = "NOT_STARTED"
	StatusCannotStart          Status = "CANNOT_START"
	StatusCompletedCannotStart Status = "COMPLETED_CANNOT_START"
	StatusCompleted            Status = "COMPLETED"
)

// IsComplete returns true for both completed variants.
func (s Status) IsComplete() bool {
	return s == StatusCompleted || s == StatusCompletedCannotStart
}

// Task is a single onboarding step.
type Task struct {
	ID       string `json:"id"`
	LinkText string `json:"link_text"`
	Href     string `json:"href"`
	Status   Status `json:"status"`
}

// Tasks is an ordered task list.
type Tasks struct {
	Tasks           []Task `json:"tasks"`
	IncompleteTasks bool   `json:"incomplete_tasks"`
}

// NewTasks wraps the ordered list and derives IncompleteTasks.
func NewTasks(list []Task) Tasks {
	incomplete := false
	for _, t := range list {
		if !t.Status.IsComplete() {
			incomplete = true
			break
		}
	}
	return Tasks{Tasks: list, IncompleteTasks: incomplete}
}

// Find returns the task with the given id.
func (t Tasks) Find(id string) (Task, bool) {
	for _, task := range t.Tasks {
		if task.ID == id {
			return task, true
		}
	}
	return Task{}, false
}

// IDs returns the task ids in order.
func (t Tasks) IDs() []string {
	ids := make([]string, len(t.Tasks))
	for i, task := range t.Tasks {
		ids[i] = task.ID
	}
	return ids
}
