package model

// Task statuses as used by the portal backend.
const (
	TaskStatusOpen     = "open"
	TaskStatusAssigned = "assigned"
	TaskStatusDone     = "done"
)

// Task is a chore or work item members can claim and complete.
type Task struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Status       string `json:"status"`
	AssigneeID   int    `json:"assignee_id,omitempty"`
	AssigneeName string `json:"assignee_name,omitempty"`
	DueDate      string `json:"due_date,omitempty"`
}
