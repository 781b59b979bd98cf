package entities

import "time"

// TaskStatus is an open set of task states; only TaskDone is interpreted by reports.
type TaskStatus string

const (
	TaskToDo       TaskStatus = "To Do"
	TaskInProgress TaskStatus = "In Progress"
	TaskDone       TaskStatus = "Done"
)

// ActiveTaskStatuses are the states counted by the single-active-task rule.
var ActiveTaskStatuses = []string{string(TaskToDo), string(TaskInProgress)}

// Task belongs to exactly one project and is assigned to at most one user.
type Task struct {
	ID              string     `json:"id" bson:"_id"`
	Title           string     `json:"title" bson:"title"`
	Description     string     `json:"description" bson:"description"`
	Status          TaskStatus `json:"status" bson:"status"`
	Priority        string     `json:"priority" bson:"priority"`
	DueDate         time.Time  `json:"due_date" bson:"due_date"`
	ProjectID       string     `json:"project" bson:"project"`
	AssignedTo      string     `json:"assigned_to,omitempty" bson:"assigned_to,omitempty"`
	AssignedToName  string     `json:"assigned_to_name,omitempty" bson:"assigned_to_name,omitempty"`
	AssignedToEmail string     `json:"assigned_to_email,omitempty" bson:"assigned_to_email,omitempty"`
	CreatedBy       string     `json:"created_by" bson:"created_by"`
	CreatedAt       time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" bson:"updated_at"`
}

// DocID implements Document.
func (t Task) DocID() string { return t.ID }

// Collection implements Document.
func (Task) Collection() Collection { return CollectionTasks }

// IsActive reports whether the task counts against its assignee at instant now.
func (t Task) IsActive(now time.Time) bool {
	return (t.Status == TaskToDo || t.Status == TaskInProgress) && t.DueDate.After(now)
}

// Assign points the task at u and refreshes the denormalised snapshot.
func (t *Task) Assign(u User) {
	t.AssignedTo = u.ID
	t.AssignedToName = u.Name
	t.AssignedToEmail = u.Email
}

// Unassign clears the assignee and its snapshot.
func (t *Task) Unassign() {
	t.AssignedTo = ""
	t.AssignedToName = ""
	t.AssignedToEmail = ""
}

// TaskPatch carries optional task field changes.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Priority    *string
	DueDate     *time.Time
	ProjectID   *string
	AssignedTo  *string
}
