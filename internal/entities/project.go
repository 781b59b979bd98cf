package entities

import "time"

// ProjectStatus enumerates project lifecycle states.
type ProjectStatus string

const (
	ProjectNotStarted ProjectStatus = "Not Started"
	ProjectInProgress ProjectStatus = "In Progress"
	ProjectCompleted  ProjectStatus = "Completed"
)

// Valid reports whether s is a known status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectNotStarted, ProjectInProgress, ProjectCompleted:
		return true
	}
	return false
}

// PriorityLevel enumerates project priorities.
type PriorityLevel string

const (
	PriorityLow      PriorityLevel = "Low"
	PriorityMedium   PriorityLevel = "Medium"
	PriorityHigh     PriorityLevel = "High"
	PriorityCritical PriorityLevel = "Critical"
)

// Valid reports whether p is a known priority.
func (p PriorityLevel) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Project is owned exclusively by its manager for mutation and deletion.
type Project struct {
	ID             string        `json:"id" bson:"_id"`
	Name           string        `json:"name" bson:"name"`
	Description    string        `json:"description" bson:"description"`
	StartDate      time.Time     `json:"start_date" bson:"start_date"`
	EndDate        *time.Time    `json:"end_date,omitempty" bson:"end_date,omitempty"`
	Status         ProjectStatus `json:"status" bson:"status"`
	PriorityLevel  PriorityLevel `json:"priority_level" bson:"priority_level"`
	Budget         float64       `json:"budget" bson:"budget"`
	Expenses       float64       `json:"expenses" bson:"expenses"`
	RiskAssessment string        `json:"risk_assessment,omitempty" bson:"risk_assessment,omitempty"`
	Attachment     string        `json:"attachment,omitempty" bson:"attachment,omitempty"`
	ManagerID      string        `json:"manager" bson:"manager"`
	TeamMembers    []string      `json:"team_members" bson:"team_members"`
	Tasks          []string      `json:"tasks" bson:"tasks"`
	Reports        []string      `json:"reports" bson:"reports"`
	CreatedAt      time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" bson:"updated_at"`
}

// DocID implements Document.
func (p Project) DocID() string { return p.ID }

// Collection implements Document.
func (Project) Collection() Collection { return CollectionProjects }

// HasTask reports whether taskID is in the project's task list.
func (p Project) HasTask(taskID string) bool {
	return containsID(p.Tasks, taskID)
}

// ProjectPatch carries optional project field changes.
type ProjectPatch struct {
	Name           *string
	Description    *string
	StartDate      *time.Time
	EndDate        *time.Time
	Status         *ProjectStatus
	PriorityLevel  *PriorityLevel
	Budget         *float64
	Expenses       *float64
	RiskAssessment *string
	Attachment     *string
	TeamMembers    []string
}
