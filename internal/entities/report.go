package entities

import "time"

// ReportType enumerates report kinds.
type ReportType string

const (
	ReportProgress          ReportType = "Progress"
	ReportTaskCompletion    ReportType = "TaskCompletion"
	ReportTimeline          ReportType = "Timeline"
	ReportBudgetUtilization ReportType = "BudgetUtilization"
	ReportTaskUpdate        ReportType = "TaskUpdate"
)

// Valid reports whether t is a known report type.
func (t ReportType) Valid() bool {
	switch t {
	case ReportProgress, ReportTaskCompletion, ReportTimeline, ReportBudgetUtilization, ReportTaskUpdate:
		return true
	}
	return false
}

// States for reports whose percentage has a zero denominator.
const (
	ReportStateOK       = "ok"
	ReportStateNoTasks  = "no_tasks"
	ReportStateNoBudget = "no_budget"
)

// Report is a persisted snapshot derived from entity state at GeneratedAt.
type Report struct {
	ID          string     `json:"id" bson:"_id"`
	ProjectID   string     `json:"project" bson:"project"`
	Type        ReportType `json:"type" bson:"type"`
	Data        ReportData `json:"data" bson:"data"`
	GeneratedBy string     `json:"generated_by" bson:"generated_by"`
	GeneratedAt time.Time  `json:"generated_at" bson:"generated_at"`
}

// DocID implements Document.
func (r Report) DocID() string { return r.ID }

// Collection implements Document.
func (Report) Collection() Collection { return CollectionReports }

// ReportData holds the payload; exactly the member matching the report type is set.
type ReportData struct {
	Progress          *ProgressData          `json:"progress,omitempty" bson:"progress,omitempty"`
	TaskCompletion    []TaskCompletionEntry  `json:"task_completion,omitempty" bson:"task_completion,omitempty"`
	Timeline          []TimelineEntry        `json:"timeline,omitempty" bson:"timeline,omitempty"`
	BudgetUtilization *BudgetUtilizationData `json:"budget_utilization,omitempty" bson:"budget_utilization,omitempty"`
	TaskUpdate        *TaskUpdateData        `json:"task_update,omitempty" bson:"task_update,omitempty"`
	Notes             string                 `json:"notes,omitempty" bson:"notes,omitempty"`
}

// ProgressData is the Progress payload. ProgressPercentage is nil when the project has no tasks.
type ProgressData struct {
	ProjectName        string   `json:"project_name" bson:"project_name"`
	TotalTasks         int      `json:"total_tasks" bson:"total_tasks"`
	CompletedTasks     int      `json:"completed_tasks" bson:"completed_tasks"`
	ProgressPercentage *float64 `json:"progress_percentage,omitempty" bson:"progress_percentage,omitempty"`
	State              string   `json:"state" bson:"state"`
}

// TaskCompletionEntry describes one finished task.
type TaskCompletionEntry struct {
	TaskName      string    `json:"task_name" bson:"task_name"`
	CompletedBy   string    `json:"completed_by" bson:"completed_by"`
	CompletedDate time.Time `json:"completed_date" bson:"completed_date"`
}

// TimelineEntry describes one task on the project timeline.
type TimelineEntry struct {
	TaskName  string     `json:"task_name" bson:"task_name"`
	StartDate time.Time  `json:"start_date" bson:"start_date"`
	EndDate   time.Time  `json:"end_date" bson:"end_date"`
	Status    TaskStatus `json:"status" bson:"status"`
}

// BudgetUtilizationData is the BudgetUtilization payload. UtilizationPercentage is nil when the budget is zero.
type BudgetUtilizationData struct {
	ProjectName           string   `json:"project_name" bson:"project_name"`
	TotalBudget           float64  `json:"total_budget" bson:"total_budget"`
	ExpensesToDate        float64  `json:"expenses_to_date" bson:"expenses_to_date"`
	UtilizationPercentage *float64 `json:"utilization_percentage,omitempty" bson:"utilization_percentage,omitempty"`
	State                 string   `json:"state" bson:"state"`
}

// TaskUpdateData is the TaskUpdate payload.
type TaskUpdateData struct {
	TaskName   string            `json:"task_name" bson:"task_name"`
	AssignedTo string            `json:"assigned_to" bson:"assigned_to"`
	Status     TaskStatus        `json:"status" bson:"status"`
	DueDate    time.Time         `json:"due_date" bson:"due_date"`
	Updates    []TaskUpdateEntry `json:"updates" bson:"updates"`
}

// TaskUpdateEntry is one dated note in a TaskUpdate report.
type TaskUpdateEntry struct {
	Date    time.Time `json:"date" bson:"date"`
	Content string    `json:"content" bson:"content"`
}
