// Package dto holds the JSON request and response bodies of the HTTP API.
package dto

import (
	"time"

	"project-tracker/internal/entities"
)

// ErrorCode is a stable machine readable error category.
type ErrorCode string

const (
	CodeUnauthenticated  ErrorCode = "UNAUTHENTICATED"
	CodeForbidden        ErrorCode = "FORBIDDEN"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeValidation       ErrorCode = "VALIDATION"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeActiveTaskExists ErrorCode = "ACTIVE_TASK_EXISTS"
	CodeAlreadyInTeam    ErrorCode = "ALREADY_IN_TEAM"
	CodeEmailTaken       ErrorCode = "EMAIL_TAKEN"
	CodeInternal         ErrorCode = "INTERNAL"
)

// ErrorBody is the error payload.
type ErrorBody struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ErrorResponse wraps ErrorBody.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// NewError builds an ErrorResponse.
func NewError(code ErrorCode, msg string) ErrorResponse {
	return ErrorResponse{Error: ErrorBody{Code: code, Message: msg}}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	EmailDomain string        `json:"email_domain"`
	Role        entities.Role `json:"role"`
	Team        string        `json:"team,omitempty"`
	Manager     string        `json:"manager,omitempty"`
	Tasks       []string      `json:"tasks"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type SessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type ProjectRequest struct {
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	Status         string     `json:"status"`
	PriorityLevel  string     `json:"priority_level"`
	Budget         float64    `json:"budget"`
	Expenses       float64    `json:"expenses"`
	RiskAssessment string     `json:"risk_assessment"`
	Attachment     string     `json:"attachment"`
	TeamMembers    []string   `json:"team_members"`
}

type ProjectPatchRequest struct {
	Name           *string    `json:"name"`
	Description    *string    `json:"description"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	Status         *string    `json:"status"`
	PriorityLevel  *string    `json:"priority_level"`
	Budget         *float64   `json:"budget"`
	Expenses       *float64   `json:"expenses"`
	RiskAssessment *string    `json:"risk_assessment"`
	Attachment     *string    `json:"attachment"`
	TeamMembers    []string   `json:"team_members"`
}

type MemberRequest struct {
	UserID string `json:"user_id"`
}

type TaskRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	DueDate     time.Time `json:"due_date"`
	Project     string    `json:"project"`
	AssignedTo  string    `json:"assigned_to"`
}

type TaskPatchRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	Project     *string    `json:"project"`
	AssignedTo  *string    `json:"assigned_to"`
}

type AssignRequest struct {
	TaskID string `json:"task_id"`
	UserID string `json:"user_id"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type TeamRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Members     []string `json:"members"`
}

type TeamPatchRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type ReportRequest struct {
	Project string              `json:"project"`
	Type    string              `json:"type"`
	Data    entities.ReportData `json:"data"`
}

type ReportDataRequest struct {
	Data entities.ReportData `json:"data"`
}

type TaskUpdateRequest struct {
	Task       string `json:"task"`
	Content    string `json:"content"`
	Attachment string `json:"attachment"`
}
