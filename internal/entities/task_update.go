package entities

import "time"

// TaskUpdate is an append-only progress note left by the task's assignee.
type TaskUpdate struct {
	ID         string    `json:"id" bson:"_id"`
	TaskID     string    `json:"task" bson:"task"`
	UserID     string    `json:"user" bson:"user"`
	Content    string    `json:"content" bson:"content"`
	Date       time.Time `json:"date" bson:"date"`
	Attachment string    `json:"attachment,omitempty" bson:"attachment,omitempty"`
}

// DocID implements Document.
func (u TaskUpdate) DocID() string { return u.ID }

// Collection implements Document.
func (TaskUpdate) Collection() Collection { return CollectionTaskUpdates }
