package model

import "encoding/json"

// TaskStatus is derived from cache presence and never persisted
type TaskStatus int

const (
	TaskStatusAbsent TaskStatus = iota
	TaskStatusPending
	TaskStatusComplete
)

// String returns the lowercase status name
func (s TaskStatus) String() string {
	switch s {
	case TaskStatusPending:
		return "pending"
	case TaskStatusComplete:
		return "complete"
	default:
		return "absent"
	}
}

// TaskMessage is the queue payload produced by the dispatcher
type TaskMessage struct {
	TaskID string          `json:"task_id"`
	Input  json.RawMessage `json:"input"`
}
