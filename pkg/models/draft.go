package models

import "time"

// Draft is a block list that could not be persisted remotely
type Draft struct {
	TopicID  string    `json:"topic_id"`
	Version  uint64    `json:"version"`
	Blocks   []Block   `json:"blocks"`
	LastErr  string    `json:"last_error"`
	FailedAt time.Time `json:"failed_at"`
}
