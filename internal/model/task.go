package model

import "time"

type Task struct {
	ID        int64     `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

type Share struct {
	TaskID           int64     `json:"task_id"`
	SharedWithUserID string    `json:"shared_with_user_id"`
	SharedAt         time.Time `json:"shared_at"`
}

// TaskView - задача глазами конкретного пользователя.
// SharedWith заполняется только для собственных задач.
type TaskView struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	Completed  bool      `json:"completed"`
	CreatedAt  time.Time `json:"created_at"`
	OwnerID    string    `json:"owner_id"`
	SharedWith []string  `json:"shared_with,omitempty"`
}

type TaskList struct {
	Own    []TaskView `json:"own_tasks"`
	Shared []TaskView `json:"shared_tasks"`
}

func (l TaskList) Empty() bool {
	return len(l.Own) == 0 && len(l.Shared) == 0
}
