package model

import "time"

type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectOnHold    ProjectStatus = "on_hold"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectActive, ProjectCompleted, ProjectOnHold:
		return true
	}
	return false
}

type Project struct {
	ID          int           `json:"id"`
	OwnerID     int           `json:"owner_id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Budget      Cents         `json:"budget"`
	Status      ProjectStatus `json:"status"`
	StartDate   time.Time     `json:"start_date"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
