package model

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID                 uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	UserID             uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tasks_user_number"`
	Number             int       `gorm:"not null;uniqueIndex:idx_tasks_user_number"`
	Title              string    `gorm:"not null"`
	DueDate            time.Time `gorm:"type:date;not null"`
	EstimatedHours     int       `gorm:"not null"`
	Importance         int       `gorm:"not null"`
	PriorityScore      float64   `gorm:"not null;default:0"`
	SmartPriorityScore float64   `gorm:"not null;default:0"`
	Completed          bool      `gorm:"not null;default:false"`
	CircularTask       bool      `gorm:"not null;default:false"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// DependencyIDs is filled from task_dependencies by the repository.
	DependencyIDs []uuid.UUID `gorm:"-"`
}

// TaskDependency is one edge: TaskID depends on DependsOnID.
type TaskDependency struct {
	TaskID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	DependsOnID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

func (TaskDependency) TableName() string {
	return "task_dependencies"
}
