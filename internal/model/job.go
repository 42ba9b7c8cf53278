package model

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type JobType string

const (
	JobTypeWeeklyDigest JobType = "weekly_digest"
	JobTypeDataCleanUp  JobType = "data_clean_up"
)

type Job struct {
	ID          uint                   `gorm:"primaryKey" json:"id"`
	Name        string                 `gorm:"type:varchar(255);not null" json:"name"`
	Description string                 `gorm:"type:text" json:"description"`
	Type        JobType                `gorm:"type:varchar(50);not null" json:"type"`
	Payload     datatypes.JSON         `gorm:"type:jsonb;not null" json:"payload"`
	Timeout     int                    `gorm:"default:60" json:"timeout"`
	CreatedAt   time.Time              `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time              `gorm:"autoUpdateTime" json:"updated_at"`
	Schedules   []TaskSchedule         `gorm:"foreignKey:JobID" json:"schedules,omitempty"`
	Histories   []TaskExecutionHistory `gorm:"foreignKey:JobID" json:"histories,omitempty"`
}

func (Job) TableName() string {
	return "jobs"
}

// DecodePayload unmarshals the job payload into dst. An empty payload leaves dst untouched.
func (j *Job) DecodePayload(dst interface{}) error {
	if len(j.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(j.Payload, dst); err != nil {
		return fmt.Errorf("failed to unmarshal payload of job %d: %w", j.ID, err)
	}
	return nil
}

// TimeoutDuration falls back to fallback when the job has no positive timeout.
func (j *Job) TimeoutDuration(fallback time.Duration) time.Duration {
	if j.Timeout <= 0 {
		return fallback
	}
	return time.Duration(j.Timeout) * time.Second
}

type GetJobParam struct {
	IDs             []uint                        `json:"ids"`
	IsActive        *bool                         `json:"is_active"`
	Limit           *int                          `json:"limit"`
	WithTaskHistory *GetTaskExecutionHistoryParam `json:"with_task_history"`
}

type GetTaskExecutionHistoryParam struct {
	Limit *int `json:"limit"`
}
