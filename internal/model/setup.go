package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Setup is a user defined strategy tag.
type Setup struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	Color       string    `gorm:"type:varchar(16);not null" json:"color"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Setup) TableName() string {
	return "setups"
}

func (s *Setup) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
