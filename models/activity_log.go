package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Metadata holds free-form key/value details of a logged action in JSONB.
type Metadata map[string]any

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, m)
}

// ActivityLog records who did what to which entity. Append-only.
type ActivityLog struct {
	ID          string   `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      *string  `json:"user_id" gorm:"type:uuid;index"`
	EntityType  string   `json:"entity_type" gorm:"not null;index"`
	EntityID    string   `json:"entity_id" gorm:"not null"`
	Action      string   `json:"action" gorm:"not null"`
	Description string   `json:"description"`
	Meta        Metadata `json:"metadata" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
}

func (l *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
