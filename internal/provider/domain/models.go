package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusActive     Status = "ACTIVE"
	StatusInactive   Status = "INACTIVE"
	StatusTesting    Status = "TESTING"
	StatusDeprecated Status = "DEPRECATED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusTesting, StatusDeprecated:
		return true
	}
	return false
}

// Provider is a reseller of third-party AI model access. Slug is the
// immutable external key.
type Provider struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"type:text;not null"`
	Slug        string       `json:"slug" gorm:"type:text;not null;uniqueIndex"`
	Website     string       `json:"website" gorm:"type:text;not null"`
	Status      Status       `json:"status" gorm:"type:text;not null;default:ACTIVE;index"`
	Description *string      `json:"description,omitempty" gorm:"type:text"`
	Country     *string      `json:"country,omitempty" gorm:"type:text"`
	AddedAt     time.Time    `json:"added_at" gorm:"not null"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null;autoUpdateTime:false"`
}

func (Provider) TableName() string { return "providers" }
