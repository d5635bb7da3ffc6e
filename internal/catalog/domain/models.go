package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Model is a catalog entry for an AI model, independent of any provider.
// Many provider models may reference it.
type Model struct {
	ID            snowflake.ID               `json:"id" gorm:"primaryKey"`
	Name          string                     `json:"name" gorm:"type:text;not null;uniqueIndex"`
	DisplayName   string                     `json:"display_name" gorm:"type:text;not null"`
	Family        string                     `json:"family" gorm:"type:text;not null;index"`
	Vendor        string                     `json:"vendor" gorm:"type:text;not null"`
	ContextWindow *int                       `json:"context_window,omitempty"`
	MaxOutput     *int                       `json:"max_output,omitempty"`
	Modality      datatypes.JSONSlice[string] `json:"modality" gorm:"type:json"`
	Description   *string                    `json:"description,omitempty" gorm:"type:text"`
	Deprecated    bool                       `json:"deprecated" gorm:"not null;default:false"`
	CreatedAt     time.Time                  `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time                  `json:"updated_at" gorm:"not null;autoUpdateTime:false"`
}

func (Model) TableName() string { return "models" }
