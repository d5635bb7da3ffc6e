package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Review is a user rating of a provider. Only the rating average feeds the
// composite score.
type Review struct {
	ID           snowflake.ID                `json:"id" gorm:"primaryKey"`
	ProviderID   snowflake.ID                `json:"provider_id" gorm:"not null;index"`
	Rating       int                         `json:"rating" gorm:"not null"`
	Title        *string                     `json:"title,omitempty" gorm:"type:text"`
	Content      string                      `json:"content" gorm:"type:text;not null"`
	Pros         datatypes.JSONSlice[string] `json:"pros" gorm:"type:json"`
	Cons         datatypes.JSONSlice[string] `json:"cons" gorm:"type:json"`
	ReviewerName *string                     `json:"reviewer_name,omitempty" gorm:"type:text"`
	ReviewerRole *string                     `json:"reviewer_role,omitempty" gorm:"type:text"`
	CreatedAt    time.Time                   `json:"created_at" gorm:"not null;index"`
	UpdatedAt    time.Time                   `json:"updated_at" gorm:"not null;autoUpdateTime:false"`
}

func (Review) TableName() string { return "reviews" }
