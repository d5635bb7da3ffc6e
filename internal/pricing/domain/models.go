package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type PricingType string

const (
	PricingTokenBased   PricingType = "TOKEN_BASED"
	PricingRequestBased PricingType = "REQUEST_BASED"
	PricingSubscription PricingType = "SUBSCRIPTION"
	PricingFreeTier     PricingType = "FREE_TIER"
)

func (t PricingType) Valid() bool {
	switch t {
	case PricingTokenBased, PricingRequestBased, PricingSubscription, PricingFreeTier:
		return true
	}
	return false
}

type ChangeType string

const (
	ChangeInitial  ChangeType = "INITIAL"
	ChangeIncrease ChangeType = "INCREASE"
	ChangeDecrease ChangeType = "DECREASE"
	ChangeNone     ChangeType = "NO_CHANGE"
)

// ProviderModel is the priced offering of one catalog model by one provider.
// Price fields are nullable: nil means no price set, which is distinct from
// a zero price.
type ProviderModel struct {
	ID                    snowflake.ID `json:"id" gorm:"primaryKey"`
	ProviderID            snowflake.ID `json:"provider_id" gorm:"not null;index;uniqueIndex:ux_provider_models_provider_model"`
	ModelID               snowflake.ID `json:"model_id" gorm:"not null;index;uniqueIndex:ux_provider_models_provider_model"`
	ProviderModelName     string       `json:"provider_model_name" gorm:"type:text;not null"`
	InputPricePerMillion  *float64     `json:"input_price_per_million,omitempty"`
	OutputPricePerMillion *float64     `json:"output_price_per_million,omitempty"`
	Currency              string       `json:"currency" gorm:"type:text;not null;default:USD"`
	PricingType           PricingType  `json:"pricing_type" gorm:"type:text;not null;default:TOKEN_BASED"`
	IsAvailable           bool         `json:"is_available" gorm:"not null;default:true"`
	Notes                 *string      `json:"notes,omitempty" gorm:"type:text"`
	LastCheckedAt         *time.Time   `json:"last_checked_at,omitempty"`
	CreatedAt             time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt             time.Time    `json:"updated_at" gorm:"not null;index;autoUpdateTime:false"`
}

func (ProviderModel) TableName() string { return "provider_models" }

// PriceHistory is the append-only ledger of price mutations. Rows are never
// updated or deleted in normal operation.
type PriceHistory struct {
	ID                    snowflake.ID `json:"id" gorm:"primaryKey"`
	ProviderID            snowflake.ID `json:"provider_id" gorm:"not null;index"`
	ProviderModelID       snowflake.ID `json:"provider_model_id" gorm:"not null;index"`
	InputPricePerMillion  *float64     `json:"input_price_per_million,omitempty"`
	OutputPricePerMillion *float64     `json:"output_price_per_million,omitempty"`
	Currency              string       `json:"currency" gorm:"type:text;not null"`
	ChangeType            ChangeType   `json:"change_type" gorm:"type:text;not null"`
	ChangePercent         *float64     `json:"change_percent,omitempty"`
	Notes                 *string      `json:"notes,omitempty" gorm:"type:text"`
	RecordedAt            time.Time    `json:"recorded_at" gorm:"not null;index"`
}

func (PriceHistory) TableName() string { return "price_histories" }
