package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ProbeType names what a probe exercised on the provider.
type ProbeType string

const (
	ProbeHealthCheck  ProbeType = "HEALTH_CHECK"
	ProbeModelList    ProbeType = "MODEL_LIST"
	ProbeAPICall      ProbeType = "API_CALL"
	ProbePricingCheck ProbeType = "PRICING_CHECK"
)

func (t ProbeType) Valid() bool {
	switch t {
	case ProbeHealthCheck, ProbeModelList, ProbeAPICall, ProbePricingCheck:
		return true
	}
	return false
}

// ProbeMethod records whether the probe was triggered by an operator or
// by the sweep scheduler.
type ProbeMethod string

const (
	MethodManual    ProbeMethod = "MANUAL"
	MethodScheduled ProbeMethod = "SCHEDULED"
)

func (m ProbeMethod) Valid() bool {
	switch m {
	case MethodManual, MethodScheduled:
		return true
	}
	return false
}

// AvailabilityProbe is one observation of a provider's health. Rows are
// append-only; aggregation happens at read time.
type AvailabilityProbe struct {
	ID              snowflake.ID  `json:"id" gorm:"primaryKey"`
	ProviderID      snowflake.ID  `json:"provider_id" gorm:"not null;index"`
	ProviderModelID *snowflake.ID `json:"provider_model_id,omitempty" gorm:"index"`
	ProbeType       ProbeType     `json:"probe_type" gorm:"type:text;not null"`
	ProbeMethod     ProbeMethod   `json:"probe_method" gorm:"type:text;not null"`
	IsSuccess       bool          `json:"is_success" gorm:"not null"`
	ResponseTimeMs  *float64      `json:"response_time_ms,omitempty"`
	StatusCode      *int          `json:"status_code,omitempty"`
	ErrorMessage    *string       `json:"error_message,omitempty" gorm:"type:text"`
	CheckedAt       time.Time     `json:"checked_at" gorm:"not null;index"`
}

func (AvailabilityProbe) TableName() string {
	return "availability_probes"
}
