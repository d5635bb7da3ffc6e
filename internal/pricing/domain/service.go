package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/providerpulse/providerpulse/pkg/db/pagination"
)

var (
	ErrProviderModelNotFound = errors.New("provider model not found")
	ErrLinkExists            = errors.New("provider already offers this model")
	ErrInvalidPricingType    = errors.New("invalid pricing type")
	ErrNegativePrice         = errors.New("price must not be negative")
)

// OptionalPrice distinguishes "leave unchanged" (Set false) from "unset the
// price" (Set true, Value nil) and from a concrete value.
type OptionalPrice struct {
	Set   bool
	Value *float64
}

type PriceUpdateRequest struct {
	Input       OptionalPrice
	Output      OptionalPrice
	IsAvailable *bool
	Notes       *string
}

type PriceUpdateResult struct {
	ProviderModel ProviderModel
	ChangeType    ChangeType
	ChangePercent *float64
}

type HistoryFilter struct {
	ProviderID      snowflake.ID
	ModelID         snowflake.ID
	ProviderModelID snowflake.ID
	WindowDays      int
}

type TrendSummary struct {
	WindowDays    int   `json:"window_days"`
	TotalChanges  int64 `json:"total_changes"`
	IncreaseCount int   `json:"increase_count"`
	DecreaseCount int   `json:"decrease_count"`
	// NeutralCount stays in the payload for response symmetry. NO_CHANGE
	// updates write no history rows, so it is always zero.
	NeutralCount     int             `json:"neutral_count"`
	AvgChangePercent float64         `json:"avg_change_percent"`
	LatestSnapshots  []TrendSnapshot `json:"latest_snapshots"`
}

type TrendSnapshot struct {
	ProviderModelID snowflake.ID `json:"provider_model_id"`
	InputPrice      *float64     `json:"input_price_per_million"`
	Currency        string       `json:"currency"`
	RecordedAt      time.Time    `json:"recorded_at"`
}

type CreateLinkRequest struct {
	ProviderID            string      `json:"provider_id"`
	ModelID               string      `json:"model_id"`
	ProviderModelName     string      `json:"provider_model_name"`
	InputPricePerMillion  *float64    `json:"input_price_per_million"`
	OutputPricePerMillion *float64    `json:"output_price_per_million"`
	Currency              string      `json:"currency"`
	PricingType           PricingType `json:"pricing_type"`
	Notes                 *string     `json:"notes"`
}

type Service interface {
	// CreateLink registers a provider's offering of a catalog model. A
	// non-nil initial input price produces the INITIAL history row.
	CreateLink(ctx context.Context, req CreateLinkRequest) (*ProviderModel, error)
	Get(ctx context.Context, id snowflake.ID) (*ProviderModel, error)
	List(ctx context.Context, providerID, modelID snowflake.ID, page pagination.Page) ([]ProviderModel, pagination.PageInfo, error)

	// ApplyPriceUpdate classifies the input-price change, persists the
	// updated provider model and, unless the change is NO_CHANGE, appends
	// exactly one history row in the same transaction.
	ApplyPriceUpdate(ctx context.Context, id snowflake.ID, req PriceUpdateRequest) (*PriceUpdateResult, error)

	ListHistory(ctx context.Context, filter HistoryFilter, page pagination.Page) ([]PriceHistory, pagination.PageInfo, error)
	TrendSummary(ctx context.Context, windowDays int) (*TrendSummary, error)

	// LatestInputPrices returns, per provider, the input price of its most
	// recently updated provider model. Providers with no priced model are
	// absent. Feeds the scoring engine's price signal.
	LatestInputPrices(ctx context.Context, providerIDs []snowflake.ID) (map[snowflake.ID]float64, error)
}
