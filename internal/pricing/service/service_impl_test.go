package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	catalogdomain "github.com/providerpulse/providerpulse/internal/catalog/domain"
	catalogrepository "github.com/providerpulse/providerpulse/internal/catalog/repository"
	"github.com/providerpulse/providerpulse/internal/clock"
	pricingdomain "github.com/providerpulse/providerpulse/internal/pricing/domain"
	"github.com/providerpulse/providerpulse/internal/pricing/repository"
	providerdomain "github.com/providerpulse/providerpulse/internal/provider/domain"
	providerrepository "github.com/providerpulse/providerpulse/internal/provider/repository"
	"github.com/providerpulse/providerpulse/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB, *snowflake.Node, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&providerdomain.Provider{},
		&catalogdomain.Model{},
		&pricingdomain.ProviderModel{},
		&pricingdomain.PriceHistory{},
	)
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        clk,
		Repo:         repository.Provide(),
		HistoryRepo:  repository.ProvideHistory(),
		ProviderRepo: providerrepository.Provide(),
		CatalogRepo:  catalogrepository.Provide(),
	})
	return svc.(*Service), db, node, clk
}

func seedLink(t *testing.T, db *gorm.DB, node *snowflake.Node, input *float64) *pricingdomain.ProviderModel {
	t.Helper()

	provider := &providerdomain.Provider{
		ID:      node.Generate(),
		Name:    "Test Provider " + node.Generate().String(),
		Slug:    "test-provider-" + node.Generate().String(),
		Status:  providerdomain.StatusActive,
		AddedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(provider).Error)

	model := &catalogdomain.Model{
		ID:          node.Generate(),
		Name:        "test-model-" + node.Generate().String(),
		DisplayName: "Test Model",
		Modality:    datatypes.JSONSlice[string]{"text"},
	}
	require.NoError(t, db.Create(model).Error)

	link := &pricingdomain.ProviderModel{
		ID:                   node.Generate(),
		ProviderID:           provider.ID,
		ModelID:              model.ID,
		ProviderModelName:    model.Name,
		InputPricePerMillion: input,
		Currency:             "USD",
		PricingType:          pricingdomain.PricingTokenBased,
		IsAvailable:          true,
		CreatedAt:            time.Now().UTC(),
		UpdatedAt:            time.Now().UTC(),
	}
	require.NoError(t, db.Create(link).Error)
	return link
}

func ptr(v float64) *float64 { return &v }

func TestApplyPriceUpdate_Initial(t *testing.T) {
	svc, db, node, _ := newTestService(t)
	link := seedLink(t, db, node, nil)

	result, err := svc.ApplyPriceUpdate(context.Background(), link.ID, pricingdomain.PriceUpdateRequest{
		Input: pricingdomain.OptionalPrice{Set: true, Value: ptr(5)},
	})
	require.NoError(t, err)

	assert.Equal(t, pricingdomain.ChangeInitial, result.ChangeType)
	assert.Nil(t, result.ChangePercent)
	assert.NotNil(t, result.ProviderModel.LastCheckedAt)

	var history []pricingdomain.PriceHistory
	require.NoError(t, db.Where("provider_model_id = ?", link.ID).Find(&history).Error)
	require.Len(t, history, 1)
	assert.Equal(t, pricingdomain.ChangeInitial, history[0].ChangeType)
	assert.Equal(t, "updated via api", *history[0].Notes)
}

func TestApplyPriceUpdate_IncreasePercent(t *testing.T) {
	svc, db, node, _ := newTestService(t)
	link := seedLink(t, db, node, ptr(4))

	result, err := svc.ApplyPriceUpdate(context.Background(), link.ID, pricingdomain.PriceUpdateRequest{
		Input: pricingdomain.OptionalPrice{Set: true, Value: ptr(5)},
	})
	require.NoError(t, err)

	assert.Equal(t, pricingdomain.ChangeIncrease, result.ChangeType)
	require.NotNil(t, result.ChangePercent)
	assert.InDelta(t, 25.0, *result.ChangePercent, 1e-9)
}

func TestApplyPriceUpdate_DecreasePercentRounds(t *testing.T) {
	svc, db, node, _ := newTestService(t)
	link := seedLink(t, db, node, ptr(3))

	result, err := svc.ApplyPriceUpdate(context.Background(), link.ID, pricingdomain.PriceUpdateRequest{
		Input: pricingdomain.OptionalPrice{Set: true, Value: ptr(2)},
	})
	require.NoError(t, err)

	assert.Equal(t, pricingdomain.ChangeDecrease, result.ChangeType)
	require.NotNil(t, result.ChangePercent)
	// ((2-3)/3)*100 = -33.333..., rounded to 2dp
	assert.InDelta(t, -33.33, *result.ChangePercent, 1e-9)
}

func TestApplyPriceUpdate_NoChangeWritesNoHistory(t *testing.T) {
	svc, db, node, _ := newTestService(t)
	link := seedLink(t, db, node, ptr(5))

	result, err := svc.ApplyPriceUpdate(context.Background(), link.ID, pricingdomain.PriceUpdateRequest{
		Input: pricingdomain.OptionalPrice{Set: true, Value: ptr(5)},
	})
	require.NoError(t, err)

	assert.Equal(t, pricingdomain.ChangeNone, result.ChangeType)
	assert.Nil(t, result.ChangePercent)
	// The row still refreshes its check timestamp.
	assert.NotNil(t, result.ProviderModel.LastCheckedAt)

	var count int64
	require.NoError(t, db.Model(&pricingdomain.PriceHistory{}).
		Where("provider_model_id = ?", link.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestApplyPriceUpdate_Idempotence(t *testing.T) {
	svc, db, node, _ := newTestService(t)
	link := seedLink(t, db, node, nil)

	req := pricingdomain.PriceUpdateRequest{
		Input: pricingdomain.OptionalPrice{Set: true, Value: ptr(7)},
	}
	first, err := svc.ApplyPriceUpdate(context.Background(), link.ID, req)
	require.NoError(t, err)
	assert.Equal(t, pricingdomain.ChangeInitial, first.ChangeType)

	second, err := svc.ApplyPriceUpdate(context.Background(), link.ID, req)
	require.NoError(t, err)
	assert.Equal(t, pricingdomain.ChangeNone, second.ChangeType)

	var count int64
	require.NoError(t, db.Model(&pricingdomain.PriceHistory{}).
		Where("provider_model_id = ?", link.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestApplyPriceUpdate_OutputOnlyChangeIsNoChange(t *testing.T) {
	svc, db, node, _ := newTestService(t)
	link := seedLink(t, db, node, ptr(5))

	result, err := svc.ApplyPriceUpdate(context.Background(), link.ID, pricingdomain.PriceUpdateRequest{
		Output: pricingdomain.OptionalPrice{Set: true, Value: ptr(99)},
	})
	require.NoError(t, err)

	assert.Equal(t, pricingdomain.ChangeNone, result.ChangeType)
	require.NotNil(t, result.ProviderModel.OutputPricePerMillion)
	assert.Equal(t, 99.0, *result.ProviderModel.OutputPricePerMillion)

	var count int64
	require.NoError(t, db.Model(&pricingdomain.PriceHistory{}).
		Where("provider_model_id = ?", link.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestApplyPriceUpdate_ClearPriceIsDecrease(t *testing.T) {
	svc, db, node, _ := newTestService(t)
	link := seedLink(t, db, node, ptr(5))

	result, err := svc.ApplyPriceUpdate(context.Background(), link.ID, pricingdomain.PriceUpdateRequest{
		Input: pricingdomain.OptionalPrice{Set: true, Value: nil},
	})
	require.NoError(t, err)

	// Null is compared as zero once a price has existed.
	assert.Equal(t, pricingdomain.ChangeDecrease, result.ChangeType)
	assert.Nil(t, result.ChangePercent)
	assert.Nil(t, result.ProviderModel.InputPricePerMillion)
}

func TestApplyPriceUpdate_NotFound(t *testing.T) {
	svc, _, node, _ := newTestService(t)

	_, err := svc.ApplyPriceUpdate(context.Background(), node.Generate(), pricingdomain.PriceUpdateRequest{
		Input: pricingdomain.OptionalPrice{Set: true, Value: ptr(1)},
	})
	assert.ErrorIs(t, err, pricingdomain.ErrProviderModelNotFound)
}

func TestClassifyChange(t *testing.T) {
	cases := []struct {
		name    string
		prev    *float64
		next    *float64
		want    pricingdomain.ChangeType
		percent *float64
	}{
		{"both nil", nil, nil, pricingdomain.ChangeNone, nil},
		{"initial", nil, ptr(5), pricingdomain.ChangeInitial, nil},
		{"increase", ptr(4), ptr(5), pricingdomain.ChangeIncrease, ptr(25)},
		{"decrease", ptr(5), ptr(4), pricingdomain.ChangeDecrease, ptr(-20)},
		{"equal", ptr(5), ptr(5), pricingdomain.ChangeNone, nil},
		{"cleared", ptr(5), nil, pricingdomain.ChangeDecrease, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			change, percent := classifyChange(tc.prev, tc.next)
			assert.Equal(t, tc.want, change)
			if tc.percent == nil {
				assert.Nil(t, percent)
			} else {
				require.NotNil(t, percent)
				assert.InDelta(t, *tc.percent, *percent, 1e-9)
			}
		})
	}
}

func TestCreateLink_InitialHistory(t *testing.T) {
	svc, db, node, _ := newTestService(t)

	provider := &providerdomain.Provider{
		ID:      node.Generate(),
		Name:    "Linkable",
		Slug:    "linkable-" + node.Generate().String(),
		Status:  providerdomain.StatusActive,
		AddedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(provider).Error)
	model := &catalogdomain.Model{
		ID:          node.Generate(),
		Name:        "linkable-model-" + node.Generate().String(),
		DisplayName: "Linkable Model",
		Modality:    datatypes.JSONSlice[string]{"text"},
	}
	require.NoError(t, db.Create(model).Error)

	link, err := svc.CreateLink(context.Background(), pricingdomain.CreateLinkRequest{
		ProviderID:           provider.ID.String(),
		ModelID:              model.ID.String(),
		InputPricePerMillion: ptr(3),
	})
	require.NoError(t, err)
	assert.Equal(t, pricingdomain.PricingTokenBased, link.PricingType)
	assert.Equal(t, "USD", link.Currency)

	var history []pricingdomain.PriceHistory
	require.NoError(t, db.Where("provider_model_id = ?", link.ID).Find(&history).Error)
	require.Len(t, history, 1)
	assert.Equal(t, pricingdomain.ChangeInitial, history[0].ChangeType)
}

func TestApplyPriceUpdate_UpdatedAtFollowsClock(t *testing.T) {
	svc, db, node, clk := newTestService(t)
	link := seedLink(t, db, node, ptr(4))

	clk.Advance(time.Hour)
	result, err := svc.ApplyPriceUpdate(context.Background(), link.ID, pricingdomain.PriceUpdateRequest{
		Input: pricingdomain.OptionalPrice{Set: true, Value: ptr(5)},
	})
	require.NoError(t, err)
	assert.Equal(t, clk.Now(), result.ProviderModel.UpdatedAt)

	var stored pricingdomain.ProviderModel
	require.NoError(t, db.First(&stored, "id = ?", link.ID).Error)
	assert.True(t, stored.UpdatedAt.Equal(clk.Now()))
}

func TestListHistory_NewestFirst(t *testing.T) {
	svc, db, node, clk := newTestService(t)

	provider := &providerdomain.Provider{
		ID:      node.Generate(),
		Name:    "Historied",
		Slug:    "historied-" + node.Generate().String(),
		Status:  providerdomain.StatusActive,
		AddedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(provider).Error)
	model := &catalogdomain.Model{
		ID:          node.Generate(),
		Name:        "historied-model-" + node.Generate().String(),
		DisplayName: "Historied Model",
		Modality:    datatypes.JSONSlice[string]{"text"},
	}
	require.NoError(t, db.Create(model).Error)

	link, err := svc.CreateLink(context.Background(), pricingdomain.CreateLinkRequest{
		ProviderID:           provider.ID.String(),
		ModelID:              model.ID.String(),
		InputPricePerMillion: ptr(4),
	})
	require.NoError(t, err)

	clk.Advance(time.Hour)
	_, err = svc.ApplyPriceUpdate(context.Background(), link.ID, pricingdomain.PriceUpdateRequest{
		Input: pricingdomain.OptionalPrice{Set: true, Value: ptr(6)},
	})
	require.NoError(t, err)

	clk.Advance(time.Hour)
	_, err = svc.ApplyPriceUpdate(context.Background(), link.ID, pricingdomain.PriceUpdateRequest{
		Input: pricingdomain.OptionalPrice{Set: true, Value: ptr(3)},
	})
	require.NoError(t, err)

	history, info, err := svc.ListHistory(context.Background(), pricingdomain.HistoryFilter{
		ProviderModelID: link.ID,
	}, pagination.Page{Page: 1, PageSize: 20})
	require.NoError(t, err)

	require.Len(t, history, 3)
	assert.EqualValues(t, 3, info.Total)
	assert.Equal(t, pricingdomain.ChangeDecrease, history[0].ChangeType)
	assert.Equal(t, pricingdomain.ChangeIncrease, history[1].ChangeType)
	assert.Equal(t, pricingdomain.ChangeInitial, history[2].ChangeType)
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].RecordedAt.After(history[i-1].RecordedAt))
	}
}

func TestCreateLink_NegativePriceRejected(t *testing.T) {
	svc, db, node, _ := newTestService(t)

	provider := &providerdomain.Provider{
		ID:      node.Generate(),
		Name:    "Negative",
		Slug:    "negative-" + node.Generate().String(),
		Status:  providerdomain.StatusActive,
		AddedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(provider).Error)
	model := &catalogdomain.Model{
		ID:          node.Generate(),
		Name:        "negative-model-" + node.Generate().String(),
		DisplayName: "Negative Model",
		Modality:    datatypes.JSONSlice[string]{"text"},
	}
	require.NoError(t, db.Create(model).Error)

	_, err := svc.CreateLink(context.Background(), pricingdomain.CreateLinkRequest{
		ProviderID:           provider.ID.String(),
		ModelID:              model.ID.String(),
		InputPricePerMillion: ptr(-1),
	})
	assert.ErrorIs(t, err, pricingdomain.ErrNegativePrice)
}
