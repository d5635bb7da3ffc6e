package migration

import (
	catalogdomain "github.com/providerpulse/providerpulse/internal/catalog/domain"
	pricingdomain "github.com/providerpulse/providerpulse/internal/pricing/domain"
	probedomain "github.com/providerpulse/providerpulse/internal/probe/domain"
	providerdomain "github.com/providerpulse/providerpulse/internal/provider/domain"
	reviewdomain "github.com/providerpulse/providerpulse/internal/review/domain"
	settingsdomain "github.com/providerpulse/providerpulse/internal/settings/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Migrate creates or updates every table the engine owns. Runs on
// startup so local and self-hosted deployments work out of the box.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&providerdomain.Provider{},
		&catalogdomain.Model{},
		&pricingdomain.ProviderModel{},
		&pricingdomain.PriceHistory{},
		&probedomain.AvailabilityProbe{},
		&reviewdomain.Review{},
		&settingsdomain.Setting{},
	)
}

var Module = fx.Module("migrations",
	fx.Invoke(Migrate),
)
