package api

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/neexbeast/wwtravelclub/internal/travel"
)

// DestinationRepo defines the storage operations needed by handlers.
type DestinationRepo interface {
	CreateDestinationWithPackages(ctx context.Context, dest travel.Destination, packages []travel.Package) (*travel.Destination, error)
	FindDestinationByName(ctx context.Context, name string) (*travel.Destination, error)
	GetDestination(ctx context.Context, id int) (*travel.Destination, error)
	UpdateDestinationDescription(ctx context.Context, id int, description *string) (*travel.Destination, error)
	AdjustPackagePrices(ctx context.Context, id int, multiplier decimal.Decimal) (*travel.Destination, error)
	DeleteDestination(ctx context.Context, id int) (string, error)
}

// DestinationCache defines the cache operations needed by handlers.
type DestinationCache interface {
	Get(ctx context.Context, name string) (*travel.Destination, error)
	Set(ctx context.Context, d *travel.Destination) error
	Delete(ctx context.Context, name string) error
}

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
