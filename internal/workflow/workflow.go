// Package workflow holds the two scripted runs of the example program: one
// that populates the database and one that edits what it populated.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/neexbeast/wwtravelclub/internal/travel"
)

const (
	// DestinationName is the destination both workflows operate on.
	DestinationName = "Florence"

	// NewDescription is written by Modify.
	NewDescription = "Florence is a famous historical Italian town"
)

// PriceMultiplier is applied to every package price by Modify.
var PriceMultiplier = decimal.RequireFromString("1.1")

// Repository is the subset of storage.Repository the workflows need.
type Repository interface {
	CreateDestinationWithPackages(ctx context.Context, dest travel.Destination, packages []travel.Package) (*travel.Destination, error)
	FindDestinationByName(ctx context.Context, name string) (*travel.Destination, error)
	SaveDestination(ctx context.Context, d *travel.Destination) error
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// Populate creates Florence with its summer and winter packages.
func Populate(ctx context.Context, repo Repository, log *slog.Logger) (*travel.Destination, error) {
	dest := travel.Destination{Name: DestinationName, Country: "Italy"}
	packages := []travel.Package{
		{
			Name:              "Summer in Florence",
			StartValidityDate: day(2019, time.June, 1),
			EndValidityDate:   day(2019, time.October, 1),
			DurationInDays:    7,
			Price:             decimal.NewFromInt(1000),
		},
		{
			Name:              "Winter in Florence",
			StartValidityDate: day(2019, time.December, 1),
			EndValidityDate:   day(2020, time.February, 1),
			DurationInDays:    7,
			Price:             decimal.NewFromInt(500),
		},
	}

	created, err := repo.CreateDestinationWithPackages(ctx, dest, packages)
	if err != nil {
		return nil, fmt.Errorf("populating %s: %w", DestinationName, err)
	}

	log.Info("database populated", "destination_id", created.ID, "packages", len(created.Packages))
	return created, nil
}

// Modify loads Florence, rewrites its description, raises every package price
// by PriceMultiplier, saves the aggregate as one unit, and returns it as read
// back from storage.
func Modify(ctx context.Context, repo Repository, log *slog.Logger) (*travel.Destination, error) {
	d, err := repo.FindDestinationByName(ctx, DestinationName)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", DestinationName, err)
	}
	if d == nil {
		return nil, travel.NewPersistenceError("loading "+DestinationName, travel.KindNotFound, nil)
	}

	d.SetDescription(NewDescription)
	if err := d.AdjustPrices(PriceMultiplier); err != nil {
		return nil, err
	}

	if err := repo.SaveDestination(ctx, d); err != nil {
		return nil, fmt.Errorf("saving %s: %w", DestinationName, err)
	}

	verified, err := repo.FindDestinationByName(ctx, DestinationName)
	if err != nil {
		return nil, fmt.Errorf("verifying %s: %w", DestinationName, err)
	}
	if verified == nil {
		return nil, travel.NewPersistenceError("verifying "+DestinationName, travel.KindNotFound, nil)
	}

	description := ""
	if verified.Description != nil {
		description = *verified.Description
	}
	log.Info("destination modified", "destination_id", verified.ID, "description", description)
	return verified, nil
}
