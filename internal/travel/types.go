package travel

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxNameLength bounds every length-limited text column.
const MaxNameLength = 128

// PriceScale is the number of fractional digits kept for a price.
const PriceScale = 3

// priceIntegerDigits is the integer part of decimal(10,3).
const priceIntegerDigits = 7

// Package is a bookable offer owned by exactly one Destination.
type Package struct {
	ID                int             `json:"id"`
	Name              string          `json:"name"`
	Description       *string         `json:"description,omitempty"`
	StartValidityDate *time.Time      `json:"start_validity_date,omitempty"`
	EndValidityDate   *time.Time      `json:"end_validity_date,omitempty"`
	DurationInDays    int             `json:"duration_in_days"`
	Price             decimal.Decimal `json:"price"`
	DestinationID     int             `json:"destination_id"`
}

// Destination is the aggregate root: a place and the packages sold for it.
type Destination struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Country     string    `json:"country"`
	Description *string   `json:"description,omitempty"`
	Packages    []Package `json:"packages"`
}
