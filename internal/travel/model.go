package travel

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var maxPrice = decimal.New(1, priceIntegerDigits)

// NormalizePrice rounds p to PriceScale fractional digits, half away from zero.
func NormalizePrice(p decimal.Decimal) decimal.Decimal {
	return p.Round(PriceScale)
}

// Validate checks the destination's own columns and every package it carries.
func (d *Destination) Validate() error {
	const op = "validating destination"

	if err := checkText(op, "name", d.Name, true); err != nil {
		return err
	}
	if err := checkText(op, "country", d.Country, true); err != nil {
		return err
	}
	for i := range d.Packages {
		if err := d.Packages[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks a package's columns against the schema limits.
func (p *Package) Validate() error {
	const op = "validating package"

	if err := checkText(op, "name", p.Name, true); err != nil {
		return err
	}
	if p.Description != nil {
		if err := checkText(op, "description", *p.Description, false); err != nil {
			return err
		}
	}
	if NormalizePrice(p.Price).Abs().GreaterThanOrEqual(maxPrice) {
		return violation(op, "price", "exceeds decimal(10,3)")
	}
	return nil
}

func checkText(op, field, v string, required bool) error {
	if required && strings.TrimSpace(v) == "" {
		return violation(op, field, "is required")
	}
	if utf8.RuneCountInString(v) > MaxNameLength {
		return violation(op, field, "exceeds 128 characters")
	}
	return nil
}

// SetDescription replaces the destination's description.
func (d *Destination) SetDescription(description string) {
	d.Description = &description
}

// AdjustPrices multiplies every package price by multiplier and rounds the
// result to PriceScale digits.
func (d *Destination) AdjustPrices(multiplier decimal.Decimal) error {
	if multiplier.IsNegative() {
		return NewPersistenceError("adjusting prices", KindConstraintViolation, errors.New("multiplier must not be negative"))
	}
	for i := range d.Packages {
		d.Packages[i].Price = NormalizePrice(d.Packages[i].Price.Mul(multiplier))
	}
	return nil
}
