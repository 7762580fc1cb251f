// Package fare computes passenger fares, concessions and cancellation
// charges. Everything here is pure: no clock, no storage, no locking.
package fare

import (
	"errors"
	"fmt"
	"math"

	"github.com/railserve/reservation-backend/internal/models"
)

// ErrInvalidFareRule is returned for a malformed fare configuration.
var ErrInvalidFareRule = errors.New("invalid fare rule")

// GSTRate is the fixed goods-and-services tax applied on top of the
// discounted fare plus service charge.
const GSTRate = 0.18

// Rule is the fare configuration for one (class, reservation type) pair:
// the per-kilometre rate and the flat per-passenger addon.
type Rule struct {
	FarePerKm float64 `json:"fare_per_km"`
	FlatAddon float64 `json:"flat_addon"`
}

// PassengerFare is the unrounded per-passenger portion of a breakdown.
type PassengerFare struct {
	Name     string  `json:"name"`
	BaseFare float64 `json:"base_fare"`
	Discount float64 `json:"discount"`
	// NetFare is base minus discount plus the flat addon, before GST.
	NetFare float64 `json:"net_fare"`
}

// Breakdown aggregates a booking's fare. Internal values stay unrounded;
// Summary rounds once at the output boundary.
type Breakdown struct {
	Passengers    []PassengerFare
	TotalBase     float64
	TotalDiscount float64
	ServiceCharge float64
	GST           float64
	TotalFare     float64
}

// Summary rounds the aggregate to two decimal places for callers.
func (b *Breakdown) Summary() models.FareSummary {
	return models.FareSummary{
		TotalBase:     Round2(b.TotalBase),
		TotalDiscount: Round2(b.TotalDiscount),
		ServiceCharge: Round2(b.ServiceCharge),
		GST:           Round2(b.GST),
		TotalFare:     Round2(b.TotalFare),
	}
}

// ComputeFare prices a list of passengers over a journey distance.
// Concessions are first-match: physically handicapped 50%, then senior
// (age 60 and over) 40%, then under-5s travel free; the flat addon is
// charged per passenger regardless.
func ComputeFare(distanceKm float64, rule Rule, passengers []models.PassengerRequest) (*Breakdown, error) {
	if rule.FarePerKm <= 0 {
		return nil, fmt.Errorf("%w: fare per km %.2f", ErrInvalidFareRule, rule.FarePerKm)
	}

	b := &Breakdown{Passengers: make([]PassengerFare, 0, len(passengers))}
	for _, p := range passengers {
		base := distanceKm * rule.FarePerKm
		var discount float64
		switch {
		case p.IsHandicapped:
			discount = base * 0.50
		case p.Age >= 60:
			discount = base * 0.40
		case p.Age < 5:
			base = 0
		}

		net := base - discount + rule.FlatAddon
		b.Passengers = append(b.Passengers, PassengerFare{
			Name:     p.Name,
			BaseFare: base,
			Discount: discount,
			NetFare:  net,
		})
		b.TotalBase += base
		b.TotalDiscount += discount
	}

	b.ServiceCharge = rule.FlatAddon * float64(len(passengers))
	taxable := b.TotalBase - b.TotalDiscount + b.ServiceCharge
	b.GST = GSTRate * taxable
	b.TotalFare = taxable + b.GST
	return b, nil
}

// Round2 rounds a monetary value to two decimal places. It is applied at
// output boundaries only so intermediate arithmetic never compounds
// rounding error.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
