package models

import (
	"tbs/src/config"
	"tbs/src/types"
	"time"

	"github.com/shopspring/decimal"
)

type TravelOption struct {
	ID             uint             `gorm:"primarykey" json:"id"`
	TravelID       string           `gorm:"uniqueIndex;size:20" json:"travel_id"`
	Type           types.TravelType `json:"type"`
	Source         string           `gorm:"size:100" json:"source"`
	Destination    string           `gorm:"size:100" json:"destination"`
	DepartureTime  time.Time        `json:"departure_time"`
	ArrivalTime    time.Time        `json:"arrival_time"`
	Price          decimal.Decimal  `gorm:"type:decimal(10,2)" json:"price"`
	TotalSeats     uint             `json:"total_seats"`
	AvailableSeats int              `json:"available_seats"`

	Bookings []Booking `gorm:"foreignKey:travel_option_id;constraint:OnDelete:RESTRICT" json:"bookings,omitempty"`

	types.Timestamps
}

// IsAvailable reports whether the option can still be booked: seats left
// and the departure date (canonical zone, date granularity) not in the past.
func (t *TravelOption) IsAvailable(now time.Time) bool {
	if t.AvailableSeats <= 0 {
		return false
	}
	return !t.Departed(now)
}

// Departed is true once the departure date lies strictly before today.
func (t *TravelOption) Departed(now time.Time) bool {
	zone := config.CanonicalZone()
	dep := t.DepartureTime.In(zone)
	depDate := time.Date(dep.Year(), dep.Month(), dep.Day(), 0, 0, 0, 0, zone)
	n := now.In(zone)
	today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, zone)
	return depDate.Before(today)
}

func (t *TravelOption) APIResponse(now time.Time) *types.APIResponseTravelOption {
	return &types.APIResponseTravelOption{
		ID:             t.ID,
		TravelID:       t.TravelID,
		Type:           t.Type,
		Source:         t.Source,
		Destination:    t.Destination,
		DepartureTime:  t.DepartureTime,
		ArrivalTime:    t.ArrivalTime,
		Price:          t.Price,
		TotalSeats:     t.TotalSeats,
		AvailableSeats: t.AvailableSeats,
		Available:      t.IsAvailable(now),
	}
}
