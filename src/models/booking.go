package models

import (
	"strings"
	"time"

	"tbs/src/types"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Booking struct {
	ID             uint                `gorm:"primarykey" json:"id"`
	BookingID      string              `gorm:"uniqueIndex;size:20" json:"booking_id"`
	UserID         uint                `json:"user_id,omitempty"`
	TravelOptionID uint                `json:"travel_option_id,omitempty"`
	Seats          uint                `json:"seats"`
	TotalPrice     decimal.Decimal     `gorm:"type:decimal(10,2)" json:"total_price"`
	Status         types.BookingStatus `gorm:"default:'confirmed'" json:"status"`
	PassengerNames string              `json:"passenger_names,omitempty"`
	ContactEmail   string              `json:"contact_email,omitempty"`
	ContactPhone   string              `gorm:"size:15" json:"contact_phone,omitempty"`

	User         *User         `gorm:"foreignKey:user_id" json:"user,omitempty"`
	TravelOption *TravelOption `gorm:"foreignKey:travel_option_id" json:"travel_option,omitempty"`

	types.Timestamps
}

// NewBookingID returns an opaque booking token, a BK prefix plus eight
// uppercase hex chars of a random UUID. Not derivable from any counter.
func NewBookingID() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "BK" + strings.ToUpper(hex[:8])
}

// SplitPassengerNames splits the stored comma-joined list, dropping blanks.
func SplitPassengerNames(raw string) []string {
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// JoinPassengerNames normalizes and joins names for storage, dropping blanks.
func JoinPassengerNames(names []string) string {
	trimmed := make([]string, 0, len(names))
	for _, n := range names {
		if name := strings.TrimSpace(n); name != "" {
			trimmed = append(trimmed, name)
		}
	}
	return strings.Join(trimmed, ",")
}

func (b *Booking) PassengerNameList() []string {
	return SplitPassengerNames(b.PassengerNames)
}

func (b *Booking) APIResponse() *types.APIResponseBooking {
	resp := &types.APIResponseBooking{
		ID:             b.ID,
		BookingID:      b.BookingID,
		UserID:         b.UserID,
		TravelOptionID: b.TravelOptionID,
		Seats:          b.Seats,
		TotalPrice:     b.TotalPrice,
		Status:         b.Status,
		PassengerNames: b.PassengerNameList(),
		ContactEmail:   b.ContactEmail,
		ContactPhone:   b.ContactPhone,
		Timestamps:     b.Timestamps,
	}
	if b.TravelOption != nil {
		resp.Travel = b.TravelOption.APIResponse(time.Now())
	}
	return resp
}
