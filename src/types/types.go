package types

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type TravelType string

const (
	TRAVEL_FLIGHT TravelType = "flight"
	TRAVEL_TRAIN  TravelType = "train"
	TRAVEL_BUS    TravelType = "bus"
)

func (t TravelType) Valid() bool {
	switch t {
	case TRAVEL_FLIGHT, TRAVEL_TRAIN, TRAVEL_BUS:
		return true
	}
	return false
}

type BookingStatus string

const (
	BOOKING_CONFIRMED BookingStatus = "confirmed"
	BOOKING_CANCELED  BookingStatus = "cancelled"
)

type TravelQueryFilters struct {
	Source        string `form:"source,omitempty"`
	Destination   string `form:"destination,omitempty"`
	Type          string `form:"type,omitempty" binding:"omitempty,oneof=flight train bus"`
	DepartureDate string `form:"departure_date,omitempty" binding:"omitempty,datetime=2006-01-02"`
}

type CreateBookingRequestBody struct {
	TravelID       string   `json:"travel_id" binding:"required"`
	Seats          uint     `json:"seats" binding:"required,min=1,max=10"`
	PassengerNames []string `json:"passenger_names" binding:"required,min=1"`
	ContactEmail   string   `json:"contact_email" binding:"required,email"`
	ContactPhone   string   `json:"contact_phone" binding:"required,phoneno"`
}

type BookingURIParams struct {
	BookingID string `uri:"id" binding:"required"`
}

type TravelURIParams struct {
	TravelID string `uri:"id" binding:"required"`
}

type APIResponseTravelOption struct {
	ID             uint            `json:"id"`
	TravelID       string          `json:"travel_id"`
	Type           TravelType      `json:"type"`
	Source         string          `json:"source"`
	Destination    string          `json:"destination"`
	DepartureTime  time.Time       `json:"departure_time"`
	ArrivalTime    time.Time       `json:"arrival_time"`
	Price          decimal.Decimal `json:"price"`
	TotalSeats     uint            `json:"total_seats"`
	AvailableSeats int             `json:"available_seats"`
	Available      bool            `json:"available"`
}

type APIResponseBooking struct {
	ID             uint            `json:"id"`
	BookingID      string          `json:"booking_id"`
	UserID         uint            `json:"user_id,omitempty"`
	TravelOptionID uint            `json:"travel_option_id,omitempty"`
	Seats          uint            `json:"seats"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	Status         BookingStatus   `json:"status"`
	PassengerNames []string        `json:"passenger_names,omitempty"`
	ContactEmail   string          `json:"contact_email,omitempty"`
	ContactPhone   string          `json:"contact_phone,omitempty"`

	Travel *APIResponseTravelOption `json:"travel,omitempty"`

	Timestamps
}

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
