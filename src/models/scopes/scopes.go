package scopes

import (
	"time"

	"gorm.io/gorm"
)

func WithID(id uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	}
}

func WithTravelID(travelId string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("travel_id = ?", travelId)
	}
}

func WithBookingID(bookingId string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("booking_id = ?", bookingId)
	}
}

func WithConfirmedStatus(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", "confirmed")
}

func DepartingOnOrAfter(t time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("departure_time >= ?", t)
	}
}
