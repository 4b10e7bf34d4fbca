package config

import (
	"fmt"
	"log"
	"os"
	"time"
)

// const dsn = "host=localhost user=postgres password=password dbname=tbsdb port=5432 sslmode=disable TimeZone=UTC"

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const DATE_PARSE_FORMAT = "2006-01-02"

// CancellationWindow is how far ahead of departure a booking must still be
// to remain cancellable. At exactly the window boundary cancellation is closed.
const CancellationWindow = 24 * time.Hour

// MaxSeatsPerBooking caps how many seats a single booking may hold.
const MaxSeatsPerBooking = 10

// SeatTxRetries bounds retries of the seat transaction on lock conflicts.
const SeatTxRetries = 3

var canonicalZone *time.Location

// CanonicalZone is the single zone all cancellation-window checks are
// evaluated in. Defaults to UTC when BOOKING_TIMEZONE is unset or invalid.
func CanonicalZone() *time.Location {
	if canonicalZone != nil {
		return canonicalZone
	}
	name := os.Getenv("BOOKING_TIMEZONE")
	if name == "" {
		canonicalZone = time.UTC
		return canonicalZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("Invalid BOOKING_TIMEZONE %q, falling back to UTC: %s\n", name, err.Error())
		canonicalZone = time.UTC
		return canonicalZone
	}
	canonicalZone = loc
	return canonicalZone
}
