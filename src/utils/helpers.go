package utils

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"tbs/src/config"
	"tbs/src/db"
	"tbs/src/lib"
	"tbs/src/models"
	"tbs/src/models/scopes"
	"tbs/src/types"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9\- ]{5,13}[0-9]$`)
)

func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

func ValidPhone(s string) bool {
	return phonePattern.MatchString(strings.TrimSpace(s))
}

// SearchTravel lists travel options matching the filters, excluding
// past-dated departures. Options with zero free seats are still listed;
// the authoritative availability check happens at booking time.
func SearchTravel(filters *types.TravelQueryFilters) ([]models.TravelOption, error) {
	zone := config.CanonicalZone()
	now := time.Now().In(zone)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, zone)

	db := db.GetDb()
	q := db.Model(&models.TravelOption{}).Scopes(scopes.DepartingOnOrAfter(today))
	if s := strings.TrimSpace(filters.Source); s != "" {
		q = q.Where("source ILIKE ?", "%"+s+"%")
	}
	if d := strings.TrimSpace(filters.Destination); d != "" {
		q = q.Where("destination ILIKE ?", "%"+d+"%")
	}
	if filters.Type != "" {
		q = q.Where("type = ?", filters.Type)
	}
	if filters.DepartureDate != "" {
		day, err := time.ParseInLocation(config.DATE_PARSE_FORMAT, filters.DepartureDate, zone)
		if err != nil {
			return nil, types.ValidationError{Field: "departure_date", Msg: "invalid date"}
		}
		q = q.Where("departure_time >= ? AND departure_time < ?", day, day.AddDate(0, 0, 1))
	}
	var travels []models.TravelOption
	if err := q.Order("departure_time asc").Find(&travels).Error; err != nil {
		log.Printf("Error searching travel options: %s\n", err.Error())
		return nil, types.StorageError{Err: err}
	}
	return travels, nil
}

// GetTravel retrieves one travel option by its public travel code.
func GetTravel(travelId string) (*models.TravelOption, error) {
	db := db.GetDb()
	var travel models.TravelOption
	err := db.
		Model(&models.TravelOption{}).
		Scopes(scopes.WithTravelID(travelId)).
		First(&travel).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFoundError{Resource: "travel option", Err: err}
		}
		log.Printf("Error retrieving travel option %s: %s\n", travelId, err.Error())
		return nil, types.StorageError{Err: err}
	}
	return &travel, nil
}

// AdjustAvailableSeats applies a guarded seat delta to one travel option
// inside the caller's transaction. The floor (never below zero) and the
// ceiling (never above total_seats) are both enforced in the UPDATE itself,
// so a stale in-memory count can never oversell or over-credit.
func AdjustAvailableSeats(tx *gorm.DB, travelOptionId uint, delta int) error {
	if delta == 0 {
		return nil
	}
	q := tx.Model(&models.TravelOption{}).Scopes(scopes.WithID(travelOptionId))
	if delta < 0 {
		q = q.Where("available_seats >= ?", -delta)
	} else {
		q = q.Where("available_seats + ? <= total_seats", delta)
	}
	res := q.UpdateColumn("available_seats", gorm.Expr("available_seats + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if delta < 0 {
			return types.ErrInsufficientCapacity
		}
		return types.StorageError{Err: fmt.Errorf("seat credit would exceed capacity for travel option [%d]", travelOptionId)}
	}
	return nil
}

// retryableTxError reports Postgres serialization failures, deadlocks and
// lock timeouts, the cases where rerunning the transaction can succeed.
func retryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "40001", "40P01", "55P03":
		return true
	}
	return false
}

// withSeatTxRetry runs fn up to config.SeatTxRetries times, backing off
// briefly between attempts. Exhausted retries surface as a Conflict the
// caller may retry.
func withSeatTxRetry(fn func() error) error {
	var err error
	for attempt := 1; attempt <= config.SeatTxRetries; attempt++ {
		err = fn()
		if err == nil || !retryableTxError(err) {
			return err
		}
		log.Printf("Retryable conflict on attempt %d: %s\n", attempt, err.Error())
		time.Sleep(time.Duration(attempt) * 25 * time.Millisecond)
	}
	return types.ConflictError{Resource: "travel option", Err: err}
}

func validateBookingParams(params *types.CreateBookingRequestBody) ([]string, error) {
	if params.Seats < 1 || params.Seats > config.MaxSeatsPerBooking {
		return nil, types.ValidationError{Field: "seats", Msg: fmt.Sprintf("must be between 1 and %d", config.MaxSeatsPerBooking)}
	}
	names := make([]string, 0, len(params.PassengerNames))
	for _, n := range params.PassengerNames {
		if name := strings.TrimSpace(n); name != "" {
			names = append(names, name)
		}
	}
	if uint(len(names)) != params.Seats {
		return nil, types.ValidationError{Field: "passenger_names", Msg: "count must match number of seats"}
	}
	if !ValidEmail(params.ContactEmail) {
		return nil, types.ValidationError{Field: "contact_email", Msg: "malformed email address"}
	}
	if !ValidPhone(params.ContactPhone) {
		return nil, types.ValidationError{Field: "contact_phone", Msg: "malformed phone number"}
	}
	return names, nil
}

// CreateBooking reserves seats on a travel option for userId. The seat
// check, price freeze, booking insert and seat decrement run in one
// transaction against the locked travel row; on any failure nothing is
// persisted. The recorded total is the option's price at this moment,
// not at search time.
func CreateBooking(userId uint, params *types.CreateBookingRequestBody) (*models.Booking, error) {
	names, err := validateBookingParams(params)
	if err != nil {
		return nil, err
	}

	db := db.GetDb()
	var booking models.Booking
	err = withSeatTxRetry(func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			var travel models.TravelOption
			err := tx.
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Scopes(scopes.WithTravelID(params.TravelID)).
				First(&travel).
				Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return types.NotFoundError{Resource: "travel option", Err: err}
				}
				return err
			}
			now := time.Now()
			if travel.Departed(now) {
				return types.ErrNotAvailable
			}
			if travel.AvailableSeats < int(params.Seats) {
				return types.ErrInsufficientCapacity
			}

			totalPrice := travel.Price.Mul(decimal.NewFromUint64(uint64(params.Seats))).Round(2)
			booking = models.Booking{
				BookingID:      models.NewBookingID(),
				UserID:         userId,
				TravelOptionID: travel.ID,
				Seats:          params.Seats,
				TotalPrice:     totalPrice,
				Status:         types.BOOKING_CONFIRMED,
				PassengerNames: models.JoinPassengerNames(names),
				ContactEmail:   strings.TrimSpace(params.ContactEmail),
				ContactPhone:   strings.TrimSpace(params.ContactPhone),
			}
			if err := tx.Create(&booking).Error; err != nil {
				log.Printf("Error creating booking for travel %s: %s\n", params.TravelID, err.Error())
				return err
			}
			if err := AdjustAvailableSeats(tx, travel.ID, -int(params.Seats)); err != nil {
				return err
			}
			travel.AvailableSeats -= int(params.Seats)
			booking.TravelOption = &travel
			return nil
		})
	})
	if err != nil {
		return nil, asWorkflowError(err)
	}

	go lib.InvalidateTravelView(context.Background(), booking.TravelOption.TravelID)
	go lib.KafkaProduceMessage(lib.TopicBookingsCreated, map[string]any{
		"booking_id": booking.BookingID,
		"travel_id":  booking.TravelOption.TravelID,
		"user_id":    booking.UserID,
		"seats":      booking.Seats,
		"total":      booking.TotalPrice.StringFixed(2),
	})
	return &booking, nil
}

// CancelBooking cancels a confirmed booking owned by userId and credits
// the seats back, both inside one transaction. The cancellation window is
// re-checked at commit time against the locked rows, so a stale
// confirmation page cannot slip past the deadline.
func CancelBooking(bookingId string, userId uint) (*models.Booking, error) {
	db := db.GetDb()
	var booking models.Booking
	err := withSeatTxRetry(func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			err := tx.
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Scopes(scopes.WithBookingID(bookingId)).
				First(&booking).
				Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return types.NotFoundError{Resource: "booking", Err: err}
				}
				return err
			}
			if booking.UserID != userId {
				return types.NotFoundError{Resource: "booking"}
			}
			if booking.Status == types.BOOKING_CANCELED {
				return types.ErrAlreadyCancelled
			}

			var travel models.TravelOption
			err = tx.
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Scopes(scopes.WithID(booking.TravelOptionID)).
				First(&travel).
				Error
			if err != nil {
				return err
			}
			if !CancellableUntil(travel.DepartureTime).After(time.Now()) {
				return types.ErrCancellationWindowClosed
			}

			res := tx.
				Model(&models.Booking{}).
				Scopes(scopes.WithID(booking.ID), scopes.WithConfirmedStatus).
				Update("status", types.BOOKING_CANCELED)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return types.ErrAlreadyCancelled
			}
			if err := AdjustAvailableSeats(tx, travel.ID, int(booking.Seats)); err != nil {
				return err
			}
			booking.Status = types.BOOKING_CANCELED
			travel.AvailableSeats += int(booking.Seats)
			booking.TravelOption = &travel
			return nil
		})
	})
	if err != nil {
		return nil, asWorkflowError(err)
	}

	go lib.InvalidateTravelView(context.Background(), booking.TravelOption.TravelID)
	go lib.KafkaProduceMessage(lib.TopicBookingsCancelled, map[string]any{
		"booking_id": booking.BookingID,
		"travel_id":  booking.TravelOption.TravelID,
		"user_id":    booking.UserID,
		"seats":      booking.Seats,
	})
	return &booking, nil
}

// CancellableUntil is the last instant a booking for this departure can
// still be cancelled. At exactly the window boundary cancellation is closed.
func CancellableUntil(departure time.Time) time.Time {
	return departure.In(config.CanonicalZone()).Add(-config.CancellationWindow)
}

// GetOwnBookings lists userId's bookings, newest first.
func GetOwnBookings(userId uint) ([]models.Booking, error) {
	db := db.GetDb()
	var bookings []models.Booking
	err := db.
		Model(&models.Booking{}).
		Where(&models.Booking{UserID: userId}).
		Preload("TravelOption").
		Order("created_at desc").
		Find(&bookings).
		Error
	if err != nil {
		log.Printf("Error retrieving bookings for user %d: %s\n", userId, err.Error())
		return nil, types.StorageError{Err: err}
	}
	return bookings, nil
}

// asWorkflowError keeps typed workflow errors intact and wraps anything
// else as an opaque storage failure.
func asWorkflowError(err error) error {
	switch {
	case err == nil:
		return nil
	case types.IsValidation(err), types.IsNotFound(err), types.IsConflict(err), types.IsStorage(err):
		return err
	case errors.Is(err, types.ErrNotAvailable),
		errors.Is(err, types.ErrInsufficientCapacity),
		errors.Is(err, types.ErrCancellationWindowClosed),
		errors.Is(err, types.ErrAlreadyCancelled):
		return err
	}
	return types.StorageError{Err: err}
}

// SeatDrift is one travel option whose stored available-seats counter
// disagrees with the aggregate over its confirmed bookings.
type SeatDrift struct {
	ID             uint
	TravelID       string
	AvailableSeats int
	Expected       int
}

// ReconcileSeatInventory audits every travel option's available_seats
// against total_seats minus the confirmed-booking aggregate and logs any
// drift. Read-only: drift indicates a bug and is never repaired silently.
func ReconcileSeatInventory() {
	db := db.GetDb()
	var drifts []SeatDrift
	err := db.Raw(`
		SELECT t.id, t.travel_id, t.available_seats,
		       t.total_seats - COALESCE(SUM(b.seats), 0) AS expected
		FROM travel_options t
		LEFT JOIN bookings b
		  ON b.travel_option_id = t.id
		 AND b.status = 'confirmed'
		 AND b.deleted_at IS NULL
		WHERE t.deleted_at IS NULL
		GROUP BY t.id
		HAVING t.available_seats <> t.total_seats - COALESCE(SUM(b.seats), 0)`).
		Scan(&drifts).Error
	if err != nil {
		log.Printf("Seat reconciliation query failed: %s\n", err.Error())
		return
	}
	if len(drifts) == 0 {
		log.Println("Seat reconciliation: no drift")
		return
	}
	for _, d := range drifts {
		log.Printf("Seat drift on travel option %s [%d]: available=%d expected=%d\n", d.TravelID, d.ID, d.AvailableSeats, d.Expected)
	}
}
