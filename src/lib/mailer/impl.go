package mailer

import (
	"fmt"
	"log"
	"os"

	"tbs/src/lib"
	"tbs/src/models"
)

func senderAddress() (string, string) {
	from := os.Getenv("MAIL_FROM")
	fromName := os.Getenv("MAIL_FROM_NAME")
	if fromName == "" {
		fromName = "Travel Bookings"
	}
	return from, fromName
}

// SendBookingConfirmation mails the contact address after a successful
// reservation. Callers run it in a goroutine; failures are only logged.
func SendBookingConfirmation(booking *models.Booking, travel *models.TravelOption) {
	from, fromName := senderAddress()
	body := fmt.Sprintf(
		"Your booking %s is confirmed.\n\n%s to %s, departing %s.\nSeats: %d\nTotal: %s\n",
		booking.BookingID,
		travel.Source,
		travel.Destination,
		travel.DepartureTime.Format("2006-01-02 15:04"),
		booking.Seats,
		booking.TotalPrice.StringFixed(2),
	)
	err := lib.SendMail(&lib.SendMailInput{
		From:     from,
		FromName: fromName,
		To:       []string{booking.ContactEmail},
		Subject:  fmt.Sprintf("Booking confirmed: %s", booking.BookingID),
		Body:     body,
	})
	if err != nil {
		log.Printf("Failed to send confirmation for %s: %s\n", booking.BookingID, err.Error())
	}
}

// SendBookingCancellation mails the contact address after a cancellation.
func SendBookingCancellation(booking *models.Booking, travel *models.TravelOption) {
	from, fromName := senderAddress()
	body := fmt.Sprintf(
		"Your booking %s has been cancelled.\n\n%s to %s, departing %s.\nSeats released: %d\n",
		booking.BookingID,
		travel.Source,
		travel.Destination,
		travel.DepartureTime.Format("2006-01-02 15:04"),
		booking.Seats,
	)
	err := lib.SendMail(&lib.SendMailInput{
		From:     from,
		FromName: fromName,
		To:       []string{booking.ContactEmail},
		Subject:  fmt.Sprintf("Booking cancelled: %s", booking.BookingID),
		Body:     body,
	})
	if err != nil {
		log.Printf("Failed to send cancellation notice for %s: %s\n", booking.BookingID, err.Error())
	}
}
