package main

import (
	"errors"
	"net/http"

	"tbs/src/lib/mailer"
	"tbs/src/types"
	"tbs/src/utils"

	"github.com/gin-gonic/gin"
)

// errorStatus maps workflow errors onto HTTP statuses. Validation failures
// are the caller's fault, capacity and state conflicts are 409, domain
// unavailability is 422, everything else is opaque.
func errorStatus(err error) int {
	switch {
	case types.IsValidation(err):
		return http.StatusBadRequest
	case types.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, types.ErrInsufficientCapacity),
		errors.Is(err, types.ErrAlreadyCancelled):
		return http.StatusConflict
	case types.IsConflict(err):
		return http.StatusConflict
	case errors.Is(err, types.ErrNotAvailable),
		errors.Is(err, types.ErrCancellationWindowClosed):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/bookings", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			bookings, err := utils.GetOwnBookings(userId)
			if err != nil {
				ctx.JSON(errorStatus(err), gin.H{"error": err.Error()})
				return
			}
			data := make([]*types.APIResponseBooking, 0, len(bookings))
			for i := range bookings {
				data = append(data, bookings[i].APIResponse())
			}
			ctx.JSON(http.StatusOK, gin.H{"data": data, "count": len(data)})
		}).
		POST("/bookings", func(ctx *gin.Context) {
			var body types.CreateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			booking, err := utils.CreateBooking(userId, &body)
			if err != nil {
				ctx.JSON(errorStatus(err), gin.H{"error": err.Error()})
				return
			}
			go mailer.SendBookingConfirmation(booking, booking.TravelOption)
			ctx.JSON(http.StatusCreated, gin.H{"data": booking.APIResponse()})
		}).
		PUT("/bookings/:id/cancel", func(ctx *gin.Context) {
			var params types.BookingURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			booking, err := utils.CancelBooking(params.BookingID, userId)
			if err != nil {
				ctx.JSON(errorStatus(err), gin.H{"error": err.Error()})
				return
			}
			go mailer.SendBookingCancellation(booking, booking.TravelOption)
			ctx.JSON(http.StatusOK, gin.H{"data": booking.APIResponse()})
		})
	return g
}
