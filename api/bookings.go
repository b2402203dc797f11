package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkravets/flightbook/internal/domain"
	"github.com/mkravets/flightbook/internal/service/booking"
	"github.com/mkravets/flightbook/internal/service/itinerary"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	UserID           int64                    `json:"user_id" binding:"required"`
	TripType         domain.TripType          `json:"trip_type" binding:"required"`
	Segments         []itinerary.SegmentInput `json:"segments" binding:"required"`
	TotalAmountCents int64                    `json:"total_amount_cents"`
}

type modifyBookingRequest struct {
	NewCabinClass  *domain.CabinClass `json:"new_cabin_class"`
	NewFlightLegID *int64             `json:"new_flight_leg_id"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type bookingViewResponse struct {
	domain.BookingView
	EffectiveStatus domain.BookingStatus `json:"effective_status"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.PATCH("/:id", h.modify)
	router.DELETE("/:id", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Create(c.Request.Context(), booking.CreateBookingInput{
		UserID:           req.UserID,
		TripType:         req.TripType,
		Segments:         req.Segments,
		TotalAmountCents: req.TotalAmountCents,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	message, err := h.service.Cancel(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: message})
}

func (h *BookingHandler) modify(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req modifyBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.service.Modify(c.Request.Context(), booking.ModifyBookingInput{
		BookingID:      id,
		NewCabinClass:  req.NewCabinClass,
		NewFlightLegID: req.NewFlightLegID,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: message})
}

func (h *BookingHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	view, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, bookingViewResponse{
		BookingView:     *view,
		EffectiveStatus: view.EffectiveStatus(time.Now()),
	})
}

func (h *BookingHandler) list(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id query parameter is required"})
		return
	}

	views, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	out := make([]bookingViewResponse, 0, len(views))
	for i := range views {
		out = append(out, bookingViewResponse{
			BookingView:     views[i],
			EffectiveStatus: views[i].EffectiveStatus(now),
		})
	}
	c.JSON(http.StatusOK, out)
}

// statusFor maps the lifecycle error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var noSeats domain.NoSeatsError
	switch {
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.As(err, &noSeats),
		errors.Is(err, domain.ErrAlreadyCancelled),
		errors.Is(err, domain.ErrDeparturePassed):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNoSegments),
		errors.Is(err, domain.ErrNoPassengers),
		errors.Is(err, domain.ErrInvalidTripType),
		errors.Is(err, domain.ErrInvalidCabinClass),
		errors.Is(err, domain.ErrInvalidPassengerType):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
