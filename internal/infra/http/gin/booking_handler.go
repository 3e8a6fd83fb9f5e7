package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/dto"
	bookingapp "rentbook/internal/app/handlers/booking"
	"rentbook/internal/app/queries"
	domainbooking "rentbook/internal/domain/booking"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createBookingRequest struct {
	BookingID  string `json:"booking_id"`
	PropertyID string `json:"property_id" binding:"required"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
}

func (h *BookingHandler) Create(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		writeError(c, err)
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		writeError(c, err)
		return
	}
	cmd := bookingapp.CreateBookingCommand{
		BookingID:       req.BookingID,
		PropertyID:      req.PropertyID,
		StartDate:       start,
		EndDate:         end,
		Username:        user.Username,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.CreateBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *BookingHandler) Get(c *gin.Context) {
	result, err := queries.Ask[bookingapp.GetBookingQuery, dto.Booking](c.Request.Context(), h.Queries,
		bookingapp.GetBookingQuery{BookingID: c.Param("id")})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type updateBookingRequest struct {
	PropertyID *string `json:"property_id"`
	StartDate  *string `json:"start_date"`
	EndDate    *string `json:"end_date"`
}

func (h *BookingHandler) Update(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req updateBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	start, err := parseOptionalDate(req.StartDate)
	if err != nil {
		writeError(c, err)
		return
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		writeError(c, err)
		return
	}
	cmd := bookingapp.UpdateBookingCommand{
		BookingID:  c.Param("id"),
		PropertyID: req.PropertyID,
		StartDate:  start,
		EndDate:    end,
		Username:   user.Username,
	}
	result, err := commands.Dispatch[bookingapp.UpdateBookingCommand, dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type changeStatusRequest struct {
	PropertyID string `json:"property_id" binding:"required"`
	Status     string `json:"status" binding:"required"`
}

func (h *BookingHandler) ChangeStatus(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req changeStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	status, err := domainbooking.ParseStatus(req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	cmd := bookingapp.ChangeBookingStatusCommand{
		BookingID:  c.Param("id"),
		PropertyID: req.PropertyID,
		Status:     status,
		Username:   user.Username,
	}
	result, err := commands.Dispatch[bookingapp.ChangeBookingStatusCommand, dto.Message](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *BookingHandler) Delete(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	cmd := bookingapp.DeleteBookingCommand{
		BookingID:  c.Param("id"),
		PropertyID: c.Query("property_id"),
		Username:   user.Username,
	}
	result, err := commands.Dispatch[bookingapp.DeleteBookingCommand, dto.Message](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *BookingHandler) IsOwner(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	result, err := queries.Ask[bookingapp.IsBookingOwnerQuery, dto.Ownership](c.Request.Context(), h.Queries,
		bookingapp.IsBookingOwnerQuery{BookingID: c.Param("id"), Username: user.Username})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *BookingHandler) ListMine(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	result, err := queries.Ask[bookingapp.ListUserBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries,
		bookingapp.ListUserBookingsQuery{Username: user.Username})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *BookingHandler) ListForProperty(c *gin.Context) {
	result, err := queries.Ask[bookingapp.ListPropertyBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries,
		bookingapp.ListPropertyBookingsQuery{PropertyID: c.Param("id")})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
