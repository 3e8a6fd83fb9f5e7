package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rentbook/internal/app/dto"
	availabilityapp "rentbook/internal/app/handlers/availability"
	"rentbook/internal/app/queries"
)

type AvailabilityHandler struct {
	Queries queries.Bus
}

// Calendar serves GET /properties/:id/calendar?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *AvailabilityHandler) Calendar(c *gin.Context) {
	from, err := parseDate(c.Query("from"))
	if err != nil {
		writeError(c, err)
		return
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		writeError(c, err)
		return
	}
	query := availabilityapp.GetCalendarQuery{PropertyID: c.Param("id"), From: from, To: to}
	result, err := queries.Ask[availabilityapp.GetCalendarQuery, dto.Calendar](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Check serves GET /properties/:id/availability?start_date=...&end_date=...
func (h *AvailabilityHandler) Check(c *gin.Context) {
	start, err := parseDate(c.Query("start_date"))
	if err != nil {
		writeError(c, err)
		return
	}
	end, err := parseDate(c.Query("end_date"))
	if err != nil {
		writeError(c, err)
		return
	}
	query := availabilityapp.CheckAvailabilityQuery{PropertyID: c.Param("id"), StartDate: start, EndDate: end}
	result, err := queries.Ask[availabilityapp.CheckAvailabilityQuery, dto.Availability](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
