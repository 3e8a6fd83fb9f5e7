package dto

import (
	"rentbook/internal/domain/availability"
	"rentbook/internal/domain/shared/daterange"
)

type CalendarBlock struct {
	BookingID string `json:"booking_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Status    string `json:"status"`
}

type Calendar struct {
	PropertyID   string          `json:"property_id"`
	From         string          `json:"from,omitempty"`
	To           string          `json:"to,omitempty"`
	BookedNights int             `json:"booked_nights"`
	Blocks       []CalendarBlock `json:"blocks"`
}

// Availability answers whether a stay could be booked right now.
type Availability struct {
	PropertyID string   `json:"property_id"`
	StartDate  string   `json:"start_date"`
	EndDate    string   `json:"end_date"`
	Available  bool     `json:"available"`
	Listed     bool     `json:"listed"`
	Conflicts  []string `json:"conflicts,omitempty"`
}

func MapCalendar(cal *availability.Calendar) Calendar {
	out := Calendar{
		PropertyID:   string(cal.PropertyID),
		BookedNights: cal.BookedNights(),
		Blocks:       make([]CalendarBlock, 0, len(cal.Blocks)),
	}
	if !cal.Window.Start.IsZero() {
		out.From = cal.Window.Start.Format(daterange.DateLayout)
		out.To = cal.Window.End.Format(daterange.DateLayout)
	}
	for _, block := range cal.Blocks {
		out.Blocks = append(out.Blocks, CalendarBlock{
			BookingID: string(block.BookingID),
			StartDate: block.Range.Start.Format(daterange.DateLayout),
			EndDate:   block.Range.End.Format(daterange.DateLayout),
			Status:    string(block.Status),
		})
	}
	return out
}
