package reviews

import (
	"context"
	"strings"

	"rentbook/internal/app/dto"
	handlersupport "rentbook/internal/app/handlers/support"
	"rentbook/internal/app/queries"
	"rentbook/internal/app/uow"
	domainbooking "rentbook/internal/domain/booking"
)

const (
	getReviewKey     = "reviews.get"
	isReviewOwnerKey = "reviews.owner"
)

type GetReviewQuery struct {
	BookingID string `validate:"required"`
}

func (q GetReviewQuery) Key() string { return getReviewKey }

type GetReviewHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetReviewHandler) Handle(ctx context.Context, q GetReviewQuery) (dto.Review, error) {
	bookingID := strings.TrimSpace(q.BookingID)
	if bookingID == "" {
		return dto.Review{}, domainbooking.ErrIDRequired
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Review{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	if _, err := unit.Bookings().ByID(execCtx, domainbooking.ID(bookingID)); err != nil {
		return dto.Review{}, err
	}
	review, err := unit.Reviews().ByBooking(execCtx, domainbooking.ID(bookingID))
	if err != nil {
		return dto.Review{}, err
	}
	return dto.MapReview(review), nil
}

type IsReviewOwnerQuery struct {
	ReviewID string `validate:"required"`
	Username string
}

func (q IsReviewOwnerQuery) Key() string { return isReviewOwnerKey }

type IsReviewOwnerHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *IsReviewOwnerHandler) Handle(ctx context.Context, q IsReviewOwnerQuery) (dto.Ownership, error) {
	id, err := requireReviewID(q.ReviewID)
	if err != nil {
		return dto.Ownership{}, err
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Ownership{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	owner, err := handlersupport.ReviewOwnedBy(execCtx, unit, id, q.Username)
	if err != nil {
		return dto.Ownership{}, err
	}
	return dto.Ownership{Owner: owner}, nil
}

var (
	_ queries.Handler[GetReviewQuery, dto.Review]        = (*GetReviewHandler)(nil)
	_ queries.Handler[IsReviewOwnerQuery, dto.Ownership] = (*IsReviewOwnerHandler)(nil)
)
