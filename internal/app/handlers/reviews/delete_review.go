package reviews

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/dto"
	handlersupport "rentbook/internal/app/handlers/support"
	"rentbook/internal/app/middleware"
	"rentbook/internal/app/outbox"
	"rentbook/internal/app/uow"
	domainbooking "rentbook/internal/domain/booking"
)

const deleteReviewKey = "reviews.delete"

const reviewDeletedMessage = "review deleted"

type DeleteReviewCommand struct {
	ReviewID string `validate:"required"`
	Username string
	Trusted  bool
	Now      time.Time
}

func (c DeleteReviewCommand) Key() string { return deleteReviewKey }

func (c DeleteReviewCommand) LockKeys() []string {
	return []string{middleware.ReviewKey(c.ReviewID)}
}

func (c DeleteReviewCommand) OwnershipClaim() (string, string, string) {
	return handlersupport.ResourceReview, c.ReviewID, c.Username
}

func (c DeleteReviewCommand) TrustedCaller() bool { return c.Trusted }

type DeleteReviewHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *DeleteReviewHandler) Handle(ctx context.Context, cmd DeleteReviewCommand) (dto.Message, error) {
	id, err := requireReviewID(cmd.ReviewID)
	if err != nil {
		return dto.Message{}, err
	}

	unit, err := handlersupport.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Message{}, err
	}
	defer unit.Close()
	ctx = unit.Ctx

	review, err := unit.Reviews().ByID(ctx, id)
	if err != nil {
		return dto.Message{}, err
	}
	// Clear the back-reference first; the booking may already be gone if it
	// was deleted concurrently.
	if err := unit.Bookings().AttachReview(ctx, review.BookingID, ""); err != nil && !errors.Is(err, domainbooking.ErrNotFound) {
		return dto.Message{}, err
	}
	review.MarkDeleted(handlersupport.Now(cmd.Now))
	if err := unit.Reviews().Delete(ctx, review.ID); err != nil {
		return dto.Message{}, err
	}
	if err := handlersupport.FlushEvents(ctx, h.Outbox, encoderOrDefault(h.Encoder), review); err != nil {
		return dto.Message{}, err
	}
	if err := unit.Commit(); err != nil {
		return dto.Message{}, err
	}
	if h.Logger != nil {
		h.Logger.Info("review deleted", "review_id", review.ID, "booking_id", review.BookingID)
	}
	return dto.Message{Message: reviewDeletedMessage}, nil
}

var _ commands.Handler[DeleteReviewCommand, dto.Message] = (*DeleteReviewHandler)(nil)
var _ middleware.OwnedCommand = DeleteReviewCommand{}
