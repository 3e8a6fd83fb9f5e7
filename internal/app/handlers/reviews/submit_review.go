package reviews

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/dto"
	handlersupport "rentbook/internal/app/handlers/support"
	"rentbook/internal/app/middleware"
	"rentbook/internal/app/outbox"
	"rentbook/internal/app/policies"
	"rentbook/internal/app/uow"
	domainbooking "rentbook/internal/domain/booking"
	domainreviews "rentbook/internal/domain/reviews"
)

const createReviewKey = "reviews.create"

const reviewCreatedMessage = "review created successfully"

// CreateReviewCommand reviews a completed booking.
type CreateReviewCommand struct {
	ReviewID  string
	BookingID string `validate:"required"`
	Rating    int    `validate:"required"`
	Comment   string
	Username  string
	Trusted   bool
	Now       time.Time
}

func (c CreateReviewCommand) Key() string { return createReviewKey }

func (c CreateReviewCommand) LockKeys() []string {
	return []string{middleware.BookingKey(c.BookingID)}
}

func (c CreateReviewCommand) OwnershipClaim() (string, string, string) {
	return handlersupport.ResourceBooking, c.BookingID, c.Username
}

func (c CreateReviewCommand) TrustedCaller() bool { return c.Trusted }

type CreateReviewHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Metrics    policies.Recorder
	Logger     *slog.Logger
}

func (h *CreateReviewHandler) Handle(ctx context.Context, cmd CreateReviewCommand) (dto.Message, error) {
	bookingID := strings.TrimSpace(cmd.BookingID)
	if bookingID == "" {
		return dto.Message{}, domainbooking.ErrIDRequired
	}

	unit, err := handlersupport.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Message{}, err
	}
	defer unit.Close()
	ctx = unit.Ctx

	booking, err := unit.Bookings().ByID(ctx, domainbooking.ID(bookingID))
	if err != nil {
		return dto.Message{}, err
	}
	if _, err := unit.Reviews().ByBooking(ctx, booking.ID); err == nil {
		return dto.Message{}, domainreviews.ErrDuplicateReview
	} else if !errors.Is(err, domainreviews.ErrNotFound) {
		return dto.Message{}, err
	}

	review, err := domainreviews.Submit(domainreviews.SubmitParams{
		ID:         newReviewID(cmd.ReviewID),
		Booking:    booking,
		Rating:     cmd.Rating,
		Comment:    cmd.Comment,
		ReviewedAt: handlersupport.Now(cmd.Now),
	})
	if err != nil {
		return dto.Message{}, err
	}
	if err := unit.Reviews().Insert(ctx, review); err != nil {
		return dto.Message{}, err
	}
	if err := unit.Bookings().AttachReview(ctx, booking.ID, string(review.ID)); err != nil {
		return dto.Message{}, err
	}
	if err := handlersupport.FlushEvents(ctx, h.Outbox, encoderOrDefault(h.Encoder), review); err != nil {
		return dto.Message{}, err
	}
	if err := unit.Commit(); err != nil {
		return dto.Message{}, err
	}

	if h.Metrics != nil {
		h.Metrics.ReviewCreated()
	}
	if h.Logger != nil {
		h.Logger.Info("review submitted", "review_id", review.ID, "booking_id", booking.ID, "property_id", booking.PropertyID, "rating", review.Rating)
	}
	return dto.Message{Message: reviewCreatedMessage}, nil
}

func newReviewID(requested string) domainreviews.ID {
	if id := strings.TrimSpace(requested); id != "" {
		return domainreviews.ID(id)
	}
	return domainreviews.ID(uuid.NewString())
}

func encoderOrDefault(enc outbox.EventEncoder) outbox.EventEncoder {
	if enc != nil {
		return enc
	}
	return outbox.JSONEventEncoder{}
}

func requireReviewID(raw string) (domainreviews.ID, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", domainreviews.ErrIDRequired
	}
	return domainreviews.ID(id), nil
}

var _ commands.Handler[CreateReviewCommand, dto.Message] = (*CreateReviewHandler)(nil)
var _ middleware.SerializedCommand = CreateReviewCommand{}
var _ middleware.OwnedCommand = CreateReviewCommand{}
