package reviews

import (
	"context"
	"log/slog"
	"time"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/dto"
	handlersupport "rentbook/internal/app/handlers/support"
	"rentbook/internal/app/middleware"
	"rentbook/internal/app/outbox"
	"rentbook/internal/app/uow"
)

const (
	updateReviewKey        = "reviews.update"
	updateReviewRatingKey  = "reviews.rating.update"
	updateReviewCommentKey = "reviews.comment.update"
)

// UpdateReviewCommand patches rating and/or comment.
type UpdateReviewCommand struct {
	ReviewID string `validate:"required"`
	Rating   *int
	Comment  *string
	Username string
	Trusted  bool
	Now      time.Time
}

func (c UpdateReviewCommand) Key() string { return updateReviewKey }

func (c UpdateReviewCommand) LockKeys() []string {
	return []string{middleware.ReviewKey(c.ReviewID)}
}

func (c UpdateReviewCommand) OwnershipClaim() (string, string, string) {
	return handlersupport.ResourceReview, c.ReviewID, c.Username
}

func (c UpdateReviewCommand) TrustedCaller() bool { return c.Trusted }

type UpdateReviewRatingCommand struct {
	ReviewID string `validate:"required"`
	Rating   int    `validate:"required"`
	Username string
	Trusted  bool
	Now      time.Time
}

func (c UpdateReviewRatingCommand) Key() string { return updateReviewRatingKey }

func (c UpdateReviewRatingCommand) LockKeys() []string {
	return []string{middleware.ReviewKey(c.ReviewID)}
}

func (c UpdateReviewRatingCommand) OwnershipClaim() (string, string, string) {
	return handlersupport.ResourceReview, c.ReviewID, c.Username
}

func (c UpdateReviewRatingCommand) TrustedCaller() bool { return c.Trusted }

type UpdateReviewCommentCommand struct {
	ReviewID string `validate:"required"`
	Comment  string
	Username string
	Trusted  bool
	Now      time.Time
}

func (c UpdateReviewCommentCommand) Key() string { return updateReviewCommentKey }

func (c UpdateReviewCommentCommand) LockKeys() []string {
	return []string{middleware.ReviewKey(c.ReviewID)}
}

func (c UpdateReviewCommentCommand) OwnershipClaim() (string, string, string) {
	return handlersupport.ResourceReview, c.ReviewID, c.Username
}

func (c UpdateReviewCommentCommand) TrustedCaller() bool { return c.Trusted }

type UpdateReviewHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *UpdateReviewHandler) Handle(ctx context.Context, cmd UpdateReviewCommand) (dto.Review, error) {
	id, err := requireReviewID(cmd.ReviewID)
	if err != nil {
		return dto.Review{}, err
	}

	unit, err := handlersupport.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Review{}, err
	}
	defer unit.Close()
	ctx = unit.Ctx

	review, err := unit.Reviews().ByID(ctx, id)
	if err != nil {
		return dto.Review{}, err
	}
	now := handlersupport.Now(cmd.Now)
	if cmd.Rating != nil {
		if err := review.UpdateRating(*cmd.Rating, now); err != nil {
			return dto.Review{}, err
		}
	}
	if cmd.Comment != nil {
		review.UpdateComment(*cmd.Comment, now)
	}
	if err := unit.Reviews().Save(ctx, review); err != nil {
		return dto.Review{}, err
	}
	if err := handlersupport.FlushEvents(ctx, h.Outbox, encoderOrDefault(h.Encoder), review); err != nil {
		return dto.Review{}, err
	}
	if err := unit.Commit(); err != nil {
		return dto.Review{}, err
	}
	if h.Logger != nil {
		h.Logger.Info("review updated", "review_id", review.ID, "booking_id", review.BookingID, "rating", review.Rating)
	}
	return dto.MapReview(review), nil
}

func (h *UpdateReviewHandler) HandleRating(ctx context.Context, cmd UpdateReviewRatingCommand) (dto.Review, error) {
	rating := cmd.Rating
	return h.Handle(ctx, UpdateReviewCommand{ReviewID: cmd.ReviewID, Rating: &rating, Username: cmd.Username, Now: cmd.Now})
}

func (h *UpdateReviewHandler) HandleComment(ctx context.Context, cmd UpdateReviewCommentCommand) (dto.Review, error) {
	comment := cmd.Comment
	return h.Handle(ctx, UpdateReviewCommand{ReviewID: cmd.ReviewID, Comment: &comment, Username: cmd.Username, Now: cmd.Now})
}

var _ commands.Handler[UpdateReviewCommand, dto.Review] = (*UpdateReviewHandler)(nil)
var _ middleware.SerializedCommand = UpdateReviewCommand{}
var _ middleware.OwnedCommand = UpdateReviewCommand{}
var _ middleware.OwnedCommand = UpdateReviewRatingCommand{}
var _ middleware.OwnedCommand = UpdateReviewCommentCommand{}
