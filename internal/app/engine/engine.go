// Package engine assembles the booking, payment and review handlers behind
// the command and query buses.
package engine

import (
	"log/slog"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/dto"
	"rentbook/internal/app/handlers/availability"
	"rentbook/internal/app/handlers/booking"
	"rentbook/internal/app/handlers/payments"
	"rentbook/internal/app/handlers/reviews"
	handlersupport "rentbook/internal/app/handlers/support"
	"rentbook/internal/app/middleware"
	"rentbook/internal/app/outbox"
	"rentbook/internal/app/policies"
	"rentbook/internal/app/queries"
	"rentbook/internal/app/uow"
)

type Deps struct {
	UoWFactory      uow.UoWFactory
	Locker          policies.Locker
	Outbox          outbox.Outbox
	Encoder         outbox.EventEncoder
	Idempotency     middleware.IdempotencyStore
	Validator       middleware.Validator
	Metrics         policies.Recorder
	Logger          *slog.Logger
	DefaultCurrency string
}

// Engine exposes the middleware-wrapped buses.
type Engine struct {
	Commands commands.Bus
	Queries  queries.Bus

	commandKeys []string
}

func New(deps Deps) *Engine {
	if deps.UoWFactory == nil {
		panic("engine: uow factory required")
	}
	if deps.Locker == nil {
		panic("engine: locker required")
	}
	if deps.Metrics == nil {
		deps.Metrics = policies.NopRecorder{}
	}
	logger := deps.Logger

	commandBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()

	createBooking := &booking.CreateBookingHandler{UoWFactory: deps.UoWFactory, Outbox: deps.Outbox, Encoder: deps.Encoder, Metrics: deps.Metrics, Logger: logger}
	commands.RegisterHandler(commandBus, booking.CreateBookingCommand{}.Key(), createBooking)
	updateBooking := &booking.UpdateBookingHandler{UoWFactory: deps.UoWFactory, Outbox: deps.Outbox, Encoder: deps.Encoder, Logger: logger}
	commands.RegisterHandler(commandBus, booking.UpdateBookingCommand{}.Key(), updateBooking)
	changeStatus := &booking.ChangeBookingStatusHandler{UoWFactory: deps.UoWFactory, Outbox: deps.Outbox, Encoder: deps.Encoder, Metrics: deps.Metrics, Logger: logger}
	commands.RegisterHandler(commandBus, booking.ChangeBookingStatusCommand{}.Key(), changeStatus)
	deleteBooking := &booking.DeleteBookingHandler{UoWFactory: deps.UoWFactory, Outbox: deps.Outbox, Encoder: deps.Encoder, Metrics: deps.Metrics, Logger: logger}
	commands.RegisterHandler(commandBus, booking.DeleteBookingCommand{}.Key(), deleteBooking)

	makePayment := &payments.MakePaymentHandler{UoWFactory: deps.UoWFactory, Outbox: deps.Outbox, Encoder: deps.Encoder, Metrics: deps.Metrics, Logger: logger}
	commands.RegisterHandler(commandBus, payments.MakePaymentCommand{}.Key(), makePayment)
	updatePayment := &payments.UpdatePaymentHandler{UoWFactory: deps.UoWFactory, Outbox: deps.Outbox, Encoder: deps.Encoder, Logger: logger}
	commands.RegisterHandler(commandBus, payments.UpdatePaymentCommand{}.Key(), updatePayment)
	commands.RegisterHandler(commandBus, payments.UpdatePaymentStatusCommand{}.Key(),
		commands.HandlerFunc[payments.UpdatePaymentStatusCommand, dto.Payment](updatePayment.HandleStatus))
	commands.RegisterHandler(commandBus, payments.UpdatePaymentMethodCommand{}.Key(),
		commands.HandlerFunc[payments.UpdatePaymentMethodCommand, dto.Payment](updatePayment.HandleMethod))
	deletePayment := &payments.DeletePaymentHandler{UoWFactory: deps.UoWFactory, Logger: logger}
	commands.RegisterHandler(commandBus, payments.DeletePaymentCommand{}.Key(), deletePayment)

	createReview := &reviews.CreateReviewHandler{UoWFactory: deps.UoWFactory, Outbox: deps.Outbox, Encoder: deps.Encoder, Metrics: deps.Metrics, Logger: logger}
	commands.RegisterHandler(commandBus, reviews.CreateReviewCommand{}.Key(), createReview)
	updateReview := &reviews.UpdateReviewHandler{UoWFactory: deps.UoWFactory, Outbox: deps.Outbox, Encoder: deps.Encoder, Logger: logger}
	commands.RegisterHandler(commandBus, reviews.UpdateReviewCommand{}.Key(), updateReview)
	commands.RegisterHandler(commandBus, reviews.UpdateReviewRatingCommand{}.Key(),
		commands.HandlerFunc[reviews.UpdateReviewRatingCommand, dto.Review](updateReview.HandleRating))
	commands.RegisterHandler(commandBus, reviews.UpdateReviewCommentCommand{}.Key(),
		commands.HandlerFunc[reviews.UpdateReviewCommentCommand, dto.Review](updateReview.HandleComment))
	deleteReview := &reviews.DeleteReviewHandler{UoWFactory: deps.UoWFactory, Outbox: deps.Outbox, Encoder: deps.Encoder, Logger: logger}
	commands.RegisterHandler(commandBus, reviews.DeleteReviewCommand{}.Key(), deleteReview)

	queries.RegisterHandler(queryBus, booking.GetBookingQuery{}.Key(), &booking.GetBookingHandler{UoWFactory: deps.UoWFactory})
	queries.RegisterHandler(queryBus, booking.IsBookingOwnerQuery{}.Key(), &booking.IsBookingOwnerHandler{UoWFactory: deps.UoWFactory})
	queries.RegisterHandler(queryBus, booking.ListUserBookingsQuery{}.Key(), &booking.ListUserBookingsHandler{UoWFactory: deps.UoWFactory, Logger: logger})
	queries.RegisterHandler(queryBus, booking.ListPropertyBookingsQuery{}.Key(), &booking.ListPropertyBookingsHandler{UoWFactory: deps.UoWFactory, Logger: logger})
	queries.RegisterHandler(queryBus, payments.GetPaymentQuery{}.Key(), &payments.GetPaymentHandler{UoWFactory: deps.UoWFactory})
	queries.RegisterHandler(queryBus, payments.IsPaymentOwnerQuery{}.Key(), &payments.IsPaymentOwnerHandler{UoWFactory: deps.UoWFactory})
	totals := &payments.TotalsHandler{UoWFactory: deps.UoWFactory, DefaultCurrency: deps.DefaultCurrency}
	queries.RegisterHandler(queryBus, payments.TotalPaidForPropertyQuery{}.Key(), totals)
	queries.RegisterHandler(queryBus, payments.TotalPaidByUserQuery{}.Key(),
		queries.HandlerFunc[payments.TotalPaidByUserQuery, dto.PaymentTotal](totals.HandleUser))
	queries.RegisterHandler(queryBus, reviews.GetReviewQuery{}.Key(), &reviews.GetReviewHandler{UoWFactory: deps.UoWFactory})
	queries.RegisterHandler(queryBus, reviews.IsReviewOwnerQuery{}.Key(), &reviews.IsReviewOwnerHandler{UoWFactory: deps.UoWFactory})
	queries.RegisterHandler(queryBus, availability.GetCalendarQuery{}.Key(), &availability.GetCalendarHandler{UoWFactory: deps.UoWFactory})
	queries.RegisterHandler(queryBus, availability.CheckAvailabilityQuery{}.Key(), &availability.CheckAvailabilityHandler{UoWFactory: deps.UoWFactory})

	// Serialize must stay outside Transaction so locks outlive the commit.
	var validation middleware.CommandMiddleware
	var queryValidation middleware.QueryMiddleware
	if deps.Validator != nil {
		validation = middleware.Validation(deps.Validator)
		queryValidation = middleware.QueryValidation(deps.Validator)
	}
	var idempotency middleware.CommandMiddleware
	if deps.Idempotency != nil {
		idempotency = middleware.Idempotency(deps.Idempotency, nil)
	}
	var flush middleware.CommandMiddleware
	if deps.Outbox != nil {
		flush = middleware.OutboxFlush(deps.Outbox)
	}
	wrapped := middleware.ChainCommands(commandBus,
		middleware.Instrument(deps.Metrics, logger),
		validation,
		middleware.Ownership(handlersupport.OwnershipPolicy{UoWFactory: deps.UoWFactory}),
		middleware.Serialize(deps.Locker),
		idempotency,
		middleware.Transaction(deps.UoWFactory, nil),
		flush,
	)

	return &Engine{
		Commands:    wrapped,
		Queries:     middleware.ChainQueries(queryBus, queryValidation),
		commandKeys: commandBus.Keys(),
	}
}

// CommandKeys lists the registered command keys.
func (e *Engine) CommandKeys() []string {
	return append([]string(nil), e.commandKeys...)
}
