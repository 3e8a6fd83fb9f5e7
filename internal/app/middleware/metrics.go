package middleware

import (
	"context"
	"log/slog"
	"time"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/policies"
	"rentbook/internal/domain/shared/apperr"
)

const outcomeOK = "ok"

// Outcome labels a command result: "ok" or the error kind.
func Outcome(err error) string {
	if err == nil {
		return outcomeOK
	}
	return string(apperr.KindOf(err))
}

// Instrument reports every command outcome to the recorder and logs
// failures at a level matching their kind.
func Instrument(recorder policies.Recorder, logger *slog.Logger) CommandMiddleware {
	if recorder == nil {
		recorder = policies.NopRecorder{}
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			started := time.Now()
			res, err := nextFn(ctx, cmd)
			outcome := Outcome(err)
			recorder.CommandHandled(cmd.Key(), outcome)
			if err != nil && logger != nil {
				level := slog.LevelInfo
				if outcome == string(apperr.KindInternal) {
					level = slog.LevelError
				}
				logger.Log(ctx, level, "command failed",
					"command", cmd.Key(),
					"kind", outcome,
					"duration", time.Since(started),
					"error", err,
				)
			}
			return res, err
		})
	}
}
