package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	queueUsecase "github.com/allisson/courier-sync/internal/queue/usecase"
)

// RunDrain triggers one drain cycle of the sync queue, replaying pending
// mutations against the backend. Supports text and JSON output formats.
//
// Requirements: Database must be migrated and accessible, and the backend
// reachable for records to complete.
func RunDrain(
	ctx context.Context,
	queueUseCase queueUsecase.QueueUseCase,
	logger *slog.Logger,
	out io.Writer,
	format string,
) error {
	logger.Info("draining sync queue")

	result, err := queueUseCase.Drain(ctx)
	if err != nil {
		return fmt.Errorf("failed to drain sync queue: %w", err)
	}

	if format == "json" {
		outputDrainJSON(out, result)
	} else {
		outputDrainText(out, result)
	}

	logger.Info("drain completed",
		slog.Int("completed", result.Completed),
		slog.Int("failed", result.Failed),
		slog.Int("expired", result.Expired),
		slog.Bool("skipped", result.Skipped),
	)

	return nil
}

// outputDrainText outputs the result in human-readable text format.
func outputDrainText(out io.Writer, result *queueUsecase.DrainResult) {
	if result.Skipped {
		fmt.Fprintln(out, "Drain skipped: another drain is already in progress")
		return
	}
	fmt.Fprintf(out, "Drain completed: %d replayed, %d failed, %d expired\n",
		result.Completed, result.Failed, result.Expired)
}

// outputDrainJSON outputs the result in JSON format for machine consumption.
func outputDrainJSON(out io.Writer, result *queueUsecase.DrainResult) {
	payload := map[string]interface{}{
		"completed": result.Completed,
		"failed":    result.Failed,
		"expired":   result.Expired,
		"skipped":   result.Skipped,
	}

	jsonBytes, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		fmt.Fprintf(out, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Fprintln(out, string(jsonBytes))
}
