package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	queueUsecase "github.com/allisson/courier-sync/internal/queue/usecase"
)

// RunRetryFailed returns failed queue records to the pending set so the next
// drain picks them up again. With id > 0 a single record is retried;
// otherwise every failed record is.
//
// Requirements: Database must be migrated and accessible.
func RunRetryFailed(
	ctx context.Context,
	queueUseCase queueUsecase.QueueUseCase,
	logger *slog.Logger,
	out io.Writer,
	id int64,
	format string,
) error {
	if id > 0 {
		logger.Info("retrying failed queue record", slog.Int64("id", id))

		if err := queueUseCase.RetryFailed(ctx, id); err != nil {
			return fmt.Errorf("failed to retry queue record %d: %w", id, err)
		}

		outputRetry(out, 1, format)
		return nil
	}

	logger.Info("retrying all failed queue records")

	count, err := queueUseCase.RetryAllFailed(ctx)
	if err != nil {
		return fmt.Errorf("failed to retry queue records: %w", err)
	}

	outputRetry(out, count, format)

	logger.Info("retry completed", slog.Int64("count", count))
	return nil
}

// outputRetry outputs the retried count in the requested format.
func outputRetry(out io.Writer, count int64, format string) {
	if format == "json" {
		result := map[string]interface{}{"retried": count}

		jsonBytes, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Fprintf(out, "failed to marshal JSON: %v\n", err)
			return
		}

		fmt.Fprintln(out, string(jsonBytes))
		return
	}

	fmt.Fprintf(out, "Returned %d record(s) to the pending queue\n", count)
}
