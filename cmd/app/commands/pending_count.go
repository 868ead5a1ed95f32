package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	queueUsecase "github.com/allisson/courier-sync/internal/queue/usecase"
)

// RunPendingCount prints the number of records waiting for replay.
//
// Requirements: Database must be migrated and accessible.
func RunPendingCount(
	ctx context.Context,
	queueUseCase queueUsecase.QueueUseCase,
	logger *slog.Logger,
	out io.Writer,
	format string,
) error {
	count, err := queueUseCase.PendingCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to count pending queue records: %w", err)
	}

	if format == "json" {
		result := map[string]interface{}{"pending_count": count}

		jsonBytes, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Fprintf(out, "failed to marshal JSON: %v\n", err)
			return nil
		}

		fmt.Fprintln(out, string(jsonBytes))
	} else {
		fmt.Fprintf(out, "%d record(s) pending sync\n", count)
	}

	logger.Debug("pending count reported", slog.Int("count", count))
	return nil
}
