package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	queueUsecase "github.com/allisson/courier-sync/internal/queue/usecase"
)

// RunCleanExpired purges expired records from the sync queue. Supports
// dry-run mode to preview the removal count and both text/JSON output formats.
//
// Requirements: Database must be migrated and accessible.
func RunCleanExpired(
	ctx context.Context,
	queueUseCase queueUsecase.QueueUseCase,
	logger *slog.Logger,
	out io.Writer,
	dryRun bool,
	format string,
) error {
	logger.Info("cleaning expired queue records", slog.Bool("dry_run", dryRun))

	count, err := queueUseCase.CleanupExpired(ctx, dryRun)
	if err != nil {
		return fmt.Errorf("failed to clean expired queue records: %w", err)
	}

	if format == "json" {
		outputCleanExpiredJSON(out, count, dryRun)
	} else {
		outputCleanExpiredText(out, count, dryRun)
	}

	logger.Info("cleanup completed",
		slog.Int64("count", count),
		slog.Bool("dry_run", dryRun),
	)

	return nil
}

// outputCleanExpiredText outputs the result in human-readable text format.
func outputCleanExpiredText(out io.Writer, count int64, dryRun bool) {
	if dryRun {
		fmt.Fprintf(out, "Dry-run mode: Would remove %d expired record(s)\n", count)
	} else {
		fmt.Fprintf(out, "Successfully removed %d expired record(s)\n", count)
	}
}

// outputCleanExpiredJSON outputs the result in JSON format for machine consumption.
func outputCleanExpiredJSON(out io.Writer, count int64, dryRun bool) {
	result := map[string]interface{}{
		"count":   count,
		"dry_run": dryRun,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(out, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Fprintln(out, string(jsonBytes))
}
