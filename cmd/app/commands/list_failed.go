package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	queueDomain "github.com/allisson/courier-sync/internal/queue/domain"
	queueUsecase "github.com/allisson/courier-sync/internal/queue/usecase"
)

// RunListFailed prints failed queue records for operator inspection.
//
// Requirements: Database must be migrated and accessible.
func RunListFailed(
	ctx context.Context,
	queueUseCase queueUsecase.QueueUseCase,
	logger *slog.Logger,
	out io.Writer,
	offset, limit int,
	format string,
) error {
	if offset < 0 || limit <= 0 {
		return fmt.Errorf("invalid pagination: offset=%d limit=%d", offset, limit)
	}

	records, err := queueUseCase.ListFailed(ctx, offset, limit)
	if err != nil {
		return fmt.Errorf("failed to list failed queue records: %w", err)
	}

	if format == "json" {
		outputFailedJSON(out, records)
	} else {
		outputFailedText(out, records)
	}

	logger.Info("listed failed queue records", slog.Int("count", len(records)))
	return nil
}

// outputFailedText outputs the records in human-readable text format.
func outputFailedText(out io.Writer, records []*queueDomain.QueueRecord) {
	if len(records) == 0 {
		fmt.Fprintln(out, "No failed records")
		return
	}

	for _, record := range records {
		lastError := ""
		if record.LastError != nil {
			lastError = *record.LastError
		}
		fmt.Fprintf(out, "id=%d entity=%s/%s operation=%s priority=%s retries=%d last_error=%q\n",
			record.ID, record.EntityType, record.EntityID, record.Operation,
			record.Priority, record.RetryCount, lastError)
	}
}

// outputFailedJSON outputs the records in JSON format for machine consumption.
func outputFailedJSON(out io.Writer, records []*queueDomain.QueueRecord) {
	jsonBytes, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		fmt.Fprintf(out, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Fprintln(out, string(jsonBytes))
}
