package usecases

import (
	"context"
	"fmt"
	"time"

	"custodia/internal/domain/access"
	"custodia/internal/shared/logger"
)

// EntryLogView is the read-side projection of a gate passage.
type EntryLogView struct {
	ID                uint   `json:"id"`
	SubjectKind       string `json:"subject_kind"`
	SubjectExternalID string `json:"subject_external_id"`
	Direction         string `json:"direction"`
	OccurredAt        string `json:"occurred_at"`
	LedgerStatus      string `json:"ledger_status"`
}

// ListEntryLogsCommand represents the input for listing entry logs.
type ListEntryLogsCommand struct {
	SubjectKind       string
	SubjectExternalID string
	Page              int
	PageSize          int
}

// ListEntryLogsUseCase lists gate passages.
type ListEntryLogsUseCase struct {
	entryLogs access.EntryLogRepository
	logger    logger.Interface
}

func NewListEntryLogsUseCase(entryLogs access.EntryLogRepository, log logger.Interface) *ListEntryLogsUseCase {
	return &ListEntryLogsUseCase{entryLogs: entryLogs, logger: log}
}

// Execute lists entry logs.
func (uc *ListEntryLogsUseCase) Execute(ctx context.Context, cmd ListEntryLogsCommand) ([]EntryLogView, int64, error) {
	if cmd.Page < 1 {
		cmd.Page = 1
	}
	if cmd.PageSize < 1 || cmd.PageSize > 100 {
		cmd.PageSize = 50
	}

	list, total, err := uc.entryLogs.List(ctx, access.EntryLogFilter{
		SubjectKind:       access.SubjectKind(cmd.SubjectKind),
		SubjectExternalID: cmd.SubjectExternalID,
		Page:              cmd.Page,
		PageSize:          cmd.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list entry logs: %w", err)
	}

	views := make([]EntryLogView, 0, len(list))
	for _, entry := range list {
		views = append(views, EntryLogView{
			ID:                entry.ID(),
			SubjectKind:       string(entry.Subject().Kind()),
			SubjectExternalID: entry.Subject().ExternalID(),
			Direction:         entry.Direction(),
			OccurredAt:        entry.OccurredAt().Format(time.RFC3339),
			LedgerStatus:      entry.LedgerStatus(),
		})
	}
	return views, total, nil
}
