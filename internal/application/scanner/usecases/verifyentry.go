package usecases

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"custodia/internal/application/ledger"
	"custodia/internal/domain/access"
	"custodia/internal/domain/resident"
	"custodia/internal/domain/visitor"
	"custodia/internal/domain/visitrequest"
	"custodia/internal/shared/biztime"
	"custodia/internal/shared/config"
	"custodia/internal/shared/errors"
	"custodia/internal/shared/logger"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// VerifyEntryCommand represents a scanned token at the gate.
type VerifyEntryCommand struct {
	Token     string
	Direction string
}

// VerifyEntryResult represents the admit decision.
type VerifyEntryResult struct {
	SubjectKind       string `json:"subject_kind"`
	SubjectExternalID string `json:"subject_external_id"`
	Direction         string `json:"direction"`
	DisplayName       string `json:"display_name,omitempty"`
	Apartment         string `json:"apartment,omitempty"`
	LedgerStatus      string `json:"ledger_status"`
	Message           string `json:"message"`
}

// VerifyEntryUseCase is the gate-side verification machine. The token's
// prefix selects the subject kind; the ledger record is the authority for
// blocked flags and admission windows; local metadata must exist for the
// passage to be recorded. Once admitted, the entry log row is the source of
// truth and mirroring it to the ledger is best-effort: a mirror failure
// annotates the row and never revokes the admit.
type VerifyEntryUseCase struct {
	residents resident.Repository
	visitors  visitor.Repository
	requests  visitrequest.Repository
	entryLogs access.EntryLogRepository
	gateway   ledger.Gateway
	calls     ledger.CallBuilder
	ledgerCfg *config.LedgerConfig
	logger    logger.Interface

	// now is injectable for window boundary tests.
	now func() time.Time
}

func NewVerifyEntryUseCase(
	residents resident.Repository,
	visitors visitor.Repository,
	requests visitrequest.Repository,
	entryLogs access.EntryLogRepository,
	gateway ledger.Gateway,
	calls ledger.CallBuilder,
	ledgerCfg *config.LedgerConfig,
	log logger.Interface,
) *VerifyEntryUseCase {
	return &VerifyEntryUseCase{
		residents: residents,
		visitors:  visitors,
		requests:  requests,
		entryLogs: entryLogs,
		gateway:   gateway,
		calls:     calls,
		ledgerCfg: ledgerCfg,
		logger:    log,
		now:       biztime.Now,
	}
}

// WithClock overrides the time source.
func (uc *VerifyEntryUseCase) WithClock(now func() time.Time) *VerifyEntryUseCase {
	uc.now = now
	return uc
}

// Execute verifies a scanned token and records the passage when admitted.
func (uc *VerifyEntryUseCase) Execute(ctx context.Context, cmd VerifyEntryCommand) (*VerifyEntryResult, error) {
	if cmd.Token == "" {
		return nil, errors.NewBadRequestError("no QR data provided")
	}
	direction := cmd.Direction
	if direction == "" {
		direction = access.DirectionEnter
	}
	if direction != access.DirectionEnter && direction != access.DirectionLeave {
		return nil, errors.NewValidationError("invalid direction", direction)
	}

	subject, err := access.ClassifyToken(cmd.Token)
	if err != nil {
		return nil, errors.NewBadRequestError("invalid QR code format")
	}

	uc.logger.Infow("verifying gate token",
		"kind", subject.Kind(),
		"token", cmd.Token,
		"direction", direction,
	)

	switch subject.Kind() {
	case access.KindResident:
		return uc.verifyResident(ctx, subject, direction)
	case access.KindVisitor:
		return uc.verifyVisitor(ctx, subject, direction)
	case access.KindVisitRequest:
		return uc.verifyRequest(ctx, subject, direction)
	default:
		return nil, errors.NewBadRequestError("invalid QR code format")
	}
}

func (uc *VerifyEntryUseCase) verifyResident(ctx context.Context, subject access.Subject, direction string) (*VerifyEntryResult, error) {
	rec, err := uc.queryLedger(ctx, ledger.FnGetResident, subject.ExternalID())
	if err != nil {
		return nil, err
	}

	if blocked, _ := rec.Bool("isBlocked", "IsBlocked"); blocked {
		return nil, errors.NewForbiddenError("access denied, resident is blocked")
	}

	res, err := uc.residents.GetByExternalID(ctx, subject.ExternalID())
	if err != nil {
		return nil, fmt.Errorf("failed to get resident metadata: %w", err)
	}
	if res == nil {
		return nil, errors.NewNotFoundError("resident metadata not found", subject.ExternalID())
	}

	ledgerStatus, err := uc.recordPassage(ctx, subject, direction)
	if err != nil {
		return nil, err
	}

	return &VerifyEntryResult{
		SubjectKind:       string(subject.Kind()),
		SubjectExternalID: subject.ExternalID(),
		Direction:         direction,
		DisplayName:       res.Name(),
		Apartment:         res.Apartment(),
		LedgerStatus:      ledgerStatus,
		Message:           "resident " + directionMessage(direction),
	}, nil
}

func (uc *VerifyEntryUseCase) verifyVisitor(ctx context.Context, subject access.Subject, direction string) (*VerifyEntryResult, error) {
	// Local metadata first: it supplies the owning resident, which the
	// ledger query is keyed by.
	vis, err := uc.visitors.GetByExternalID(ctx, subject.ExternalID())
	if err != nil {
		return nil, fmt.Errorf("failed to get visitor metadata: %w", err)
	}
	if vis == nil {
		return nil, errors.NewNotFoundError("visitor not found", subject.ExternalID())
	}

	rec, err := uc.queryLedger(ctx, ledger.FnGetVisitor, vis.ResidentExternalID(), subject.ExternalID())
	if err != nil {
		return nil, err
	}

	if uc.visitorBlocked(rec) {
		return nil, errors.NewForbiddenError("access denied, visitor is blocked")
	}

	from, ok := rec.Str("visitTimeFrom", "VisitTimeFrom")
	if !ok {
		return nil, errors.NewLedgerUnavailableError("malformed visitor record", "missing visit window start")
	}
	to, ok := rec.Str("visitTimeTo", "VisitTimeTo")
	if !ok {
		return nil, errors.NewLedgerUnavailableError("malformed visitor record", "missing visit window end")
	}

	now := biztime.In(uc.now())
	if err := uc.checkWindow(now, now.Format(dateLayout), from, to); err != nil {
		return nil, err
	}

	ledgerStatus, err := uc.recordPassage(ctx, subject, direction)
	if err != nil {
		return nil, err
	}

	return &VerifyEntryResult{
		SubjectKind:       string(subject.Kind()),
		SubjectExternalID: subject.ExternalID(),
		Direction:         direction,
		DisplayName:       vis.FullName(),
		LedgerStatus:      ledgerStatus,
		Message:           "visitor " + directionMessage(direction),
	}, nil
}

func (uc *VerifyEntryUseCase) verifyRequest(ctx context.Context, subject access.Subject, direction string) (*VerifyEntryResult, error) {
	rec, err := uc.queryLedger(ctx, ledger.FnGetVisitRequest, subject.ExternalID())
	if err != nil {
		return nil, err
	}

	if status, _ := rec.Str("status", "Status"); status != visitrequest.StatusAccepted {
		return nil, errors.NewForbiddenError("visit request is not accepted")
	}

	visitDate, ok := rec.Str("visitDate", "VisitDate")
	if !ok {
		return nil, errors.NewLedgerUnavailableError("malformed visit request record", "missing visit date")
	}
	from, ok := rec.Str("visitTimeFrom", "VisitTimeFrom")
	if !ok {
		return nil, errors.NewLedgerUnavailableError("malformed visit request record", "missing visit window start")
	}
	to, ok := rec.Str("visitTimeTo", "VisitTimeTo")
	if !ok {
		return nil, errors.NewLedgerUnavailableError("malformed visit request record", "missing visit window end")
	}

	now := biztime.In(uc.now())
	if err := uc.checkWindow(now, visitDate, from, to); err != nil {
		return nil, err
	}

	req, err := uc.requests.GetByExternalID(ctx, subject.ExternalID())
	if err != nil {
		return nil, fmt.Errorf("failed to get visit request metadata: %w", err)
	}
	if req == nil {
		return nil, errors.NewNotFoundError("visit request not found", subject.ExternalID())
	}

	ledgerStatus, err := uc.recordPassage(ctx, subject, direction)
	if err != nil {
		return nil, err
	}

	return &VerifyEntryResult{
		SubjectKind:       string(subject.Kind()),
		SubjectExternalID: subject.ExternalID(),
		Direction:         direction,
		DisplayName:       req.VisitorName(),
		LedgerStatus:      ledgerStatus,
		Message:           "visitor " + directionMessage(direction),
	}, nil
}

// queryLedger runs a read under the gate's admin identity.
func (uc *VerifyEntryUseCase) queryLedger(ctx context.Context, fn string, args ...string) (ledger.Record, error) {
	call := uc.calls.Call(fn, uc.ledgerCfg.AdminIdentity, uc.ledgerCfg.AdminOrg, args...)
	rec, err := uc.gateway.Query(ctx, call)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// visitorBlocked reads the block flag from the ledger visitor record. Some
// chaincode versions nest the visitor under a wrapper object.
func (uc *VerifyEntryUseCase) visitorBlocked(rec ledger.Record) bool {
	if nested, ok := rec.Nested("visitor", "Visitor"); ok {
		if status, ok := nested.Str("status", "Status"); ok {
			return status == "Blocked"
		}
	}
	if status, ok := rec.Str("status", "Status"); ok {
		return status == "Blocked"
	}
	return false
}

// checkWindow rejects a passage outside [from, to] on the given date. Both
// bounds are inclusive.
func (uc *VerifyEntryUseCase) checkWindow(now time.Time, date, from, to string) error {
	loc := biztime.Location()
	start, err := time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+from, loc)
	if err != nil {
		return errors.NewLedgerUnavailableError("malformed admission window", err.Error())
	}
	end, err := time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+to, loc)
	if err != nil {
		return errors.NewLedgerUnavailableError("malformed admission window", err.Error())
	}

	if now.Before(start) || now.After(end) {
		return errors.NewForbiddenError(
			"access not allowed at this time",
			fmt.Sprintf("allowed between %s and %s", start.Format(time.RFC3339), end.Format(time.RFC3339)),
		)
	}
	return nil
}

// recordPassage appends the local entry log, then mirrors it to the ledger.
// The mirror is best-effort: a failure annotates the row and the admit
// stands.
func (uc *VerifyEntryUseCase) recordPassage(ctx context.Context, subject access.Subject, direction string) (string, error) {
	now := uc.now()
	entry, err := access.NewEntryLog(subject, direction, now)
	if err != nil {
		return "", fmt.Errorf("failed to build entry log: %w", err)
	}
	if err := uc.entryLogs.Save(ctx, entry); err != nil {
		return "", fmt.Errorf("failed to save entry log: %w", err)
	}

	call := uc.calls.Call(
		ledger.FnSaveLogToChain, uc.ledgerCfg.AdminIdentity, uc.ledgerCfg.AdminOrg,
		subject.ExternalID(),
		direction,
		strconv.FormatInt(now.Unix(), 10),
	)
	if _, err := uc.gateway.Invoke(ctx, call); err != nil {
		uc.logger.Warnw("best-effort ledger mirror failed, annotating entry log",
			"subject", subject.String(),
			"entry_log_id", entry.ID(),
			"error", err,
		)
		entry.MarkLedgerFailed()
		if updErr := uc.entryLogs.UpdateLedgerStatus(ctx, entry.ID(), access.LedgerStatusFailed); updErr != nil {
			uc.logger.Errorw("failed to annotate entry log", "entry_log_id", entry.ID(), "error", updErr)
		}
		return access.LedgerStatusFailed, nil
	}
	return access.LedgerStatusConfirmed, nil
}

func directionMessage(direction string) string {
	if direction == access.DirectionLeave {
		return "left successfully"
	}
	return "entered successfully"
}
