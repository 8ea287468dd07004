package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodia/internal/application/ledger"
	residentuc "custodia/internal/application/resident/usecases"
	scanneruc "custodia/internal/application/scanner/usecases"
	visitrequestuc "custodia/internal/application/visitrequest/usecases"
	"custodia/internal/domain/access"
	"custodia/internal/domain/visitrequest"
	"custodia/internal/shared/config"
	shareddb "custodia/internal/shared/db"
	"custodia/internal/shared/errors"
)

// scriptedGateway is an in-memory ledger double for flow tests. It replays
// the state written by AddVisitRequest and UpdateVisitRequestStatus back
// through GetVisitRequest, the way the chaincode does.
type scriptedGateway struct {
	requests map[string]ledger.Record
	invokes  []ledger.Call
	queries  []ledger.Call
}

func newScriptedGateway() *scriptedGateway {
	return &scriptedGateway{requests: make(map[string]ledger.Record)}
}

func (g *scriptedGateway) Invoke(ctx context.Context, call ledger.Call) (ledger.Receipt, error) {
	g.invokes = append(g.invokes, call)
	switch call.Function {
	case ledger.FnAddVisitRequest:
		g.requests[call.Args[0]] = ledger.Record{
			"id":            call.Args[0],
			"status":        visitrequest.StatusPending,
			"visitTimeFrom": call.Args[8],
			"visitTimeTo":   call.Args[9],
			"visitDate":     call.Args[10],
		}
	case ledger.FnUpdateVisitRequestStatus:
		if rec, ok := g.requests[call.Args[0]]; ok {
			rec["status"] = call.Args[1]
		}
	}
	return ledger.Receipt{TxID: "tx"}, nil
}

func (g *scriptedGateway) Query(ctx context.Context, call ledger.Call) (ledger.Record, error) {
	g.queries = append(g.queries, call)
	if call.Function == ledger.FnGetVisitRequest {
		if rec, ok := g.requests[call.Args[0]]; ok {
			return rec, nil
		}
	}
	return ledger.Record{}, nil
}

func (g *scriptedGateway) RegisterIdentity(ctx context.Context, identity, org, role string, admin string) (ledger.Credential, error) {
	return ledger.Credential{Identity: identity, Org: org}, nil
}

func (g *scriptedGateway) IsRegistered(ctx context.Context, identity, org string) (bool, error) {
	return true, nil
}

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

type memoryQR struct{}

func (memoryQR) Generate(category, token string) (string, error) {
	return category + "/" + token + ".png", nil
}

func (memoryQR) Remove(category, token string) error { return nil }

type noopEnroller struct{}

func (noopEnroller) EnsureResident(ctx context.Context, externalID string) error { return nil }

type recordingNotifier struct {
	notified []string
}

func (n *recordingNotifier) NotifyDecision(ctx context.Context, req *visitrequest.VisitRequest) error {
	n.notified = append(n.notified, req.ExternalID())
	return nil
}

func flowLedgerConfig() *config.LedgerConfig {
	return &config.LedgerConfig{
		Channel:       "residentschannel",
		Chaincode:     "residentManagement",
		ResidentOrg:   "Org1",
		AdminOrg:      "Org2",
		AdminIdentity: "admin2",
	}
}

// TestEntryFlow_AcceptedRequestAdmitsVisitor drives the full chain against
// real repositories: a resident registers, opens a one-time visit request
// for today's 09:00-11:00 window, accepts it, and the gate admits the
// request token at 10:00 with exactly one entry log row for it.
func TestEntryFlow_AcceptedRequestAdmitsVisitor(t *testing.T) {
	db := setupTestDB(t)
	log := testLogger()
	ctx := context.Background()

	users := NewUserRepository(db, log)
	residents := NewResidentRepository(db, log)
	visitors := NewVisitorRepository(db, log)
	requests := NewVisitRequestRepository(db, log)
	entryLogs := NewEntryLogRepository(db, log)

	gw := newScriptedGateway()
	calls := ledger.NewCallBuilder("residentschannel", "residentManagement")
	ledgerCfg := flowLedgerConfig()
	buildingCfg := &config.BuildingConfig{ResidentsPerApartment: 4, MaxVisitorsPerResident: 5}

	register := residentuc.NewRegisterResidentUseCase(
		residents, users, gw, calls,
		noopEnroller{}, plainHasher{}, memoryQR{},
		shareddb.NewTransactionManager(db),
		ledgerCfg, buildingCfg, log,
	)
	regOut, err := register.Execute(ctx, residentuc.RegisterResidentCommand{
		Name:          "Alice Moreau",
		Email:         "alice.moreau@example.com",
		Phone:         "+15550001111",
		Password:      "s3cretpass",
		Gender:        "female",
		MaritalStatus: "single",
		ResidentType:  "owner",
		Apartment:     "12B",
	})
	require.NoError(t, err)

	acct, err := users.GetByEmail(ctx, "alice.moreau@example.com")
	require.NoError(t, err)
	require.NotNil(t, acct)

	create := visitrequestuc.NewCreateVisitRequestUseCase(requests, residents, gw, calls, ledgerCfg, log)
	createOut, err := create.Execute(ctx, visitrequestuc.CreateVisitRequestCommand{
		CreatedByUserID:    acct.ID(),
		ResidentExternalID: regOut.ExternalID,
		VisitorName:        "Victor Ramos",
		VisitorPhone:       "+15552223333",
		VisitType:          "guest",
		VisitPurpose:       "visit",
		VisitTimeFrom:      "09:00",
		VisitTimeTo:        "11:00",
		VisitDate:          "2026-03-14",
	})
	require.NoError(t, err)
	assert.Equal(t, visitrequest.StatusPending, createOut.Status)

	notifier := &recordingNotifier{}
	decide := visitrequestuc.NewDecideVisitRequestUseCase(requests, gw, calls, memoryQR{}, notifier, ledgerCfg, log)
	decideOut, err := decide.Execute(ctx, visitrequestuc.DecideVisitRequestCommand{
		ExternalID:      createOut.ExternalID,
		Status:          visitrequest.StatusAccepted,
		DecidedByUserID: acct.ID(),
	})
	require.NoError(t, err)
	assert.Equal(t, visitrequest.StatusAccepted, decideOut.Status)
	assert.NotEmpty(t, decideOut.QRImage)
	assert.Equal(t, []string{createOut.ExternalID}, notifier.notified)

	gateClock := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	verify := scanneruc.NewVerifyEntryUseCase(
		residents, visitors, requests, entryLogs, gw, calls, ledgerCfg, log,
	).WithClock(func() time.Time { return gateClock })

	out, err := verify.Execute(ctx, scanneruc.VerifyEntryCommand{
		Token:     createOut.ExternalID,
		Direction: access.DirectionEnter,
	})
	require.NoError(t, err)
	assert.Equal(t, string(access.KindVisitRequest), out.SubjectKind)
	assert.Equal(t, createOut.ExternalID, out.SubjectExternalID)
	assert.Equal(t, access.DirectionEnter, out.Direction)
	assert.Equal(t, "Victor Ramos", out.DisplayName)
	assert.Equal(t, access.LedgerStatusConfirmed, out.LedgerStatus)

	rows, total, err := entryLogs.List(ctx, access.EntryLogFilter{SubjectExternalID: createOut.ExternalID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, createOut.ExternalID, rows[0].Subject().ExternalID())
	assert.Equal(t, access.DirectionEnter, rows[0].Direction())
	assert.Equal(t, access.LedgerStatusConfirmed, rows[0].LedgerStatus())

	mirror := gw.invokes[len(gw.invokes)-1]
	assert.Equal(t, ledger.FnSaveLogToChain, mirror.Function)
	assert.Equal(t, createOut.ExternalID, mirror.Args[0])

	// Outside the window the same token is refused and no second row lands.
	verify.WithClock(func() time.Time {
		return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	})
	_, err = verify.Execute(ctx, scanneruc.VerifyEntryCommand{
		Token:     createOut.ExternalID,
		Direction: access.DirectionEnter,
	})
	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 403, appErr.Code)

	rows, total, err = entryLogs.List(ctx, access.EntryLogFilter{SubjectExternalID: createOut.ExternalID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
}
