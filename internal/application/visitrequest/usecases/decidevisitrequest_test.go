package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodia/internal/application/ledger"
	"custodia/internal/domain/resident"
	"custodia/internal/domain/visitrequest"
	"custodia/internal/shared/config"
	"custodia/internal/shared/errors"
	"custodia/internal/shared/logger"
)

type fakeGateway struct {
	invokeFn func(ctx context.Context, call ledger.Call) (ledger.Receipt, error)
	invokes  []ledger.Call
}

func (f *fakeGateway) Invoke(ctx context.Context, call ledger.Call) (ledger.Receipt, error) {
	f.invokes = append(f.invokes, call)
	if f.invokeFn == nil {
		return ledger.Receipt{TxID: "tx"}, nil
	}
	return f.invokeFn(ctx, call)
}

func (f *fakeGateway) Query(ctx context.Context, call ledger.Call) (ledger.Record, error) {
	return ledger.Record{}, nil
}

func (f *fakeGateway) RegisterIdentity(ctx context.Context, identity, org, role string, admin string) (ledger.Credential, error) {
	return ledger.Credential{Identity: identity, Org: org}, nil
}

func (f *fakeGateway) IsRegistered(ctx context.Context, identity, org string) (bool, error) {
	return true, nil
}

type fakeRequestRepo struct {
	visitrequest.Repository
	nextID    uint
	byExtID   map[string]*visitrequest.VisitRequest
	updateErr error
	updated   []*visitrequest.VisitRequest
	deleted   []uint
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{byExtID: make(map[string]*visitrequest.VisitRequest)}
}

func (f *fakeRequestRepo) Save(ctx context.Context, req *visitrequest.VisitRequest) error {
	f.nextID++
	if err := req.SetID(f.nextID); err != nil {
		return err
	}
	f.byExtID[req.ExternalID()] = req
	return nil
}

func (f *fakeRequestRepo) Update(ctx context.Context, req *visitrequest.VisitRequest) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, req)
	f.byExtID[req.ExternalID()] = req
	return nil
}

func (f *fakeRequestRepo) Delete(ctx context.Context, id uint) error {
	for ext, req := range f.byExtID {
		if req.ID() == id {
			delete(f.byExtID, ext)
		}
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRequestRepo) GetByExternalID(ctx context.Context, externalID string) (*visitrequest.VisitRequest, error) {
	return f.byExtID[externalID], nil
}

type fakeResidentRepo struct {
	resident.Repository
	byExtID map[string]*resident.Resident
}

func (f *fakeResidentRepo) GetByExternalID(ctx context.Context, externalID string) (*resident.Resident, error) {
	return f.byExtID[externalID], nil
}

type fakeQR struct {
	generated []string
	removed   []string
}

func (f *fakeQR) Generate(category, token string) (string, error) {
	f.generated = append(f.generated, category+"/"+token)
	return token + ".png", nil
}

func (f *fakeQR) Remove(category, token string) error {
	f.removed = append(f.removed, category+"/"+token)
	return nil
}

type fakeNotifier struct {
	notified []*visitrequest.VisitRequest
	err      error
}

func (f *fakeNotifier) NotifyDecision(ctx context.Context, req *visitrequest.VisitRequest) error {
	if f.err != nil {
		return f.err
	}
	f.notified = append(f.notified, req)
	return nil
}

func testLedgerConfig() *config.LedgerConfig {
	return &config.LedgerConfig{
		Channel:       "residentschannel",
		Chaincode:     "residentManagement",
		ResidentOrg:   "Org1",
		AdminOrg:      "Org2",
		AdminIdentity: "admin2",
	}
}

func pendingRequest(t *testing.T, repo *fakeRequestRepo) *visitrequest.VisitRequest {
	t.Helper()
	req, err := visitrequest.NewVisitRequest(
		"REQ-ABCDEFGH23", 1, "RES-ABCDEFGH23",
		"Casey Guest", "+15557654321", "family", "visit", "",
		"10:00", "12:00", "2026-03-15",
	)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), req))
	return req
}

type decideFixture struct {
	uc       *DecideVisitRequestUseCase
	requests *fakeRequestRepo
	gateway  *fakeGateway
	qr       *fakeQR
	notifier *fakeNotifier
}

func newDecideFixture(t *testing.T) *decideFixture {
	t.Helper()
	f := &decideFixture{
		requests: newFakeRequestRepo(),
		gateway:  &fakeGateway{},
		qr:       &fakeQR{},
		notifier: &fakeNotifier{},
	}
	f.uc = NewDecideVisitRequestUseCase(
		f.requests,
		f.gateway,
		ledger.NewCallBuilder("residentschannel", "residentManagement"),
		f.qr,
		f.notifier,
		testLedgerConfig(),
		logger.NewLogger(),
	)
	return f
}

func TestDecideVisitRequest_Accept(t *testing.T) {
	f := newDecideFixture(t)
	pendingRequest(t, f.requests)

	result, err := f.uc.Execute(context.Background(), DecideVisitRequestCommand{
		ExternalID:      "REQ-ABCDEFGH23",
		Status:          visitrequest.StatusAccepted,
		DecidedByUserID: 9,
	})
	require.NoError(t, err)

	assert.Equal(t, visitrequest.StatusAccepted, result.Status)
	assert.Equal(t, "REQ-ABCDEFGH23.png", result.QRImage)

	stored := f.requests.byExtID["REQ-ABCDEFGH23"]
	assert.Equal(t, visitrequest.StatusAccepted, stored.Status())
	assert.Equal(t, "REQ-ABCDEFGH23", stored.QRData())
	assert.Len(t, f.notifier.notified, 1)

	// Ledger call runs under the target resident's identity.
	require.Len(t, f.gateway.invokes, 1)
	call := f.gateway.invokes[0]
	assert.Equal(t, ledger.FnUpdateVisitRequestStatus, call.Function)
	assert.Equal(t, "RES-ABCDEFGH23", call.Identity)
	assert.Equal(t, []string{"REQ-ABCDEFGH23", "accepted", "9"}, call.Args)
}

func TestDecideVisitRequest_RejectSkipsQR(t *testing.T) {
	f := newDecideFixture(t)
	pendingRequest(t, f.requests)

	result, err := f.uc.Execute(context.Background(), DecideVisitRequestCommand{
		ExternalID:      "REQ-ABCDEFGH23",
		Status:          visitrequest.StatusRejected,
		DecidedByUserID: 9,
	})
	require.NoError(t, err)
	assert.Equal(t, visitrequest.StatusRejected, result.Status)
	assert.Empty(t, result.QRImage)
	assert.Empty(t, f.qr.generated)
	assert.Len(t, f.notifier.notified, 1)
}

func TestDecideVisitRequest_InvalidStatus(t *testing.T) {
	f := newDecideFixture(t)
	pendingRequest(t, f.requests)

	_, err := f.uc.Execute(context.Background(), DecideVisitRequestCommand{
		ExternalID: "REQ-ABCDEFGH23",
		Status:     "maybe",
	})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Empty(t, f.gateway.invokes)
}

func TestDecideVisitRequest_NotFound(t *testing.T) {
	f := newDecideFixture(t)

	_, err := f.uc.Execute(context.Background(), DecideVisitRequestCommand{
		ExternalID: "REQ-ZZZZZZZZ99",
		Status:     visitrequest.StatusAccepted,
	})
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestDecideVisitRequest_AlreadyDecided(t *testing.T) {
	f := newDecideFixture(t)
	pendingRequest(t, f.requests)

	_, err := f.uc.Execute(context.Background(), DecideVisitRequestCommand{
		ExternalID:      "REQ-ABCDEFGH23",
		Status:          visitrequest.StatusAccepted,
		DecidedByUserID: 9,
	})
	require.NoError(t, err)

	_, err = f.uc.Execute(context.Background(), DecideVisitRequestCommand{
		ExternalID:      "REQ-ABCDEFGH23",
		Status:          visitrequest.StatusRejected,
		DecidedByUserID: 9,
	})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Len(t, f.gateway.invokes, 1)
}

func TestDecideVisitRequest_LedgerFirstAbortsLocalUpdate(t *testing.T) {
	f := newDecideFixture(t)
	pendingRequest(t, f.requests)
	f.gateway.invokeFn = func(ctx context.Context, call ledger.Call) (ledger.Receipt, error) {
		return ledger.Receipt{}, errors.NewLedgerUnavailableError("ledger is unreachable")
	}

	_, err := f.uc.Execute(context.Background(), DecideVisitRequestCommand{
		ExternalID:      "REQ-ABCDEFGH23",
		Status:          visitrequest.StatusAccepted,
		DecidedByUserID: 9,
	})
	require.Error(t, err)
	assert.True(t, errors.IsLedgerUnavailableError(err))

	// Nothing changed locally; the request can be retried.
	stored := f.requests.byExtID["REQ-ABCDEFGH23"]
	assert.Equal(t, visitrequest.StatusPending, stored.Status())
	assert.Empty(t, f.requests.updated)
	assert.Empty(t, f.qr.generated)
	assert.Empty(t, f.notifier.notified)
}

func TestDecideVisitRequest_LocalUpdateFailureIsPartialFailure(t *testing.T) {
	f := newDecideFixture(t)
	pendingRequest(t, f.requests)
	f.requests.updateErr = errors.NewInternalError("database gone")

	_, err := f.uc.Execute(context.Background(), DecideVisitRequestCommand{
		ExternalID:      "REQ-ABCDEFGH23",
		Status:          visitrequest.StatusAccepted,
		DecidedByUserID: 9,
	})
	require.Error(t, err)
	assert.True(t, errors.IsPartialFailureError(err))
	assert.Empty(t, f.notifier.notified)
}

func TestDecideVisitRequest_NotifierFailureDoesNotAffectDecision(t *testing.T) {
	f := newDecideFixture(t)
	pendingRequest(t, f.requests)
	f.notifier.err = errors.NewInternalError("smtp down")

	result, err := f.uc.Execute(context.Background(), DecideVisitRequestCommand{
		ExternalID:      "REQ-ABCDEFGH23",
		Status:          visitrequest.StatusAccepted,
		DecidedByUserID: 9,
	})
	require.NoError(t, err)
	assert.Equal(t, visitrequest.StatusAccepted, result.Status)
}

func TestCreateVisitRequest(t *testing.T) {
	residents := &fakeResidentRepo{byExtID: map[string]*resident.Resident{}}
	res, err := resident.ReconstructResident(
		1, "RES-ABCDEFGH23", 1,
		"Jordan Doe", "jordan@example.com", "+15551234567",
		"", "", resident.TypeOwner, "12B",
		time.Now(), time.Now(),
	)
	require.NoError(t, err)
	residents.byExtID["RES-ABCDEFGH23"] = res

	newUC := func(requests *fakeRequestRepo, gw *fakeGateway) *CreateVisitRequestUseCase {
		return NewCreateVisitRequestUseCase(
			requests,
			residents,
			gw,
			ledger.NewCallBuilder("residentschannel", "residentManagement"),
			testLedgerConfig(),
			logger.NewLogger(),
		)
	}

	cmd := CreateVisitRequestCommand{
		CreatedByUserID:    1,
		ResidentExternalID: "RES-ABCDEFGH23",
		VisitorName:        "Casey Guest",
		VisitorPhone:       "+15557654321",
		VisitType:          "family",
		VisitPurpose:       "visit",
		VisitTimeFrom:      "10:00",
		VisitTimeTo:        "12:00",
		VisitDate:          "2026-03-15",
	}

	t.Run("success", func(t *testing.T) {
		requests := newFakeRequestRepo()
		gw := &fakeGateway{}

		result, err := newUC(requests, gw).Execute(context.Background(), cmd)
		require.NoError(t, err)
		assert.Equal(t, visitrequest.StatusPending, result.Status)
		assert.NotNil(t, requests.byExtID[result.ExternalID])
		require.Len(t, gw.invokes, 1)
		assert.Equal(t, ledger.FnAddVisitRequest, gw.invokes[0].Function)
		assert.Equal(t, "RES-ABCDEFGH23", gw.invokes[0].Identity)
	})

	t.Run("unknown resident", func(t *testing.T) {
		requests := newFakeRequestRepo()
		gw := &fakeGateway{}

		missing := cmd
		missing.ResidentExternalID = "RES-ZZZZZZZZ99"
		_, err := newUC(requests, gw).Execute(context.Background(), missing)
		require.Error(t, err)
		assert.True(t, errors.IsNotFoundError(err))
		assert.Empty(t, gw.invokes)
	})

	t.Run("ledger failure deletes local record", func(t *testing.T) {
		requests := newFakeRequestRepo()
		gw := &fakeGateway{}
		gw.invokeFn = func(ctx context.Context, call ledger.Call) (ledger.Receipt, error) {
			return ledger.Receipt{}, errors.NewLedgerUnavailableError("ledger is unreachable")
		}

		_, err := newUC(requests, gw).Execute(context.Background(), cmd)
		require.Error(t, err)
		assert.Empty(t, requests.byExtID)
		assert.Len(t, requests.deleted, 1)
	})

	t.Run("invalid window", func(t *testing.T) {
		requests := newFakeRequestRepo()
		gw := &fakeGateway{}

		bad := cmd
		bad.VisitTimeFrom = "12:00"
		bad.VisitTimeTo = "10:00"
		_, err := newUC(requests, gw).Execute(context.Background(), bad)
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
	})
}
