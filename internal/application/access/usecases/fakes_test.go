package usecases

import (
	"context"
	"time"

	"custodia/internal/application/ledger"
	"custodia/internal/domain/access"
	"custodia/internal/domain/resident"
	"custodia/internal/domain/visitor"
	"custodia/internal/shared/config"
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

// fakeBlockRepo is an in-memory BlockRepository keyed by subject.
type fakeBlockRepo struct {
	nextID    uint
	blocks    map[uint]*access.Block
	saveErr   error
	deleteErr error
	deleted   []uint
}

func newFakeBlockRepo() *fakeBlockRepo {
	return &fakeBlockRepo{blocks: make(map[uint]*access.Block)}
}

func (f *fakeBlockRepo) Save(ctx context.Context, block *access.Block) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.nextID++
	if err := block.SetID(f.nextID); err != nil {
		return err
	}
	f.blocks[block.ID()] = block
	return nil
}

func (f *fakeBlockRepo) Delete(ctx context.Context, blockID uint) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.blocks, blockID)
	f.deleted = append(f.deleted, blockID)
	return nil
}

func (f *fakeBlockRepo) GetBySubject(ctx context.Context, subject access.Subject) (*access.Block, error) {
	for _, b := range f.blocks {
		if b.Subject() == subject {
			return b, nil
		}
	}
	return nil, nil
}

func (f *fakeBlockRepo) ListExpired(ctx context.Context, before time.Time) ([]*access.Block, error) {
	var expired []*access.Block
	for _, b := range f.blocks {
		if b.IsExpired(before) {
			expired = append(expired, b)
		}
	}
	return expired, nil
}

func (f *fakeBlockRepo) List(ctx context.Context) ([]*access.Block, error) {
	var all []*access.Block
	for _, b := range f.blocks {
		all = append(all, b)
	}
	return all, nil
}

func (f *fakeBlockRepo) DeleteBySubject(ctx context.Context, subject access.Subject) error {
	for id, b := range f.blocks {
		if b.Subject() == subject {
			delete(f.blocks, id)
		}
	}
	return nil
}

type fakeResidentRepo struct {
	resident.Repository
	byExternalID map[string]*resident.Resident
}

func (f *fakeResidentRepo) GetByExternalID(ctx context.Context, externalID string) (*resident.Resident, error) {
	return f.byExternalID[externalID], nil
}

type fakeVisitorRepo struct {
	visitor.Repository
	byExternalID map[string]*visitor.Visitor
}

func (f *fakeVisitorRepo) GetByExternalID(ctx context.Context, externalID string) (*visitor.Visitor, error) {
	return f.byExternalID[externalID], nil
}

type fakeEntryLogRepo struct {
	access.EntryLogRepository
	entries []*access.EntryLog
}

func (f *fakeEntryLogRepo) List(ctx context.Context, filter access.EntryLogFilter) ([]*access.EntryLog, int64, error) {
	return f.entries, int64(len(f.entries)), nil
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

func testCalls() ledger.CallBuilder {
	return ledger.NewCallBuilder("residentschannel", "residentManagement")
}
