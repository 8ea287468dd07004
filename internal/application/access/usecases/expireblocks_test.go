package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodia/internal/application/ledger"
	"custodia/internal/domain/access"
	"custodia/internal/domain/visitor"
	"custodia/internal/shared/errors"
	"custodia/internal/shared/logger"
)

func expiredBlock(t *testing.T, repo *fakeBlockRepo, kind access.SubjectKind, externalID string, now time.Time) *access.Block {
	t.Helper()
	subject, err := access.NewSubject(kind, externalID)
	require.NoError(t, err)
	block, err := access.NewBlock(subject, "misconduct", now.Add(-48*time.Hour), now.Add(-time.Hour))
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), block))
	return block
}

func newReaperFixture(t *testing.T, now time.Time) (*ExpireBlocksUseCase, *fakeBlockRepo, *fakeGateway) {
	t.Helper()
	blocks := newFakeBlockRepo()
	gw := &fakeGateway{}
	uc := NewExpireBlocksUseCase(
		blocks,
		&fakeVisitorRepo{byExternalID: map[string]*visitor.Visitor{
			"VIS-ABCDEFGH23": testVisitor(t, "VIS-ABCDEFGH23", "RES-ABCDEFGH23"),
		}},
		gw,
		testCalls(),
		testLedgerConfig(),
		logger.NewLogger(),
	)
	uc.WithClock(func() time.Time { return now })
	return uc, blocks, gw
}

func TestExpireBlocks_NothingExpired(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	uc, blocks, gw := newReaperFixture(t, now)

	subject, err := access.NewSubject(access.KindResident, "RES-ABCDEFGH23")
	require.NoError(t, err)
	active, err := access.NewBlock(subject, "misconduct", now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, blocks.Save(context.Background(), active))

	lifted, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, lifted)
	assert.Empty(t, gw.invokes)
	assert.Len(t, blocks.blocks, 1)
}

func TestExpireBlocks_LiftsResidentBlock(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	uc, blocks, gw := newReaperFixture(t, now)
	expiredBlock(t, blocks, access.KindResident, "RES-ABCDEFGH23", now)

	lifted, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, lifted)
	assert.Empty(t, blocks.blocks)

	require.Len(t, gw.invokes, 1)
	assert.Equal(t, ledger.FnUnblockResident, gw.invokes[0].Function)
	assert.Equal(t, []string{"RES-ABCDEFGH23"}, gw.invokes[0].Args)
}

func TestExpireBlocks_LiftsVisitorBlock(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	uc, blocks, gw := newReaperFixture(t, now)
	expiredBlock(t, blocks, access.KindVisitor, "VIS-ABCDEFGH23", now)

	lifted, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, lifted)
	assert.Empty(t, blocks.blocks)

	require.Len(t, gw.invokes, 1)
	assert.Equal(t, ledger.FnUnblockVisitor, gw.invokes[0].Function)
	assert.Equal(t, []string{"VIS-ABCDEFGH23", "RES-ABCDEFGH23"}, gw.invokes[0].Args)
}

func TestExpireBlocks_LedgerFailureKeepsBlock(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	uc, blocks, gw := newReaperFixture(t, now)
	expiredBlock(t, blocks, access.KindResident, "RES-ABCDEFGH23", now)
	gw.invokeFn = func(ctx context.Context, call ledger.Call) (ledger.Receipt, error) {
		return ledger.Receipt{}, errors.NewLedgerUnavailableError("ledger is unreachable")
	}

	lifted, err := uc.Execute(context.Background())
	require.Error(t, err)
	assert.Zero(t, lifted)
	// The failed block stays and is retried next cycle.
	assert.Len(t, blocks.blocks, 1)
	assert.Empty(t, blocks.deleted)
}

func TestExpireBlocks_FailureIsolation(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	uc, blocks, gw := newReaperFixture(t, now)
	expiredBlock(t, blocks, access.KindResident, "RES-ABCDEFGH23", now)
	expiredBlock(t, blocks, access.KindResident, "RES-ZZZZZZZZ99", now)

	gw.invokeFn = func(ctx context.Context, call ledger.Call) (ledger.Receipt, error) {
		if call.Args[0] == "RES-ZZZZZZZZ99" {
			return ledger.Receipt{}, errors.NewLedgerUnavailableError("ledger is unreachable")
		}
		return ledger.Receipt{TxID: "tx"}, nil
	}

	lifted, err := uc.Execute(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, lifted)
	assert.Len(t, blocks.blocks, 1)
}

func TestExpireBlocks_OrphanedVisitorBlockIsDropped(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	uc, blocks, gw := newReaperFixture(t, now)
	// The blocked visitor no longer exists locally.
	expiredBlock(t, blocks, access.KindVisitor, "VIS-ZZZZZZZZ99", now)

	lifted, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, lifted)
	assert.Empty(t, blocks.blocks)
	assert.Empty(t, gw.invokes)
}

func TestExpireBlocks_ConvergesInOneCycle(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	uc, blocks, _ := newReaperFixture(t, now)
	expiredBlock(t, blocks, access.KindResident, "RES-ABCDEFGH23", now)
	expiredBlock(t, blocks, access.KindResident, "RES-ZZZZZZZZ99", now)
	expiredBlock(t, blocks, access.KindVisitor, "VIS-ABCDEFGH23", now)

	lifted, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, lifted)
	assert.Empty(t, blocks.blocks)

	lifted, err = uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, lifted)
}
