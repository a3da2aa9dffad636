package sqlrepository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gigmile/loan-ledger/internal/config"
	"github.com/gigmile/loan-ledger/internal/domain"
	"github.com/gigmile/loan-ledger/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memoryLoanCache mirrors the generation rules of the Redis cache. A fill
// can be parked on hold until the test releases it.
type memoryLoanCache struct {
	mu          sync.Mutex
	loans       map[string]domain.Loan
	generations map[string]int64
	hold        chan struct{}
	filled      chan bool
}

func newMemoryLoanCache() *memoryLoanCache {
	return &memoryLoanCache{
		loans:       map[string]domain.Loan{},
		generations: map[string]int64{},
		filled:      make(chan bool, 8),
	}
}

func (c *memoryLoanCache) Get(ctx context.Context, loanID string) (*domain.Loan, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	loan, ok := c.loans[loanID]
	if !ok {
		return nil, errors.New("miss")
	}
	return &loan, nil
}

func (c *memoryLoanCache) Generation(ctx context.Context, loanID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[loanID], nil
}

func (c *memoryLoanCache) Set(ctx context.Context, loan *domain.Loan, generation int64) (bool, error) {
	if c.hold != nil {
		<-c.hold
	}

	c.mu.Lock()
	stored := c.generations[loan.LoanID] == generation
	if stored {
		c.loans[loan.LoanID] = *loan
	}
	c.mu.Unlock()

	c.filled <- stored
	return stored, nil
}

func (c *memoryLoanCache) Delete(ctx context.Context, loanIDs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range loanIDs {
		c.generations[id]++
		delete(c.loans, id)
	}
	return nil
}

func newCachedStore(t *testing.T, cache LoanCache) *GormStore {
	t.Helper()

	db, err := persistence.Open(context.Background(), config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: ":memory:",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return NewStore(db, cache, zap.NewNop())
}

func seedLoan(t *testing.T, store *GormStore) *domain.Loan {
	t.Helper()

	loan, err := domain.NewLoan("LN00001", domain.NewLoanParams{
		CustomerID:       "CUST-1",
		VehicleID:        "VEH-1",
		Principal:        decimal.NewFromInt(100000),
		InterestRate:     decimal.NewFromInt(12),
		TenureMonths:     12,
		DisbursementDate: time.Date(2023, 12, 2, 0, 0, 0, 0, time.UTC),
		Cadence:          domain.DefaultCadence(),
	})
	require.NoError(t, err)
	require.NoError(t, store.Loans().Create(context.Background(), loan))
	return loan
}

func waitFill(t *testing.T, cache *memoryLoanCache) bool {
	t.Helper()
	select {
	case stored := <-cache.filled:
		return stored
	case <-time.After(2 * time.Second):
		t.Fatal("cache fill did not run")
		return false
	}
}

func TestFindByLoanID_FillsCacheOnMiss(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryLoanCache()
	store := newCachedStore(t, cache)
	seedLoan(t, store)

	loan, err := store.Loans().FindByLoanID(ctx, "LN00001")
	require.NoError(t, err)
	assert.Equal(t, "LN00001", loan.LoanID)
	assert.True(t, waitFill(t, cache))

	cached, err := cache.Get(ctx, "LN00001")
	require.NoError(t, err)
	assert.Equal(t, loan.Version, cached.Version)
}

func TestFindByLoanID_StaleFillLosesToInvalidation(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryLoanCache()
	store := newCachedStore(t, cache)
	seedLoan(t, store)

	// The read completes, but its fill is parked until after a save commits.
	cache.hold = make(chan struct{})
	stale, err := store.Loans().FindByLoanID(ctx, "LN00001")
	require.NoError(t, err)
	require.Equal(t, int64(1), stale.Version)

	require.NoError(t, store.Atomic(ctx, func(tx domain.Store) error {
		loan, err := tx.Loans().FindByLoanIDForUpdate(ctx, "LN00001")
		if err != nil {
			return err
		}
		loan.AttachPayment("PY-0001")
		return tx.Loans().Save(ctx, loan)
	}))

	close(cache.hold)
	assert.False(t, waitFill(t, cache))

	_, err = cache.Get(ctx, "LN00001")
	assert.Error(t, err)

	cache.hold = nil
	fresh, err := store.Loans().FindByLoanID(ctx, "LN00001")
	require.NoError(t, err)
	assert.Equal(t, int64(2), fresh.Version)
	assert.Equal(t, []string{"PY-0001"}, fresh.PaymentIDs)
	assert.True(t, waitFill(t, cache))
}

func TestFindByLoanID_InsideTransactionBypassesCache(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryLoanCache()
	store := newCachedStore(t, cache)
	seedLoan(t, store)

	require.NoError(t, store.Atomic(ctx, func(tx domain.Store) error {
		_, err := tx.Loans().FindByLoanID(ctx, "LN00001")
		return err
	}))

	select {
	case <-cache.filled:
		t.Fatal("transactional read filled the cache")
	case <-time.After(50 * time.Millisecond):
	}
}
