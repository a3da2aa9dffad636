package redisrepository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gigmile/loan-ledger/internal/domain"
	"github.com/go-redis/redis/v8"
)

var ErrCacheMiss = errors.New("loan not cached")

// generationTTL bounds how long an idle loan's generation counter lives. A
// counter that expires reads as zero, which no in-flight fill still holds.
const generationTTL = 24 * time.Hour

// setIfGeneration stores the loan only while the generation counter still
// holds the value the reader saw before querying the table.
var setIfGeneration = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[2]) or "0")
if current ~= tonumber(ARGV[1]) then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
else
	redis.call("SET", KEYS[1], ARGV[2])
end
return 1
`)

// RedisLoanCache is a read-through cache for loans looked up outside a
// transaction. Writers invalidate before and after they commit; every
// invalidation bumps the loan's generation so a fill that read the table
// earlier cannot overwrite it.
type RedisLoanCache struct {
	client   *redis.Client
	cacheTTL time.Duration
}

func NewRedisLoanCache(client *redis.Client, cacheTTL time.Duration) *RedisLoanCache {
	return &RedisLoanCache{
		client:   client,
		cacheTTL: cacheTTL,
	}
}

func (r *RedisLoanCache) Get(ctx context.Context, loanID string) (*domain.Loan, error) {
	data, err := r.client.Get(ctx, r.loanKey(loanID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}

	var loan domain.Loan
	if err := json.Unmarshal(data, &loan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal loan: %w", err)
	}

	return &loan, nil
}

// Generation returns the loan's invalidation counter. Read it before
// querying the table and hand it to Set.
func (r *RedisLoanCache) Generation(ctx context.Context, loanID string) (int64, error) {
	gen, err := r.client.Get(ctx, r.generationKey(loanID)).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read loan generation: %w", err)
	}
	return gen, nil
}

// Set caches the loan unless it was invalidated after generation was read.
func (r *RedisLoanCache) Set(ctx context.Context, loan *domain.Loan, generation int64) (bool, error) {
	data, err := json.Marshal(loan)
	if err != nil {
		return false, fmt.Errorf("failed to marshal loan: %w", err)
	}

	keys := []string{r.loanKey(loan.LoanID), r.generationKey(loan.LoanID)}
	stored, err := setIfGeneration.Run(ctx, r.client, keys, generation, data, r.cacheTTL.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("failed to cache loan: %w", err)
	}

	return stored == 1, nil
}

func (r *RedisLoanCache) Delete(ctx context.Context, loanIDs ...string) error {
	if len(loanIDs) == 0 {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range loanIDs {
			pipe.Incr(ctx, r.generationKey(id))
			pipe.Expire(ctx, r.generationKey(id), generationTTL)
			pipe.Del(ctx, r.loanKey(id))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete cached loan: %w", err)
	}
	return nil
}

func (r *RedisLoanCache) loanKey(loanID string) string {
	return fmt.Sprintf("loan:%s", loanID)
}

func (r *RedisLoanCache) generationKey(loanID string) string {
	return fmt.Sprintf("loan:gen:%s", loanID)
}
