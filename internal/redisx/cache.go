package redisx

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DetailsCache holds the aggregated user snapshot under a
// sequence-stamped entry. Writes go through a compare-and-set so a slow
// reader that computed its snapshot before a later mutation cannot
// overwrite the fresher state: any write whose sequence is not newer
// than the stored one is discarded. Invalidate bumps the sequence with
// an empty body (a miss) instead of deleting the key, which would drop
// the guard. Each entry also records the catalog generation it was
// built against; a generation mismatch on read is a miss, so admin
// product mutations invalidate every user's snapshot at once.
type DetailsCache struct{ RDB *redis.Client }

var setIfNewer = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'seq')
if cur and tonumber(cur) >= tonumber(ARGV[1]) then
  return 0
end
local gen = redis.call('GET', KEYS[2]) or '0'
redis.call('HSET', KEYS[1], 'seq', ARGV[1], 'body', ARGV[2], 'gen', gen)
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

func (c *DetailsCache) Get(ctx context.Context, email string) ([]byte, bool) {
	vals, err := c.RDB.HMGet(ctx, fmt.Sprintf(KeyUserDetails, email), "seq", "body", "gen").Result()
	if err != nil || len(vals) != 3 {
		return nil, false
	}
	body, ok := vals[1].(string)
	if !ok || body == "" {
		return nil, false
	}
	gen, _ := vals[2].(string)
	cur, err := c.RDB.Get(ctx, KeyCatalogGen).Result()
	if err == redis.Nil {
		cur = "0"
	} else if err != nil {
		return nil, false
	}
	if gen != cur {
		return nil, false
	}
	return []byte(body), true
}

func (c *DetailsCache) Set(ctx context.Context, email string, seq int64, body []byte) error {
	return setIfNewer.Run(ctx, c.RDB,
		[]string{fmt.Sprintf(KeyUserDetails, email), KeyCatalogGen},
		seq, string(body), TTLUserDetails.Milliseconds()).Err()
}

func (c *DetailsCache) Invalidate(ctx context.Context, email string, seq int64) error {
	return c.Set(ctx, email, seq, nil)
}

// InvalidateCatalog bumps the catalog generation, invalidating every
// cached snapshot in one write.
func (c *DetailsCache) InvalidateCatalog(ctx context.Context) error {
	return c.RDB.Incr(ctx, KeyCatalogGen).Err()
}

// Idem is the Redis fast path for order-creation idempotency; the
// database unique constraint on external_id remains authoritative.
type Idem struct{ RDB *redis.Client }

func (i *Idem) KnownExternalID(ctx context.Context, externalID string) (string, bool) {
	orderID, err := i.RDB.Get(ctx, fmt.Sprintf(KeyIdemOrderCreate, externalID)).Result()
	if err != nil || orderID == "" {
		return "", false
	}
	return orderID, true
}

func (i *Idem) RememberExternalID(ctx context.Context, externalID, orderID string) {
	_ = i.RDB.Set(ctx, fmt.Sprintf(KeyIdemOrderCreate, externalID), orderID, TTLIdempotency).Err()
}
