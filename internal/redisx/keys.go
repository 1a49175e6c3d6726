package redisx

import "time"

const (
	// Active session token per user: session:{user_id} -> token
	KeySession = "session:%s"

	// Idempotency create order: idem:order:create:{external_id} -> order_id
	KeyIdemOrderCreate = "idem:order:create:%s"

	// Aggregated user details cache: cache:user_details:{email} (hash: seq, body, gen)
	KeyUserDetails = "cache:user_details:%s"

	// Catalog generation counter; bumped on product mutations so every
	// cached user snapshot built against the old catalog goes stale.
	KeyCatalogGen = "cache:catalog_gen"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLSession     = 72 * time.Hour
	TTLIdempotency = 24 * time.Hour
	TTLUserDetails = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
