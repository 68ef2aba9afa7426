package idempotency

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/everbloom-studio/booking-api/internal/domain"
	"github.com/everbloom-studio/booking-api/internal/ports/out/clock"
	"github.com/everbloom-studio/booking-api/internal/ports/out/keystore"
)

const (
	// DefaultKeyTTL bounds how long an idempotency record (and its cached
	// response) stays replayable. Abandoned keys expire on this horizon; there
	// is no background sweeper, cleanup is lazy on the next read of the key.
	DefaultKeyTTL = 24 * time.Hour

	// DefaultCheckoutKeyWindow is the bucket width for checkout key
	// derivation: submissions within the same window collapse to one key,
	// submissions further apart count as distinct attempts.
	DefaultCheckoutKeyWindow = 10 * time.Second

	checkoutKeyPrefix = "checkout"
)

// Config carries the product-tunable knobs of the service. Zero values fall
// back to the defaults above.
type Config struct {
	KeyTTL            time.Duration
	CheckoutKeyWindow time.Duration
}

// Service derives deterministic idempotency keys and guards side-effecting
// operations with an at-most-once contract backed by a key store.
//
// The intended caller pattern:
//
//	key := svc.GenerateCheckoutKey(...)
//	owned, err := svc.CheckAndStore(ctx, key)
//	if owned { perform(); svc.UpdateResponse(ctx, key, resp) }
//	else     { resp := svc.GetStoredResponse(ctx, key) }
type Service struct {
	store keystore.Store
	clk   clock.Clock

	keyTTL            time.Duration
	checkoutKeyWindow time.Duration
}

func NewService(store keystore.Store, clk clock.Clock, cfg Config) *Service {
	ttl := cfg.KeyTTL
	if ttl <= 0 {
		ttl = DefaultKeyTTL
	}
	window := cfg.CheckoutKeyWindow
	if window <= 0 {
		window = DefaultCheckoutKeyWindow
	}
	return &Service{
		store:             store,
		clk:               clk,
		keyTTL:            ttl,
		checkoutKeyWindow: window,
	}
}

// GenerateKey derives a deterministic key of the form "<prefix>_<32 hex>".
// Identical inputs always produce identical keys; any differing part
// (including the prefix) produces a different key. The digest only needs to
// resist accidental collision, not an adversary.
func (s *Service) GenerateKey(prefix string, parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(sum[:]))
}

// GenerateCheckoutKey derives the key guarding one logical checkout attempt.
// The submission timestamp is floored to the configured window before
// hashing, so near-simultaneous duplicates (double clicks, client retries)
// collapse to the same key while a deliberate retry after the window opens a
// fresh attempt.
func (s *Service) GenerateCheckoutKey(tenant domain.TenantID, email string, pkg domain.PackageID, eventDate domain.CalendarDate, timestampMs int64) string {
	windowMs := s.checkoutKeyWindow.Milliseconds()
	bucket := timestampMs - timestampMs%windowMs
	return s.GenerateKey(checkoutKeyPrefix,
		string(tenant),
		domain.NormalizeEmail(email),
		string(pkg),
		eventDate.String(),
		strconv.FormatInt(bucket, 10),
	)
}

// CheckAndStore attempts to claim key for the caller. It returns true when
// this call created the record and therefore owns the guarded operation,
// false when a live record already exists. Safe under concurrent callers
// with the identical key: exactly one receives true.
func (s *Service) CheckAndStore(ctx context.Context, key string) (bool, error) {
	now := s.clk.Now()
	created, err := s.store.InsertIfAbsent(ctx, key, now.Add(s.keyTTL), now)
	if err != nil {
		return false, fmt.Errorf("claim idempotency key: %w", err)
	}
	return created, nil
}

// GetStoredResponse returns the response previously attached to key, or nil
// when no record exists, the record has expired, or the owner has not
// attached a response yet. Expired records are deleted on the way out.
func (s *Service) GetStoredResponse(ctx context.Context, key string) ([]byte, error) {
	rec, ok, err := s.store.Find(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("find idempotency record: %w", err)
	}
	if !ok {
		return nil, nil
	}
	// Expiry is inclusive: a record whose ExpiresAt equals now is already
	// reclaimable by InsertIfAbsent, so it must not be served either.
	if !s.clk.Now().Before(rec.ExpiresAt) {
		if err := s.store.Delete(ctx, key); err != nil {
			return nil, fmt.Errorf("delete expired idempotency record: %w", err)
		}
		return nil, nil
	}
	return rec.Response, nil
}

// UpdateResponse attaches the guarded operation's outcome to key so later
// duplicate callers can replay it. Calling it for a key never claimed via
// CheckAndStore is a caller bug and yields ErrKeyNotFound.
func (s *Service) UpdateResponse(ctx context.Context, key string, response []byte) error {
	if err := s.store.Update(ctx, key, response); err != nil {
		if errors.Is(err, keystore.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		}
		return fmt.Errorf("update idempotency record: %w", err)
	}
	return nil
}
