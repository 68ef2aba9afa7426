package keystore

import (
	"context"
	"testing"
	"time"

	keystoreport "github.com/everbloom-studio/booking-api/internal/ports/out/keystore"
)

func TestStore_FindReturnsCopy(t *testing.T) {
	t.Parallel()

	s := NewStore()
	now := time.Unix(100, 0).UTC()
	if created, err := s.InsertIfAbsent(context.Background(), "k1", now.Add(time.Hour), now); err != nil || !created {
		t.Fatalf("InsertIfAbsent created=%v err=%v", created, err)
	}
	if err := s.Update(context.Background(), "k1", []byte("abc")); err != nil {
		t.Fatalf("Update: %v", err)
	}

	rec, ok, err := s.Find(context.Background(), "k1")
	if err != nil || !ok {
		t.Fatalf("Find ok=%v err=%v", ok, err)
	}
	rec.Response[0] = 'x'

	again, _, err := s.Find(context.Background(), "k1")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if string(again.Response) != "abc" {
		t.Fatalf("stored record mutated through returned copy: %q", again.Response)
	}
}

func TestStore_UpdateMissingKey(t *testing.T) {
	t.Parallel()

	s := NewStore()
	if err := s.Update(context.Background(), "nope", []byte("x")); err != keystoreport.ErrNotFound {
		t.Fatalf("Update err=%v, want ErrNotFound", err)
	}
}
