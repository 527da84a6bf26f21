package auth

import (
	"sync"
	"testing"
	"time"

	"resumerank/internal/config"
)

func testRegistry() *ChallengeRegistry {
	return NewChallengeRegistry(config.MFAConfig{
		ChallengeTTL: time.Minute,
		MaxAttempts:  3,
	})
}

func TestGetReturnsSnapshot(t *testing.T) {
	registry := testRegistry()
	created := registry.Create("pending-cred", []FactorHint{{ID: "hint-1"}})

	before, err := registry.Get(created.Token)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if before.VerificationID != "" {
		t.Fatalf("fresh challenge carries verification id %q", before.VerificationID)
	}

	if err := registry.MarkCodeSent(created.Token, "hint-1", "verification-1"); err != nil {
		t.Fatalf("MarkCodeSent failed: %v", err)
	}

	// The earlier snapshot must not observe the registry mutation
	if before.VerificationID != "" {
		t.Errorf("snapshot mutated: verification id = %q", before.VerificationID)
	}
	if before.State != StateSelectingFactor {
		t.Errorf("snapshot mutated: state = %v", before.State)
	}

	after, err := registry.Get(created.Token)
	if err != nil {
		t.Fatalf("Get after MarkCodeSent failed: %v", err)
	}
	if after.VerificationID != "verification-1" {
		t.Errorf("registry state not updated: verification id = %q", after.VerificationID)
	}
	if after.State != StateCodeSent {
		t.Errorf("registry state not updated: state = %v", after.State)
	}
}

func TestConcurrentGetAndMutate(t *testing.T) {
	registry := testRegistry()
	created := registry.Create("pending-cred", []FactorHint{{ID: "hint-1"}})
	if err := registry.MarkCodeSent(created.Token, "hint-1", "verification-1"); err != nil {
		t.Fatalf("MarkCodeSent failed: %v", err)
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			challenge, err := registry.Get(created.Token)
			if err != nil {
				return
			}
			_ = challenge.VerificationID
			_ = challenge.State
			_ = challenge.Hints
		}()
		go func() {
			defer wg.Done()
			registry.ResetVerification(created.Token)
			_ = registry.MarkCodeSent(created.Token, "hint-1", "verification-2")
		}()
	}
	wg.Wait()
}

func TestGetExpiredChallengeRemoved(t *testing.T) {
	registry := NewChallengeRegistry(config.MFAConfig{
		ChallengeTTL: time.Minute,
		MaxAttempts:  3,
	})
	created := registry.Create("pending-cred", nil)

	registry.mu.Lock()
	registry.challenges[created.Token].ExpiresAt = time.Now().Add(-time.Second)
	registry.mu.Unlock()

	if _, err := registry.Get(created.Token); err == nil {
		t.Fatal("expected expired challenge to be rejected")
	}

	// A second lookup finds nothing at all
	if _, err := registry.Get(created.Token); err == nil {
		t.Fatal("expired challenge was not removed")
	}
}
