package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/taj0207/IngredientCheck/internal/core/domain"
)

func dangerInfo() *domain.SafetyInfo {
	return &domain.SafetyInfo{
		Severity:         domain.SeverityDanger,
		HazardStatements: []domain.HazardStatement{{Code: "H350", Category: domain.HazardHealth}},
	}
}

func TestSafetyCache_ExpiresAfterTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(time.Hour, clock)

	c.Set("Benzene", dangerInfo())

	got := c.Get("benzene")
	if got == nil || got.Severity != domain.SeverityDanger {
		t.Fatalf("expected cached danger info, got %+v", got)
	}

	clock.Advance(time.Hour)
	if c.Get("benzene") == nil {
		t.Fatalf("entry should still be fresh at exactly ttl")
	}

	clock.Advance(time.Second)
	if got := c.Get("benzene"); got != nil {
		t.Errorf("expected nil after ttl, got %+v", got)
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be evicted on read, len=%d", c.Len())
	}
}

func TestSafetyCache_KeyNormalization(t *testing.T) {
	c := New(time.Hour, clockwork.NewFakeClock())
	c.Set("  Sodium   Benzoate ", dangerInfo())

	if c.Get("sodium benzoate") == nil {
		t.Errorf("expected lookup with normalized key to hit")
	}
}

func TestSafetyCache_ReturnsCopies(t *testing.T) {
	c := New(time.Hour, clockwork.NewFakeClock())
	info := dangerInfo()
	c.Set("benzene", info)

	// Mutating the caller's value after Set must not reach the cache.
	info.HazardStatements[0].Code = "H200"

	first := c.Get("benzene")
	first.HazardStatements[0].Code = "H999"

	second := c.Get("benzene")
	if second.HazardStatements[0].Code != "H350" {
		t.Errorf("cache state leaked to callers: %s", second.HazardStatements[0].Code)
	}
}

func TestSafetyCache_Clear(t *testing.T) {
	c := New(time.Hour, clockwork.NewFakeClock())
	c.Set("water", &domain.SafetyInfo{Severity: domain.SeveritySafe})
	c.Set("benzene", dangerInfo())

	c.Clear()

	if c.Get("water") != nil || c.Get("benzene") != nil {
		t.Errorf("expected empty cache after Clear")
	}
}

func TestSafetyCache_SetRefreshesTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(time.Minute, clock)

	c.Set("water", &domain.SafetyInfo{Severity: domain.SeveritySafe})
	clock.Advance(50 * time.Second)
	c.Set("water", &domain.SafetyInfo{Severity: domain.SeverityUnknown})
	clock.Advance(50 * time.Second)

	got := c.Get("water")
	if got == nil || got.Severity != domain.SeverityUnknown {
		t.Errorf("expected refreshed entry with last written value, got %+v", got)
	}
}

func TestSafetyCache_ConcurrentAccess(t *testing.T) {
	c := New(time.Hour, clockwork.NewFakeClock())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("ingredient-%d", i%5)
			c.Set(key, dangerInfo())
			_ = c.Get(key)
			if i%17 == 0 {
				c.Clear()
			}
		}(i)
	}
	wg.Wait()

	c.Set("final", dangerInfo())
	if c.Get("final") == nil {
		t.Errorf("expected cache usable after concurrent access")
	}
}

func TestNop(t *testing.T) {
	var s Store = Nop{}
	s.Set("water", dangerInfo())
	if s.Get("water") != nil {
		t.Errorf("disabled cache must never return data")
	}
}
