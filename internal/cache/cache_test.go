package cache

import (
	"context"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	if got := Key("dashboard", "user123"); got != "dashboard:user:user123" {
		t.Errorf("Key() = %q", got)
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	store.Set(ctx, "k", []byte("v"), 10*time.Second)

	got, ok := store.Get(ctx, "k")
	if !ok {
		t.Fatal("Get() reported miss immediately after Set()")
	}
	if string(got) != "v" {
		t.Errorf("Get() = %q, want %q", got, "v")
	}
}

func TestMemoryMiss(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	if _, ok := store.Get(ctx, "absent"); ok {
		t.Error("Get() hit on absent key")
	}

	store.Set(ctx, "k", []byte("v"), time.Second)
	store.Del(ctx, "k")
	if _, ok := store.Get(ctx, "k"); ok {
		t.Error("Get() hit after Del()")
	}
}

func TestMemoryTTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	current := time.Now()
	store.now = func() time.Time { return current }

	store.Set(ctx, "k", []byte("v"), 10*time.Second)

	current = current.Add(11 * time.Second)
	if _, ok := store.Get(ctx, "k"); ok {
		t.Error("Get() hit after TTL lapsed")
	}
}

func TestDisabledAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	var store Store = Disabled{}

	store.Set(ctx, "k", []byte("v"), time.Minute)
	if _, ok := store.Get(ctx, "k"); ok {
		t.Error("Disabled store returned a hit")
	}
	store.Del(ctx, "k") // must not panic
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	want := payload{Name: "rock", Count: 7}
	SetJSON(ctx, store, "k", want, time.Minute)

	var got payload
	if !GetJSON(ctx, store, "k", &got) {
		t.Fatal("GetJSON() reported miss after SetJSON()")
	}
	if got != want {
		t.Errorf("GetJSON() = %+v, want %+v", got, want)
	}

	var missing payload
	if GetJSON(ctx, store, "absent", &missing) {
		t.Error("GetJSON() hit on absent key")
	}

	// Corrupt payloads count as misses, not errors.
	store.Set(ctx, "bad", []byte("{not json"), time.Minute)
	if GetJSON(ctx, store, "bad", &missing) {
		t.Error("GetJSON() decoded corrupt payload")
	}
}
