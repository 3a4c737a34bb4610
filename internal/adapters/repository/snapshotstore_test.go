package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/pixel-phantoms/hud/internal/domain/model"
)

func testAgents(n int) []model.Agent {
	out := make([]model.Agent, n)
	for i := range out {
		out[i] = model.Agent{
			Login: fmt.Sprintf("Agent%d", i+1),
			XP:    (n - i) * 100,
			Rank:  i + 1,
			Class: model.ClassRookie,
		}
	}
	return out
}

func TestSnapshotStore_Empty(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore()

	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}
	if _, err := store.Rank(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	top, err := store.TopN(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(top) != 0 {
		t.Errorf("expected no entries, got %d", len(top))
	}
	if !store.Current(ctx).GeneratedAt.IsZero() {
		t.Error("expected zero snapshot before first replace")
	}
}

func TestSnapshotStore_ReplaceAndRead(t *testing.T) {
	ctx := context.Background()
	stamp := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	store := NewSnapshotStore(WithClock(func() time.Time { return stamp }))

	err := store.Replace(ctx, Snapshot{
		Agents:   testAgents(5),
		Stats:    model.EventStats{TotalEvents: 3, TotalAttendance: 12},
		Strategy: "csv",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if count := store.Count(ctx); count != 5 {
		t.Errorf("expected count 5, got %d", count)
	}

	snap := store.Current(ctx)
	if !snap.GeneratedAt.Equal(stamp) {
		t.Errorf("expected generated at %v, got %v", stamp, snap.GeneratedAt)
	}
	if snap.Stats.TotalAttendance != 12 || snap.Strategy != "csv" {
		t.Errorf("unexpected snapshot metadata: %+v", snap)
	}

	agent, err := store.Rank(ctx, "  agent3 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agent.Rank != 3 || agent.Login != "Agent3" {
		t.Errorf("expected Agent3 at rank 3, got %s at %d", agent.Login, agent.Rank)
	}
}

func TestSnapshotStore_TopN(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore()
	if err := store.Replace(ctx, Snapshot{Agents: testAgents(5)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	top, err := store.TopN(ctx, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(top))
	}
	for i, a := range top {
		if a.Rank != i+1 {
			t.Errorf("expected rank %d, got %d", i+1, a.Rank)
		}
	}

	top[0].Login = "mutated"
	again, _ := store.TopN(ctx, 1)
	if again[0].Login != "Agent1" {
		t.Error("TopN must return a copy")
	}

	all, _ := store.TopN(ctx, 100)
	if len(all) != 5 {
		t.Errorf("expected limit to clamp to 5, got %d", len(all))
	}

	for _, n := range []int{0, -1} {
		if _, err := store.TopN(ctx, n); !errors.Is(err, ErrInvalidLimit) {
			t.Errorf("TopN(%d): expected ErrInvalidLimit, got %v", n, err)
		}
	}
}

func TestSnapshotStore_ReplaceSwapsWholeSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore()
	_ = store.Replace(ctx, Snapshot{Agents: testAgents(5)})
	_ = store.Replace(ctx, Snapshot{Agents: []model.Agent{{Login: "solo", Rank: 1}}, Demo: true})

	if _, err := store.Rank(ctx, "agent1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("old agents must disappear, got %v", err)
	}
	if !store.Current(ctx).Demo {
		t.Error("expected demo flag to be carried")
	}
	if store.Count(ctx) != 1 {
		t.Errorf("expected count 1, got %d", store.Count(ctx))
	}
}

func TestSnapshotStore_ConcurrentReadsDuringReplace(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore()
	_ = store.Replace(ctx, Snapshot{Agents: testAgents(50)})

	var wg sync.WaitGroup
	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				top, err := store.TopN(ctx, 10)
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				for j := 1; j < len(top); j++ {
					if top[j-1].XP < top[j].XP {
						t.Error("observed a torn snapshot")
						return
					}
				}
			}
		}()
	}
	for i := 0; i < 50; i++ {
		_ = store.Replace(ctx, Snapshot{Agents: testAgents(10 + i)})
	}
	wg.Wait()
}

func BenchmarkSnapshotStore_Rank(b *testing.B) {
	ctx := context.Background()
	store := NewSnapshotStore()
	_ = store.Replace(ctx, Snapshot{Agents: testAgents(10_000)})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.Rank(ctx, "agent5000")
	}
}

func BenchmarkSnapshotStore_Replace(b *testing.B) {
	ctx := context.Background()
	store := NewSnapshotStore()
	agents := testAgents(10_000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = store.Replace(ctx, Snapshot{Agents: agents})
	}
}
