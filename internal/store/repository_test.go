package store_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-game-config/configuration"
	"github.com/goliatone/go-game-config/internal/store"
	"github.com/goliatone/go-game-config/pkg/testsupport"
)

func newRepository(t *testing.T, opts ...store.Option) *store.ConfigurationRepository {
	t.Helper()
	return store.NewConfigurationRepository(testsupport.NewSQLiteDB(t), opts...)
}

func TestConfigurationRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newRepository(t)

	created, err := repo.Create(ctx, configuration.Record{
		ID:         "caller-supplied",
		Name:       "Config1",
		JSONConfig: `{"lives":3}`,
		CreatedAt:  time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if created.ID == "" || created.ID == "caller-supplied" {
		t.Errorf("expected server assigned id, got %q", created.ID)
	}
	if !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Errorf("expected createdAt == updatedAt, got %v and %v", created.CreatedAt, created.UpdatedAt)
	}
	if created.CreatedAt.Year() == 1999 {
		t.Error("caller supplied createdAt must be ignored")
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected record, got nil")
	}
	if got.Name != "Config1" || got.JSONConfig != `{"lives":3}` {
		t.Errorf("unexpected record: %+v", got)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) || !got.UpdatedAt.Equal(created.UpdatedAt) {
		t.Errorf("timestamps did not round trip: created %+v, got %+v", created, got)
	}

	byName, err := repo.GetByName(ctx, "Config1")
	if err != nil {
		t.Fatalf("GetByName() failed: %v", err)
	}
	if byName == nil || byName.ID != created.ID {
		t.Errorf("expected GetByName to find %s, got %+v", created.ID, byName)
	}
}

func TestConfigurationRepository_GetMissing(t *testing.T) {
	repo := newRepository(t)

	got, err := repo.GetByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("expected no error for missing id, got %v", err)
	}
	if got != nil {
		t.Errorf("expected nil record, got %+v", got)
	}

	got, err = repo.GetByName(context.Background(), "missing")
	if err != nil || got != nil {
		t.Errorf("expected (nil, nil) for missing name, got (%+v, %v)", got, err)
	}
}

func TestConfigurationRepository_DuplicateName(t *testing.T) {
	ctx := context.Background()
	repo := newRepository(t)

	if _, err := repo.Create(ctx, configuration.Record{Name: "Config1", JSONConfig: "{}"}); err != nil {
		t.Fatalf("first Create() failed: %v", err)
	}

	_, err := repo.Create(ctx, configuration.Record{Name: "Config1", JSONConfig: "{}"})
	if !errors.Is(err, configuration.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}

	all, err := repo.GetAll(ctx, configuration.ListOptions{})
	if err != nil {
		t.Fatalf("GetAll() failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected exactly one record, got %d", len(all))
	}
}

func TestConfigurationRepository_ConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	repo := newRepository(t)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		dupes     int
		others    []error
	)

	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := repo.Create(ctx, configuration.Record{Name: "race", JSONConfig: "{}"})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, configuration.ErrDuplicateName):
				dupes++
			default:
				others = append(others, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if len(others) > 0 {
		t.Fatalf("unexpected errors: %v", others)
	}
	if successes != 1 || dupes != workers-1 {
		t.Errorf("expected 1 success and %d duplicates, got %d and %d", workers-1, successes, dupes)
	}

	all, err := repo.GetAll(ctx, configuration.ListOptions{SearchTerm: "race"})
	if err != nil {
		t.Fatalf("GetAll() failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected one stored record, got %d", len(all))
	}
}

func TestConfigurationRepository_UpdateMonotonic(t *testing.T) {
	ctx := context.Background()
	clock := testsupport.NewClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	repo := newRepository(t, store.WithClock(clock.Now))

	created, err := repo.Create(ctx, configuration.Record{Name: "Config1", JSONConfig: "{}"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	// clock frozen: updatedAt must still move forward
	first, err := repo.Update(ctx, configuration.Record{ID: created.ID, Name: "Config1Renamed", JSONConfig: `{"a":1}`})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if !first.UpdatedAt.After(created.UpdatedAt) {
		t.Errorf("expected updatedAt to increase, got %v then %v", created.UpdatedAt, first.UpdatedAt)
	}
	if !first.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("createdAt must be preserved, got %v want %v", first.CreatedAt, created.CreatedAt)
	}

	clock.Advance(time.Minute)
	second, err := repo.Update(ctx, configuration.Record{
		ID:         created.ID,
		Name:       "Config1Renamed",
		JSONConfig: `{"a":2}`,
		CreatedAt:  time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("second Update() failed: %v", err)
	}
	if !second.UpdatedAt.Equal(clock.Now()) {
		t.Errorf("expected updatedAt %v, got %v", clock.Now(), second.UpdatedAt)
	}
	if !second.CreatedAt.Equal(created.CreatedAt) {
		t.Error("caller supplied createdAt must be ignored on update")
	}

	stored, err := repo.GetByID(ctx, created.ID)
	if err != nil || stored == nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if stored.Name != "Config1Renamed" || stored.JSONConfig != `{"a":2}` {
		t.Errorf("update not persisted: %+v", stored)
	}
}

func TestConfigurationRepository_UpdateRenameToExistingName(t *testing.T) {
	ctx := context.Background()
	repo := newRepository(t)

	if _, err := repo.Create(ctx, configuration.Record{Name: "taken", JSONConfig: "{}"}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	other, err := repo.Create(ctx, configuration.Record{Name: "other", JSONConfig: "{}"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	_, err = repo.Update(ctx, configuration.Record{ID: other.ID, Name: "taken", JSONConfig: "{}"})
	if !errors.Is(err, configuration.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}

	stored, _ := repo.GetByID(ctx, other.ID)
	if stored == nil || stored.Name != "other" {
		t.Errorf("failed update must not change the row, got %+v", stored)
	}
}

func TestConfigurationRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := newRepository(t)

	_, err := repo.Update(ctx, configuration.Record{ID: "missing", Name: "x", JSONConfig: "{}"})
	if !errors.Is(err, configuration.ErrNotFound) {
		t.Errorf("expected ErrNotFound from Update, got %v", err)
	}

	err = repo.Delete(ctx, "missing")
	if !errors.Is(err, configuration.ErrNotFound) {
		t.Errorf("expected ErrNotFound from Delete, got %v", err)
	}
}

func TestConfigurationRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newRepository(t)

	created, err := repo.Create(ctx, configuration.Record{Name: "gone", JSONConfig: "{}"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil || got != nil {
		t.Errorf("expected (nil, nil) after delete, got (%+v, %v)", got, err)
	}

	exists, err := repo.Exists(ctx, "gone")
	if err != nil || exists {
		t.Errorf("expected name to be free after delete, got (%v, %v)", exists, err)
	}

	// the name can be reused once the record is gone
	if _, err := repo.Create(ctx, configuration.Record{Name: "gone", JSONConfig: "{}"}); err != nil {
		t.Errorf("expected name reuse after delete, got %v", err)
	}
}

func TestConfigurationRepository_GetAll(t *testing.T) {
	ctx := context.Background()
	clock := testsupport.NewClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	repo := newRepository(t, store.WithClock(clock.Now))

	fixtures := []configuration.Record{
		{Name: "alpha", JSONConfig: `{"mode":"easy"}`},
		{Name: "beta", JSONConfig: `{"mode":"hard"}`},
		{Name: "gamma", JSONConfig: `{"mode":"easy","note":"100%_done"}`},
		{Name: "delta", JSONConfig: `{"mode":"medium"}`},
	}
	for _, f := range fixtures {
		if _, err := repo.Create(ctx, f); err != nil {
			t.Fatalf("Create(%s) failed: %v", f.Name, err)
		}
		clock.Advance(time.Second)
	}

	names := func(records []configuration.Record) []string {
		out := make([]string, 0, len(records))
		for _, r := range records {
			out = append(out, r.Name)
		}
		return out
	}

	tests := []struct {
		name string
		opts configuration.ListOptions
		want []string
	}{
		{name: "all in creation order", opts: configuration.ListOptions{}, want: []string{"alpha", "beta", "gamma", "delta"}},
		{name: "search by name", opts: configuration.ListOptions{SearchTerm: "alp"}, want: []string{"alpha"}},
		{name: "search by json", opts: configuration.ListOptions{SearchTerm: "easy"}, want: []string{"alpha", "gamma"}},
		{name: "wildcards are literal", opts: configuration.ListOptions{SearchTerm: "%_"}, want: []string{"gamma"}},
		{name: "take", opts: configuration.ListOptions{Take: configuration.IntPtr(2)}, want: []string{"alpha", "beta"}},
		{name: "skip", opts: configuration.ListOptions{Skip: configuration.IntPtr(3)}, want: []string{"delta"}},
		{name: "skip and take", opts: configuration.ListOptions{Skip: configuration.IntPtr(1), Take: configuration.IntPtr(2)}, want: []string{"beta", "gamma"}},
		{name: "filter then paginate", opts: configuration.ListOptions{SearchTerm: "easy", Skip: configuration.IntPtr(1)}, want: []string{"gamma"}},
		{name: "take zero", opts: configuration.ListOptions{Take: configuration.IntPtr(0)}, want: []string{}},
		{name: "skip past end", opts: configuration.ListOptions{Skip: configuration.IntPtr(10)}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetAll(ctx, tt.opts)
			if err != nil {
				t.Fatalf("GetAll() failed: %v", err)
			}
			if fmt.Sprint(names(got)) != fmt.Sprint(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, names(got))
			}
		})
	}
}

func TestConfigurationRepository_Exists(t *testing.T) {
	ctx := context.Background()
	repo := newRepository(t)

	exists, err := repo.Exists(ctx, "Config1")
	if err != nil || exists {
		t.Fatalf("expected (false, nil), got (%v, %v)", exists, err)
	}

	if _, err := repo.Create(ctx, configuration.Record{Name: "Config1", JSONConfig: "{}"}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	exists, err = repo.Exists(ctx, "Config1")
	if err != nil || !exists {
		t.Errorf("expected (true, nil), got (%v, %v)", exists, err)
	}
}

func TestConfigurationRepository_Ping(t *testing.T) {
	repo := newRepository(t)
	if err := repo.Ping(context.Background()); err != nil {
		t.Errorf("Ping() failed: %v", err)
	}
}

func TestConfigurationRepository_CancelledContext(t *testing.T) {
	repo := newRepository(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Create(ctx, configuration.Record{Name: "cancelled", JSONConfig: "{}"})
	if !errors.Is(err, configuration.ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled to stay visible, got %v", err)
	}

	exists, err := repo.Exists(context.Background(), "cancelled")
	if err != nil || exists {
		t.Errorf("cancelled create must not write, got (%v, %v)", exists, err)
	}
}
