package di

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-game-config/configuration"
	"github.com/goliatone/go-game-config/internal/config"
	"github.com/goliatone/go-game-config/internal/seed"
)

// TestConfigurationLifecycle walks a record through create, duplicate,
// list, rename, delete and lookup over sqlite with the in-process cache.
func TestConfigurationLifecycle(t *testing.T) {
	for _, backend := range []string{config.CacheMemory, config.CacheNone} {
		t.Run(backend, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Cache.Backend = backend
			svc := newTestContainer(t, cfg).Service()
			ctx := context.Background()

			created, err := svc.Create(ctx, configuration.Record{Name: "Config1", JSONConfig: "{}"})
			if err != nil {
				t.Fatalf("Create() failed: %v", err)
			}
			if created.ID == "" {
				t.Fatal("Expected an id to be assigned")
			}

			_, err = svc.Create(ctx, configuration.Record{Name: "Config1", JSONConfig: "{}"})
			if !errors.Is(err, configuration.ErrDuplicateName) {
				t.Fatalf("Expected ErrDuplicateName, got %v", err)
			}

			all, err := svc.GetAll(ctx, configuration.ListOptions{})
			if err != nil {
				t.Fatalf("GetAll() failed: %v", err)
			}
			if len(all) != 1 || all[0].Name != "Config1" {
				t.Fatalf("Expected exactly Config1, got %+v", all)
			}

			// warm the cache so the rename must invalidate it
			if _, err := svc.GetByID(ctx, created.ID); err != nil {
				t.Fatalf("GetByID() failed: %v", err)
			}

			renamed := *created
			renamed.Name = "Config1Renamed"
			updated, err := svc.Update(ctx, renamed)
			if err != nil {
				t.Fatalf("Update() failed: %v", err)
			}
			if !updated.UpdatedAt.After(created.UpdatedAt) {
				t.Errorf("Expected UpdatedAt to increase: %v -> %v", created.UpdatedAt, updated.UpdatedAt)
			}

			got, err := svc.GetByID(ctx, created.ID)
			if err != nil || got == nil || got.Name != "Config1Renamed" {
				t.Fatalf("Expected renamed record, got (%+v, %v)", got, err)
			}

			if err := svc.Delete(ctx, created.ID); err != nil {
				t.Fatalf("Delete() failed: %v", err)
			}

			got, err = svc.GetByID(ctx, created.ID)
			if err != nil || got != nil {
				t.Fatalf("Expected absence after delete, got (%+v, %v)", got, err)
			}
		})
	}
}

func TestHTTPLifecycle(t *testing.T) {
	router := newTestContainer(t, testConfig(t)).Router()

	send := func(method, path string, body any) *httptest.ResponseRecorder {
		t.Helper()
		var buf bytes.Buffer
		if body != nil {
			if err := json.NewEncoder(&buf).Encode(body); err != nil {
				t.Fatal(err)
			}
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := send(http.MethodPost, "/api/configuration", map[string]string{"name": "Config1", "jsonConfig": `{"lives":3}`})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created configuration.Record
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if loc := w.Header().Get("Location"); loc != "/api/configuration/"+created.ID {
		t.Errorf("Unexpected Location %q", loc)
	}

	if w := send(http.MethodPost, "/api/configuration", map[string]string{"name": "Config1", "jsonConfig": "{}"}); w.Code != http.StatusConflict {
		t.Errorf("Expected 409, got %d", w.Code)
	}

	created.Name = "Config1Renamed"
	if w := send(http.MethodPut, "/api/configuration/"+created.ID, created); w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = send(http.MethodGet, "/api/configuration/"+created.ID, nil)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte("Config1Renamed")) {
		t.Fatalf("Expected renamed record, got %d: %s", w.Code, w.Body.String())
	}

	if w := send(http.MethodDelete, "/api/configuration/"+created.ID, nil); w.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", w.Code)
	}
	if w := send(http.MethodGet, "/api/configuration/"+created.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
	if w := send(http.MethodGet, "/api/configuration/dbtest", nil); w.Code != http.StatusOK {
		t.Errorf("Expected 200 from dbtest, got %d", w.Code)
	}
}

func TestSeedThroughContainer(t *testing.T) {
	container := newTestContainer(t, testConfig(t))
	ctx := context.Background()

	created, err := seed.Run(ctx, container.Service(), nil)
	if err != nil || !created {
		t.Fatalf("Expected first seed to create, got (%v, %v)", created, err)
	}
	created, err = seed.Run(ctx, container.Service(), nil)
	if err != nil || created {
		t.Fatalf("Expected second seed to be a no-op, got (%v, %v)", created, err)
	}

	rec, err := container.Service().GetByName(ctx, seed.DefaultName)
	if err != nil || rec == nil {
		t.Fatalf("Expected seeded record, got (%v, %v)", rec, err)
	}
}

// TestConcurrentAccess mixes cached reads and writes from many goroutines.
func TestConcurrentAccess(t *testing.T) {
	svc := newTestContainer(t, testConfig(t)).Service()
	ctx := context.Background()

	const records = 20
	ids := make([]string, records)
	for i := 0; i < records; i++ {
		rec, err := svc.Create(ctx, configuration.Record{
			Name:       fmt.Sprintf("Config %d", i),
			JSONConfig: fmt.Sprintf(`{"level":%d}`, i),
		})
		if err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
		ids[i] = rec.ID
	}

	const workers = 10
	const opsPerWorker = 20

	var wg sync.WaitGroup
	errs := make(chan error, workers*opsPerWorker)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < opsPerWorker; j++ {
				id := ids[(worker+j)%records]
				if j%5 == 0 {
					_, err := svc.Update(ctx, configuration.Record{
						ID:         id,
						Name:       fmt.Sprintf("Config %d", (worker+j)%records),
						JSONConfig: fmt.Sprintf(`{"worker":%d,"op":%d}`, worker, j),
					})
					if err != nil {
						errs <- fmt.Errorf("worker %d update: %w", worker, err)
					}
					continue
				}
				rec, err := svc.GetByID(ctx, id)
				if err != nil {
					errs <- fmt.Errorf("worker %d get: %w", worker, err)
					continue
				}
				if rec == nil || rec.ID != id {
					errs <- fmt.Errorf("worker %d: unexpected record %+v", worker, rec)
				}
			}
		}(w)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	// a final sequential write per record must be visible to cached reads
	for i, id := range ids {
		want := fmt.Sprintf(`{"final":%d}`, i)
		if _, err := svc.Update(ctx, configuration.Record{ID: id, Name: fmt.Sprintf("Config %d", i), JSONConfig: want}); err != nil {
			t.Fatalf("Update() failed: %v", err)
		}
		cached, err := svc.GetByID(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if cached.JSONConfig != want {
			t.Errorf("Record %s: expected %s, got %s", id, want, cached.JSONConfig)
		}
	}
}

func TestRequestTimeoutReachesStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.RequestTimeout = time.Nanosecond
	router := newTestContainer(t, cfg).Router()

	req := httptest.NewRequest(http.MethodGet, "/api/configuration", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500 for an expired request context, got %d", w.Code)
	}
}
