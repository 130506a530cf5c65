package catalog

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/safephase/pkg/errors"
	"github.com/matzehuels/safephase/pkg/phase"
)

func result(n int) *phase.Result {
	r := &phase.Result{N: n, Phases: []phase.Phase{}}
	for i := range n {
		r.Phases = append(r.Phases, phase.Phase{i})
	}
	return r
}

// exerciseStore runs the behaviour every Store must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "J1"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Fatalf("Get on empty store = %v, want NOT_FOUND", err)
	}

	first, err := s.Put(ctx, Entry{Junction: "J1", Result: result(1), CreatedAt: time.Unix(100, 0)})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := uuid.Parse(first.ID); err != nil {
		t.Errorf("generated ID %q is not a UUID", first.ID)
	}
	if _, err := s.Put(ctx, Entry{Junction: "J1", Result: result(2), CreatedAt: time.Unix(200, 0)}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Put(ctx, Entry{Junction: "A", Result: result(3), CreatedAt: time.Unix(150, 0)}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, "J1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Result.N != 2 {
		t.Errorf("Get returned N=%d, want latest entry with N=2", got.Result.N)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Junction != "A" || list[1].Junction != "J1" {
		t.Fatalf("List = %+v, want [A J1]", list)
	}
	if list[1].Result.N != 2 {
		t.Errorf("List should return the latest J1 entry, got N=%d", list[1].Result.N)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close(context.Background())
	exerciseStore(t, s)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("SAFEPHASE_TEST_MONGO")
	if uri == "" {
		t.Skip("SAFEPHASE_TEST_MONGO not set")
	}
	ctx := context.Background()
	s, err := NewMongoStore(ctx, uri, "safephase_test_"+uuid.NewString()[:8])
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = s.coll.Database().Drop(ctx)
		_ = s.Close(ctx)
	}()
	exerciseStore(t, s)
}

func TestNewMongoStoreValidation(t *testing.T) {
	ctx := context.Background()
	if _, err := NewMongoStore(ctx, "http://localhost", "db"); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("bad scheme error = %v, want INVALID_CONFIG", err)
	}
	if _, err := NewMongoStore(ctx, "mongodb://localhost", ""); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("empty database error = %v, want INVALID_CONFIG", err)
	}
}

func TestPutValidation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	tests := []struct {
		name  string
		entry Entry
		code  errors.Code
	}{
		{"missing junction", Entry{Result: result(1)}, errors.ErrCodeInvalidJunction},
		{"missing result", Entry{Junction: "J1"}, errors.ErrCodeInvalidInput},
		{"bad id", Entry{ID: "not-a-uuid", Junction: "J1", Result: result(1)}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Put(ctx, tt.entry); !errors.Is(err, tt.code) {
				t.Errorf("Put() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestPutFillsCreatedAt(t *testing.T) {
	s := NewMemoryStore()
	fixed := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	e, err := s.Put(context.Background(), Entry{Junction: "J1", Result: result(1)})
	if err != nil {
		t.Fatal(err)
	}
	if !e.CreatedAt.Equal(fixed) {
		t.Errorf("CreatedAt = %s, want %s", e.CreatedAt, fixed)
	}
}

func TestMemoryStoreConcurrent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Put(ctx, Entry{Junction: "J1", Result: result(1)}); err != nil {
				t.Error(err)
			}
			_, _ = s.Get(ctx, "J1")
		}()
	}
	wg.Wait()

	if n := len(s.entries["J1"]); n != 16 {
		t.Errorf("stored %d entries, want 16", n)
	}
}
