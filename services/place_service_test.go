package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placeReviewsAPI/internal/storage"
	"placeReviewsAPI/internal/types/place"
)

func newLoadedService(t *testing.T, blobs storage.BlobStore) *PlaceService {
	t.Helper()
	svc := NewPlaceService(blobs, nil)
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func findPlace(t *testing.T, places []place.Place, name string) place.Place {
	t.Helper()
	for _, p := range places {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("place %q not found", name)
	return place.Place{}
}

type failingStore struct {
	storage.BlobStore
}

func (f failingStore) Put(ctx context.Context, key string, value []byte) error {
	return errors.New("disk full")
}

func TestLoadSeedsAndPersistsWhenEmpty(t *testing.T) {
	ctx := context.Background()
	blobs := storage.NewMemoryStore()
	svc := newLoadedService(t, blobs)

	places := svc.Places(ctx)
	require.Len(t, places, 5)
	assert.Equal(t, "Hobbitfalva", places[0].Name)

	data, err := blobs.Get(ctx, PlacesKey)
	require.NoError(t, err)

	var stored []place.Place
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Equal(t, places, stored)
}

func TestLoadRejectsCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	blobs := storage.NewMemoryStore()
	require.NoError(t, blobs.Put(ctx, PlacesKey, []byte(`{not json`)))

	svc := NewPlaceService(blobs, nil)
	err := svc.Load(ctx)
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
}

func TestLoadKeepsStoredRatingsAsIs(t *testing.T) {
	ctx := context.Background()
	blobs := storage.NewMemoryStore()
	require.NoError(t, blobs.Put(ctx, PlacesKey,
		[]byte(`[{"id":7,"name":"Moria","reviews":[{"id":1,"user":"Gimli","text":"Hmm","rating":9}]}]`)))

	svc := newLoadedService(t, blobs)
	p, err := svc.Place(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 9, p.Reviews[0].Rating)
}

func TestMordorExample(t *testing.T) {
	ctx := context.Background()
	svc := newLoadedService(t, storage.NewMemoryStore())

	mordor := findPlace(t, svc.Places(ctx), "Mordor")
	require.Len(t, mordor.Reviews, 4)

	require.NoError(t, svc.RemoveReview(ctx, mordor.ID, mordor.Reviews[1].ID))

	after, err := svc.Place(ctx, mordor.ID)
	require.NoError(t, err)
	assert.Len(t, after.Reviews, 3)
	for _, r := range after.Reviews {
		assert.NotEqual(t, mordor.Reviews[1].ID, r.ID)
	}

	require.NoError(t, svc.RemovePlace(ctx, mordor.ID))
	_, err = svc.Place(ctx, mordor.ID)
	assert.ErrorIs(t, err, ErrPlaceNotFound)
	assert.Len(t, svc.Places(ctx), 4)
}

func TestAddPlace(t *testing.T) {
	ctx := context.Background()
	svc := newLoadedService(t, storage.NewMemoryStore())

	p, err := svc.AddPlace(ctx, place.CreatePlaceRequest{Name: "  Bree ", Description: "Pónilovacska"})
	require.NoError(t, err)
	assert.Equal(t, "Bree", p.Name)
	assert.NotNil(t, p.Reviews)
	assert.Empty(t, p.Reviews)

	places := svc.Places(ctx)
	require.Len(t, places, 6)
	assert.Equal(t, p.ID, places[5].ID, "new places go to the end")

	_, err = svc.AddPlace(ctx, place.CreatePlaceRequest{Name: "   "})
	assert.ErrorIs(t, err, ErrEmptyName)
	assert.Len(t, svc.Places(ctx), 6)
}

func TestAddPlaceIDsNeverCollide(t *testing.T) {
	ctx := context.Background()
	svc := newLoadedService(t, storage.NewMemoryStore())
	fixed := time.UnixMilli(1_700_000_000_000)
	svc.ids.now = func() time.Time { return fixed }

	seen := map[int64]bool{}
	for i := 0; i < 50; i++ {
		p, err := svc.AddPlace(ctx, place.CreatePlaceRequest{Name: "Rohan"})
		require.NoError(t, err)
		assert.False(t, seen[p.ID])
		seen[p.ID] = true
	}
}

func TestAddReview(t *testing.T) {
	ctx := context.Background()
	svc := newLoadedService(t, storage.NewMemoryStore())
	p, err := svc.AddPlace(ctx, place.CreatePlaceRequest{Name: "Bree"})
	require.NoError(t, err)

	r, err := svc.AddReview(ctx, p.ID, place.ReviewInput{User: "", Text: "Jó sör", Rating: 42})
	require.NoError(t, err)
	assert.Equal(t, place.AnonymousUser, r.User)
	assert.Equal(t, 5, r.Rating)

	r2, err := svc.AddReview(ctx, p.ID, place.ReviewInput{User: "Aragorn", Text: "Sötét sarok", Rating: -1})
	require.NoError(t, err)
	assert.Equal(t, 1, r2.Rating)
	assert.NotEqual(t, r.ID, r2.ID)

	got, err := svc.Place(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Reviews, 2)
	assert.Equal(t, "Aragorn", got.Reviews[1].User)

	_, err = svc.AddReview(ctx, p.ID, place.ReviewInput{User: "Aragorn", Text: "  "})
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = svc.AddReview(ctx, 999, place.ReviewInput{Text: "hello"})
	assert.ErrorIs(t, err, ErrPlaceNotFound)
}

func TestRemoveReviewErrors(t *testing.T) {
	ctx := context.Background()
	svc := newLoadedService(t, storage.NewMemoryStore())

	assert.ErrorIs(t, svc.RemoveReview(ctx, 999, 1), ErrPlaceNotFound)
	assert.ErrorIs(t, svc.RemoveReview(ctx, 2, 999), ErrReviewNotFound)
	assert.ErrorIs(t, svc.RemovePlace(ctx, 999), ErrPlaceNotFound)
}

func TestRemovingAllReviewsLeavesEmptyList(t *testing.T) {
	ctx := context.Background()
	svc := newLoadedService(t, storage.NewMemoryStore())

	mordor := findPlace(t, svc.Places(ctx), "Mordor")
	for _, r := range mordor.Reviews {
		require.NoError(t, svc.RemoveReview(ctx, mordor.ID, r.ID))
	}

	got, err := svc.Place(ctx, mordor.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Reviews)
	assert.Empty(t, got.Reviews)
}

func TestReadsAreCopies(t *testing.T) {
	ctx := context.Background()
	svc := newLoadedService(t, storage.NewMemoryStore())

	places := svc.Places(ctx)
	places[0].Name = "changed"
	places[0].Reviews[0].Text = "changed"

	fresh := svc.Places(ctx)
	assert.Equal(t, "Hobbitfalva", fresh[0].Name)
	assert.NotEqual(t, "changed", fresh[0].Reviews[0].Text)
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	svc := NewPlaceService(failingStore{storage.NewMemoryStore()}, nil)
	require.NoError(t, svc.Load(ctx))

	p, err := svc.AddPlace(ctx, place.CreatePlaceRequest{Name: "Isengard"})
	require.NoError(t, err)

	_, err = svc.Place(ctx, p.ID)
	assert.NoError(t, err)
}

func TestResetRestoresSeed(t *testing.T) {
	ctx := context.Background()
	blobs := storage.NewMemoryStore()
	svc := newLoadedService(t, blobs)

	require.NoError(t, svc.RemovePlace(ctx, 1))
	svc.Reset(ctx)

	assert.Len(t, svc.Places(ctx), 5)
	reloaded := newLoadedService(t, blobs)
	assert.Equal(t, svc.Places(ctx), reloaded.Places(ctx))
}

// TestRandomSequences drives random mutations and checks that removed places
// leave no reviews behind and that a reload reproduces the same store.
func TestRandomSequences(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 20; run++ {
		blobs := storage.NewMemoryStore()
		svc := newLoadedService(t, blobs)
		removed := map[int64]bool{}

		for step := 0; step < 60; step++ {
			places := svc.Places(ctx)
			switch op := rng.Intn(4); {
			case op == 0 || len(places) == 0:
				_, err := svc.AddPlace(ctx, place.CreatePlaceRequest{Name: "Hely"})
				require.NoError(t, err)
			case op == 1:
				p := places[rng.Intn(len(places))]
				require.NoError(t, svc.RemovePlace(ctx, p.ID))
				removed[p.ID] = true
			case op == 2:
				p := places[rng.Intn(len(places))]
				_, err := svc.AddReview(ctx, p.ID, place.ReviewInput{User: "Samu", Text: "ok", Rating: rng.Intn(11) - 3})
				require.NoError(t, err)
			default:
				p := places[rng.Intn(len(places))]
				if len(p.Reviews) == 0 {
					continue
				}
				r := p.Reviews[rng.Intn(len(p.Reviews))]
				require.NoError(t, svc.RemoveReview(ctx, p.ID, r.ID))
			}
		}

		ids := map[int64]bool{}
		for _, p := range svc.Places(ctx) {
			assert.False(t, removed[p.ID], "removed place %d is back", p.ID)
			assert.False(t, ids[p.ID], "duplicate place id %d", p.ID)
			ids[p.ID] = true
			for _, r := range p.Reviews {
				assert.GreaterOrEqual(t, r.Rating, place.MinRating)
				assert.LessOrEqual(t, r.Rating, place.MaxRating)
			}
		}

		reloaded := newLoadedService(t, blobs)
		assert.Equal(t, svc.Places(ctx), reloaded.Places(ctx))
	}
}

func TestIDGenerator(t *testing.T) {
	g := NewIDGenerator()
	now := time.UnixMilli(1000)
	g.now = func() time.Time { return now }

	assert.Equal(t, int64(1000), g.Next(0))
	assert.Equal(t, int64(1001), g.Next(0))
	assert.Equal(t, int64(5001), g.Next(5000))

	now = time.UnixMilli(9000)
	assert.Equal(t, int64(9000), g.Next(10))
}

type flakyStore struct {
	*storage.MemoryStore
	down bool
}

func (f *flakyStore) Put(ctx context.Context, key string, value []byte) error {
	if f.down {
		return errors.New("connection refused")
	}
	return f.MemoryStore.Put(ctx, key, value)
}

func TestFlushRetriesFailedWrite(t *testing.T) {
	ctx := context.Background()
	blobs := &flakyStore{MemoryStore: storage.NewMemoryStore()}
	svc := NewPlaceService(blobs, nil)
	require.NoError(t, svc.Load(ctx))
	assert.False(t, svc.Pending())
	require.NoError(t, svc.Flush(ctx))

	blobs.down = true
	p, err := svc.AddPlace(ctx, place.CreatePlaceRequest{Name: "Isengard"})
	require.NoError(t, err)
	assert.True(t, svc.Pending())
	assert.Error(t, svc.Flush(ctx))
	assert.True(t, svc.Pending())

	blobs.down = false
	require.NoError(t, svc.Flush(ctx))
	assert.False(t, svc.Pending())

	reloaded := newLoadedService(t, blobs.MemoryStore)
	_, err = reloaded.Place(ctx, p.ID)
	assert.NoError(t, err)
}

func TestConcurrentMutationsAreSerialized(t *testing.T) {
	ctx := context.Background()
	blobs := storage.NewMemoryStore()
	svc := newLoadedService(t, blobs)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, err := svc.AddPlace(ctx, place.CreatePlaceRequest{Name: fmt.Sprintf("Place %d", i)})
			assert.NoError(t, err)
		}(i)
		go func(i int) {
			defer wg.Done()
			_, err := svc.AddReview(ctx, 2, place.ReviewInput{User: "Orc", Text: fmt.Sprintf("review %d", i), Rating: 1})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	places := svc.Places(ctx)
	assert.Len(t, places, 5+n)

	mordor, err := svc.Place(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, mordor.Reviews, 4+n)

	ids := make(map[int64]bool)
	for _, p := range places {
		assert.False(t, ids[p.ID], "duplicate place id %d", p.ID)
		ids[p.ID] = true
	}

	reloaded := newLoadedService(t, blobs)
	assert.Equal(t, places, reloaded.Places(ctx))
}

func TestSnapshotReturnsStoredBlob(t *testing.T) {
	ctx := context.Background()
	blobs := &flakyStore{MemoryStore: storage.NewMemoryStore()}
	svc := NewPlaceService(blobs, nil)
	require.NoError(t, svc.Load(ctx))

	stored, err := svc.Snapshot(ctx)
	require.NoError(t, err)

	blobs.down = true
	_, err = svc.AddPlace(ctx, place.CreatePlaceRequest{Name: "Isengard"})
	require.NoError(t, err)

	snapshot, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, stored, snapshot)
	assert.NotContains(t, string(snapshot), "Isengard")

	blobs.down = false
	require.NoError(t, svc.Flush(ctx))
	snapshot, err = svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(snapshot), "Isengard")
}

func TestLoadIsNotCountedAsMutation(t *testing.T) {
	ctx := context.Background()
	before := counterValue(t, placeMutationsTotal.WithLabelValues("load"))
	addsBefore := counterValue(t, placeMutationsTotal.WithLabelValues("add_place"))

	svc := newLoadedService(t, storage.NewMemoryStore())
	_, err := svc.AddPlace(ctx, place.CreatePlaceRequest{Name: "Bree"})
	require.NoError(t, err)

	assert.Equal(t, before, counterValue(t, placeMutationsTotal.WithLabelValues("load")))
	assert.Equal(t, addsBefore+1, counterValue(t, placeMutationsTotal.WithLabelValues("add_place")))
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}
