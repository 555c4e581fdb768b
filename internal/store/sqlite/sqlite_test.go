package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maloquacious/roster/internal/people"
	"github.com/maloquacious/roster/internal/store"
)

const testSchema = "0.1"

// createTestStore opens and initializes a store in a fresh temp dir.
func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "test.db"), testSchema)
	require.NoError(t, s.Open())
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.InitSchema(testSchema))
	return s
}

func record(first, last string) people.Record {
	return people.Record{FirstName: first, LastName: last}
}

func TestInitSchema_SeedsEmptyTable(t *testing.T) {
	s := createTestStore(t)

	list, err := s.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, list, len(seedPeople))

	assert.Equal(t, "Ada", list[0].FirstName)
	assert.Equal(t, "Lovelace", list[0].LastName)
	require.NotNil(t, list[1].ZIP)
	assert.Equal(t, "02142", *list[1].ZIP, "leading zero kept")
	assert.Equal(t, people.True, list[1].Veteran)
	assert.Equal(t, people.False, list[1].Dependents)
}

func TestInitSchema_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, err := s.Count(ctx)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.InitSchema(testSchema), "iteration %d", i)
	}

	second, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestInitSchema_DoesNotSeedPopulatedTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1 := New(path, testSchema)
	require.NoError(t, s1.Open())
	require.NoError(t, s1.InitSchema(testSchema))
	_, err := s1.Insert(context.Background(), record("Edsger", "Dijkstra"))
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	// simulates a process restart
	s2 := New(path, testSchema)
	require.NoError(t, s2.Open())
	defer s2.Close()
	require.NoError(t, s2.InitSchema(testSchema))

	count, err := s2.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(seedPeople)+1, count)
}

func TestInitSchema_NotOpened(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "test.db"), testSchema)
	assert.Error(t, s.InitSchema(testSchema))
}

func TestInsert_AssignsIncreasingIDs(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	list, err := s.ListAll(ctx)
	require.NoError(t, err)
	last := list[len(list)-1].ID

	for _, name := range []string{"A", "B", "C"} {
		p, err := s.Insert(ctx, record(name, "Test"))
		require.NoError(t, err)
		assert.Greater(t, p.ID, last)
		assert.Equal(t, name, p.FirstName)
		last = p.ID
	}
}

func TestInsert_IDsNeverReused(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	p, err := s.Insert(ctx, record("Temp", "Person"))
	require.NoError(t, err)

	// deletion is outside the store contract; do it directly
	_, err = s.db.Exec(`DELETE FROM people WHERE id = ?`, p.ID)
	require.NoError(t, err)

	next, err := s.Insert(ctx, record("Next", "Person"))
	require.NoError(t, err)
	assert.Greater(t, next.ID, p.ID)
}

func TestListAll_InsertionOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		_, err := s.Insert(ctx, record(name, "Order"))
		require.NoError(t, err)
	}

	list, err := s.ListAll(ctx)
	require.NoError(t, err)
	tail := list[len(list)-3:]
	assert.Equal(t, "A", tail[0].FirstName)
	assert.Equal(t, "B", tail[1].FirstName)
	assert.Equal(t, "C", tail[2].FirstName)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].ID, list[i].ID)
	}
}

func TestListAll_EmptyTable(t *testing.T) {
	s := createTestStore(t)
	_, err := s.db.Exec(`DELETE FROM people`)
	require.NoError(t, err)

	list, err := s.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestRoundTrip_UnknownsStayUnknown(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	p, err := s.Insert(ctx, record("No", "Answers"))
	require.NoError(t, err)

	list, err := s.ListAll(ctx)
	require.NoError(t, err)
	got := list[len(list)-1]
	assert.Equal(t, p.ID, got.ID)
	assert.Nil(t, got.DateOfBirth)
	assert.Nil(t, got.Address)
	assert.Nil(t, got.ZIP)
	for i, ts := range got.Indicators() {
		assert.Equal(t, people.Unknown, *ts, people.IndicatorFields[i])
	}
}

func TestRoundTrip_AllFields(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	dob, addr, zip := "1903-12-28", "Fuld Hall, Princeton", "08540"
	rec := people.Record{
		FirstName:   "John",
		LastName:    "von Neumann",
		DateOfBirth: &dob,
		Address:     &addr,
		ZIP:         &zip,
	}
	for i, ts := range rec.Indicators() {
		*ts = people.TristateOf(i%2 == 0)
	}
	rec.Veteran = people.Unknown

	_, err := s.Insert(ctx, rec)
	require.NoError(t, err)

	list, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, rec, list[len(list)-1].Record)
}

func TestInsert_ConcurrentWritersGetUniqueIDs(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	const writers = 20
	ids := make(chan int64, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := s.Insert(ctx, record("Con", "Current"))
			if assert.NoError(t, err) {
				ids <- p.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, writers)
}

func TestInsert_CheckConstraintsBackValidation(t *testing.T) {
	s := createTestStore(t)
	bad := "1234"
	_, err := s.Insert(context.Background(), people.Record{FirstName: "Bad", LastName: "Zip", ZIP: &bad})
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrStorage))
}

func TestStorageFailure_AfterClose(t *testing.T) {
	s := createTestStore(t)
	require.NoError(t, s.Close())

	_, err := s.Insert(context.Background(), record("Closed", "Store"))
	assert.ErrorIs(t, err, store.ErrStorage)

	_, err = s.ListAll(context.Background())
	assert.ErrorIs(t, err, store.ErrStorage)
}

func TestStorageFailure_CloseWhileInUse(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.ListAll(ctx); err != nil {
				errs <- err
			}
			if _, err := s.Insert(ctx, record("Racing", "Close")); err != nil {
				errs <- err
			}
		}()
	}
	require.NoError(t, s.Close())
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.ErrorIs(t, err, store.ErrStorage)
	}

	assert.NoError(t, s.Close(), "closing twice is harmless")
	_, err := s.Count(ctx)
	assert.ErrorIs(t, err, store.ErrStorage)
}

func TestCheckState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s := New(path, testSchema)

	state, err := s.CheckState()
	assert.Error(t, err)
	assert.Equal(t, store.StateMissing, state)

	require.NoError(t, s.Open())
	defer s.Close()

	state, err = s.CheckState()
	require.NoError(t, err)
	assert.Equal(t, store.StateUninitialized, state)

	require.NoError(t, s.InitSchema("0.0"))
	state, err = s.CheckState()
	require.NoError(t, err)
	assert.Equal(t, store.StateVersionMismatch, state)

	require.NoError(t, s.InitSchema(testSchema))
	state, err = s.CheckState()
	require.NoError(t, err)
	assert.Equal(t, store.StateReady, state)

	version, err := s.GetSchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, testSchema, version)
}
