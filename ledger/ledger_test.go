package ledger

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pevans/boardblog/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: create a ledger whose clock advances one minute per call
func createTestLedger(t *testing.T) *Ledger {
	dbPath := filepath.Join(t.TempDir(), "state", "ledger.db")
	l, err := Open(dbPath)
	require.NoError(t, err, "should open ledger")
	t.Cleanup(func() { l.Close() })

	clock := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return l
}

func testRecord(sourceURL, identifier string) Record {
	return Record{
		SourceURL:  sourceURL,
		Identifier: identifier,
		Title:      "농지연금 개편안 발표",
		Date:       "2024.03.05",
		RunID:      uuid.New(),
	}
}

// TestOpen_InitializesSchema verifies an empty ledger can be queried
func TestOpen_InitializesSchema(t *testing.T) {
	l := createTestLedger(t)

	records, err := l.List(0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

// TestOpen_Memory verifies the in-memory DSN works
func TestOpen_Memory(t *testing.T) {
	l, err := Open(":memory:")
	require.NoError(t, err)
	defer l.Close()

	require.NoError(t, l.Upsert(testRecord("https://a", "a")))
	_, err = l.Get("https://a")
	assert.NoError(t, err)
}

// TestUpsert_InsertAndGet verifies a record round-trips
func TestUpsert_InsertAndGet(t *testing.T) {
	l := createTestLedger(t)
	rec := testRecord("https://www.fbo.or.kr/info/bbs/NoticeView.do?id=1", "농지연금-개편안-발표")

	require.NoError(t, l.Upsert(rec))

	got, err := l.Get(rec.SourceURL)
	require.NoError(t, err)
	assert.Equal(t, rec.Identifier, got.Identifier)
	assert.Equal(t, rec.Title, got.Title)
	assert.Equal(t, rec.Date, got.Date)
	assert.Equal(t, rec.RunID, got.RunID)
	assert.Equal(t, got.FirstSeenAt, got.UpdatedAt)
}

// TestUpsert_PreservesFirstSeen verifies updates keep first_seen_at
func TestUpsert_PreservesFirstSeen(t *testing.T) {
	l := createTestLedger(t)
	rec := testRecord("https://a", "a")
	require.NoError(t, l.Upsert(rec))

	first, err := l.Get("https://a")
	require.NoError(t, err)

	rec.Title = "수정된 제목"
	require.NoError(t, l.Upsert(rec))

	second, err := l.Get("https://a")
	require.NoError(t, err)
	assert.Equal(t, "수정된 제목", second.Title)
	assert.Equal(t, first.FirstSeenAt, second.FirstSeenAt)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

// TestUpsert_IdentifierTaken verifies identifiers stay unique
func TestUpsert_IdentifierTaken(t *testing.T) {
	l := createTestLedger(t)
	require.NoError(t, l.Upsert(testRecord("https://a", "same")))

	err := l.Upsert(testRecord("https://b", "same"))

	assert.True(t, errors.Is(err, ErrIdentifierTaken))
}

// TestGet_NotFound verifies the sentinel error
func TestGet_NotFound(t *testing.T) {
	l := createTestLedger(t)

	_, err := l.Get("https://missing")

	assert.ErrorIs(t, err, ErrNotFound)
}

// TestClaims verifies lookups in both directions
func TestClaims(t *testing.T) {
	l := createTestLedger(t)
	require.NoError(t, l.Upsert(testRecord("https://a", "alpha")))

	id, ok, err := l.IdentifierFor("https://a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alpha", id)

	_, ok, err = l.IdentifierFor("https://b")
	require.NoError(t, err)
	assert.False(t, ok)

	owner, ok, err := l.OwnerOf("alpha")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://a", owner)

	_, ok, err = l.OwnerOf("beta")
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestLedger_BacksRegistry verifies a later run avoids identifiers owned by
// other articles and keeps its own
func TestLedger_BacksRegistry(t *testing.T) {
	l := createTestLedger(t)
	require.NoError(t, l.Upsert(testRecord("https://a", "공지")))

	registry := identity.NewRegistry(l)

	other, err := registry.Assign("https://b", "공지")
	require.NoError(t, err)
	assert.Equal(t, "공지-2", other.Identifier)
	assert.True(t, other.Collided)

	same, err := registry.Assign("https://a", "다른 제목")
	require.NoError(t, err)
	assert.Equal(t, "공지", same.Identifier)
	assert.True(t, same.Reused)
}

// TestList_OrderAndLimit verifies most recent first and the limit
func TestList_OrderAndLimit(t *testing.T) {
	l := createTestLedger(t)
	require.NoError(t, l.Upsert(testRecord("https://a", "a")))
	require.NoError(t, l.Upsert(testRecord("https://b", "b")))
	require.NoError(t, l.Upsert(testRecord("https://c", "c")))

	all, err := l.List(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].Identifier)
	assert.Equal(t, "a", all[2].Identifier)

	limited, err := l.List(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

// TestRuns verifies run bookkeeping
func TestRuns(t *testing.T) {
	l := createTestLedger(t)

	run, err := l.BeginRun()
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, run.RunID)

	started, err := l.GetRun(run.RunID)
	require.NoError(t, err)
	assert.Nil(t, started.FinishedAt)

	counts := Counts{Discovered: 5, Written: 3, Skipped: 1, Failed: 1, Collisions: 1}
	require.NoError(t, l.FinishRun(run.RunID, counts))

	finished, err := l.GetRun(run.RunID)
	require.NoError(t, err)
	require.NotNil(t, finished.FinishedAt)
	assert.Equal(t, counts, finished.Counts)
	assert.True(t, finished.FinishedAt.After(finished.StartedAt))
}

// TestFinishRun_NotFound verifies unknown runs are reported
func TestFinishRun_NotFound(t *testing.T) {
	l := createTestLedger(t)

	err := l.FinishRun(uuid.New(), Counts{})

	assert.ErrorIs(t, err, ErrNotFound)
}
