package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/calendar-widget-tui/internal/models"
)

func TestSaveAndLoadCounts(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	counts := models.CountsByDate{"2023-05-01": 2, "2023-05-15": 5}
	require.NoError(t, db.SaveCounts(ctx, counts))

	got, err := db.LoadCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, counts, got)
}

func TestSaveCounts_ReplacesPrevious(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	require.NoError(t, db.SaveCounts(ctx, models.CountsByDate{"2023-05-01": 2}))
	require.NoError(t, db.SaveCounts(ctx, models.CountsByDate{"2023-06-01": 1}))

	got, err := db.LoadCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.CountsByDate{"2023-06-01": 1}, got)
}

func TestSaveCounts_RejectsInvalid(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	require.NoError(t, db.SaveCounts(ctx, models.CountsByDate{"2023-05-01": 2}))

	err := db.SaveCounts(ctx, models.CountsByDate{"2023-05-01": -1})
	assert.ErrorIs(t, err, models.ErrNegativeCount)

	// previous cache survives the rejected write
	got, err := db.LoadCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, got["2023-05-01"])
}

func TestLoadCounts_Empty(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	got, err := db.LoadCounts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestCachedAt(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	_, ok, err := db.CachedAt(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	before := time.Now().Add(-time.Second)
	require.NoError(t, db.SaveCounts(ctx, models.CountsByDate{"2023-05-01": 1}))

	at, ok, err := db.CachedAt(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, at.After(before))
}

func TestInsertRefresh_AssignsID(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	rec := &models.RefreshRecord{Origin: models.OriginDocument, Entries: 3, Total: 7}
	require.NoError(t, db.InsertRefresh(ctx, rec))
	assert.Len(t, rec.ID, 36)
	assert.False(t, rec.RefreshedAt.IsZero())
}

func TestGetRecentRefreshes(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	base := time.Date(2023, 5, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		rec := &models.RefreshRecord{
			RefreshedAt: base.Add(time.Duration(i) * time.Hour),
			Origin:      models.OriginDocument,
			Entries:     i,
			Total:       i * 2,
		}
		if i == 4 {
			rec.Origin = models.OriginCache
			rec.Error = "shared document missing"
		}
		require.NoError(t, db.InsertRefresh(ctx, rec))
	}

	got, err := db.GetRecentRefreshes(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, 4, got[0].Entries)
	assert.Equal(t, models.OriginCache, got[0].Origin)
	assert.Equal(t, "shared document missing", got[0].Error)
	assert.True(t, got[0].RefreshedAt.Equal(base.Add(4*time.Hour)))
	assert.Equal(t, 3, got[1].Entries)
	assert.Empty(t, got[1].Error)
}

func TestGetDailyTotals(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	require.NoError(t, db.SaveCounts(ctx, models.CountsByDate{
		"2023-04-30": 9,
		"2023-05-02": 4,
		"2023-05-03": 1,
		"2023-05-04": 6,
	}))

	end := time.Date(2023, 5, 3, 15, 0, 0, 0, time.UTC)
	got, err := db.GetDailyTotals(ctx, end, 3)
	require.NoError(t, err)

	assert.Equal(t, []models.DailyTotal{
		{Date: "2023-05-01", Total: 0},
		{Date: "2023-05-02", Total: 4},
		{Date: "2023-05-03", Total: 1},
	}, got)
}

func TestGetDailyTotals_ZeroDays(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	got, err := db.GetDailyTotals(context.Background(), time.Now(), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPruneRefreshes(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	old := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.InsertRefresh(ctx, &models.RefreshRecord{RefreshedAt: old}))
	require.NoError(t, db.InsertRefresh(ctx, &models.RefreshRecord{RefreshedAt: recent}))

	n, err := db.PruneRefreshes(ctx, time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := db.GetRecentRefreshes(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].RefreshedAt.Equal(recent))
}
