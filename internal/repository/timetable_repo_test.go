package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"campus-portal/backend/internal/model"
	"campus-portal/backend/pkg/database"
)

func exerciseTimetableRepo(t *testing.T, repo TimetableRepository) {
	t.Helper()
	ctx := context.Background()

	cells := []model.TimetableSlot{
		{ClassName: "IT-B", Day: "Tuesday", TimeSlot: "10:00 AM - 12:00 PM", Subject: "Database Management Systems"},
		{ClassName: "IT-B", Day: "Monday", TimeSlot: "9:00 AM - 11:00 AM", Subject: "Computer Networks"},
		{ClassName: "IT-B", Day: "Wednesday", TimeSlot: "1:00 PM - 3:00 PM", Subject: "Operating Systems"},
		{ClassName: "IT-A", Day: "Monday", TimeSlot: "9:00 AM - 11:00 AM", Subject: "Mathematics"},
	}
	for i := range cells {
		require.NoError(t, repo.Upsert(ctx, &cells[i]))
	}

	slots, err := repo.ListByClass(ctx, "IT-B")
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, "Computer Networks", slots[0].Subject)
	assert.Equal(t, "Database Management Systems", slots[1].Subject)
	assert.Equal(t, "Operating Systems", slots[2].Subject)

	// 覆盖单元格不影响其他单元格与其他班级
	require.NoError(t, repo.Upsert(ctx, &model.TimetableSlot{
		ClassName: "IT-B", Day: "Monday", TimeSlot: "9:00 AM - 11:00 AM", Subject: "Software Engineering", Room: "Lab 3",
	}))
	slots, _ = repo.ListByClass(ctx, "IT-B")
	require.Len(t, slots, 3)
	assert.Equal(t, "Software Engineering", slots[0].Subject)
	assert.Equal(t, "Lab 3", slots[0].Room)

	other, _ := repo.ListByClass(ctx, "IT-A")
	require.Len(t, other, 1)
	assert.Equal(t, "Mathematics", other[0].Subject)

	require.NoError(t, repo.Delete(ctx, "IT-B", "Tuesday", "10:00 AM - 12:00 PM"))
	assert.ErrorIs(t, repo.Delete(ctx, "IT-B", "Tuesday", "10:00 AM - 12:00 PM"), gorm.ErrRecordNotFound)

	slots, _ = repo.ListByClass(ctx, "IT-B")
	assert.Len(t, slots, 2)

	empty, err := repo.ListByClass(ctx, "CSE-A")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryTimetableRepo(t *testing.T) {
	exerciseTimetableRepo(t, NewMemoryTimetableRepo())
}

func TestSQLiteTimetableRepo(t *testing.T) {
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "timetable.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := NewSQLiteTimetableRepo(context.Background(), db)
	require.NoError(t, err)
	exerciseTimetableRepo(t, repo)
}

func TestSortSlots_ByStartTimeThenWeekday(t *testing.T) {
	slots := []model.TimetableSlot{
		{Day: "Friday", TimeSlot: "11:00 AM - 1:00 PM"},
		{Day: "Thursday", TimeSlot: "9:00 AM - 11:00 AM"},
		{Day: "Monday", TimeSlot: "9:00 AM - 11:00 AM"},
		{Day: "Monday", TimeSlot: "free period"},
	}
	SortSlots(slots)

	assert.Equal(t, "Monday", slots[0].Day)
	assert.Equal(t, "Thursday", slots[1].Day)
	assert.Equal(t, "11:00 AM - 1:00 PM", slots[2].TimeSlot)
	assert.Equal(t, "free period", slots[3].TimeSlot)
}

func TestMemorySessionRepo_Expiry(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepo().(*memorySessionRepo)

	now := mustTime(t, "2024-05-01T10:00:00Z")
	repo.now = func() time.Time { return now }

	require.NoError(t, repo.Save(ctx, &Session{ID: "s1", ExpiresAt: now.Add(time.Hour)}))
	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)

	now = now.Add(2 * time.Hour)
	_, err = repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.NoError(t, repo.Delete(ctx, "s1"))
	assert.NoError(t, repo.Delete(ctx, "never-existed"))
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return v
}
