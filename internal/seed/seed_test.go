package seed

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"campus-portal/backend/internal/model"
	"campus-portal/backend/internal/repository"
)

func TestDemoUsers_FreshCopy(t *testing.T) {
	a := DemoUsers()
	a[0].Name = "changed"

	b := DemoUsers()
	assert.Equal(t, "Priya Sharma", b[0].Name)
	assert.Len(t, b, 4)
}

func TestLoad_MemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepository(DemoUsers())
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, Load(ctx, repo, "", now, zap.NewNop()))

	certs, err := repo.Certificate.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, len(Certificates()), certs)

	slots, err := repo.Timetable.ListByClass(ctx, DemoClass)
	require.NoError(t, err)
	assert.Len(t, slots, 5)
	assert.Equal(t, "Monday", slots[0].Day, "9:00 AM 的两格中 Monday 在前")

	att, err := repo.Attendance.Count(ctx, repository.Eq("student_id", "1"))
	require.NoError(t, err)
	assert.EqualValues(t, 6, att)

	subs, err := repo.Submission.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, subs)

	replies, err := repo.DoubtReply.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, replies)
}

func TestLoad_SkipsWhenSeeded(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepository(DemoUsers())
	now := time.Now()

	require.NoError(t, Load(ctx, repo, "", now, zap.NewNop()))
	require.NoError(t, Load(ctx, repo, "", now, zap.NewNop()))

	n, err := repo.Note.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
}

func TestLoad_CreatesMissingUsers(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepository(nil)

	require.NoError(t, Load(ctx, repo, "hash", time.Now(), zap.NewNop()))

	u, err := repo.User.GetByEmail(ctx, "FACULTY2@campus.edu")
	require.NoError(t, err)
	assert.Equal(t, "Prof. Vikram Singh", u.Name)
	assert.Equal(t, "hash", u.PasswordHash)
}

func TestAttendancePercentages(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepository(DemoUsers())
	require.NoError(t, Load(ctx, repo, "", time.Now(), zap.NewNop()))

	records, total, err := repo.Attendance.List(ctx, repository.Query{})
	require.NoError(t, err)
	require.EqualValues(t, 9, total)

	bySubject := make(map[string]float64)
	for i := range records {
		r := &records[i]
		want := math.Round(float64(r.AttendedClasses)/float64(r.TotalClasses)*100*10) / 10
		assert.Equal(t, want, r.Percentage(), "%s %s", r.StudentName, r.Subject)
		if r.StudentID == "1" {
			bySubject[r.Subject] = r.Percentage()
		}
	}
	assert.Equal(t, 93.3, bySubject["Mathematics"], "42/45")
	assert.Equal(t, 95.2, bySubject["Computer Science"], "40/42")
	assert.Equal(t, 87.5, bySubject["Physics"], "35/40")
}

func TestRoundPercent_ZeroTotal(t *testing.T) {
	rec := model.AttendanceRecord{TotalClasses: 0, AttendedClasses: 0}
	assert.Equal(t, 0.0, rec.Percentage())
}
