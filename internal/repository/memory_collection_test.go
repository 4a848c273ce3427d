package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"campus-portal/backend/internal/model"
)

func seedNotes() []model.Note {
	return []model.Note{
		{Title: "Calculus Integration Techniques", Subject: "Mathematics", Description: "Integration by parts", AuthorName: "Dr. Anjali Verma"},
		{Title: "Quantum Mechanics Basics", Subject: "Physics", Description: "Wave functions", AuthorName: "Priya Sharma"},
		{Title: "Organic Chemistry Reactions", Subject: "Chemistry", Description: "Reaction mechanisms", AuthorName: "Rohan Gupta"},
	}
}

func TestMatches(t *testing.T) {
	note := &model.Note{Title: "Quantum Mechanics", Subject: "Physics", Description: "waves", AuthorName: "Priya Sharma"}

	tests := []struct {
		name   string
		filter FilterState
		want   bool
	}{
		{"空过滤", FilterState{}, true},
		{"All 分类", FilterState{Category: CategoryAll}, true},
		{"标题忽略大小写", FilterState{SearchTerm: "QUANTUM"}, true},
		{"描述命中", FilterState{SearchTerm: "wave"}, true},
		{"作者命中", FilterState{SearchTerm: "priya"}, true},
		{"分类不等", FilterState{Category: "Mathematics"}, false},
		{"分类相等且搜索命中", FilterState{SearchTerm: "mech", Category: "Physics"}, true},
		{"搜索未命中", FilterState{SearchTerm: "organic"}, false},
		{"前导空格原样匹配", FilterState{SearchTerm: " mech"}, true},
		{"尾随空格不裁剪", FilterState{SearchTerm: "mechanics "}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(note, tt.filter))
		})
	}
}

func TestApplyFilter_DoesNotMutateInput(t *testing.T) {
	notes := seedNotes()
	out := ApplyFilter[model.Note](notes, FilterState{Category: "Physics"})

	require.Len(t, out, 1)
	assert.Equal(t, "Quantum Mechanics Basics", out[0].Title)
	assert.Len(t, notes, 3)
	assert.Equal(t, "Calculus Integration Techniques", notes[0].Title)
}

func TestMemoryCollection_ListIdempotent(t *testing.T) {
	ctx := context.Background()
	coll := NewMemoryCollection[model.Note](seedNotes())
	q := Query{Filter: FilterState{SearchTerm: "e", Category: CategoryAll}}

	first, total1, err := coll.List(ctx, q)
	require.NoError(t, err)
	second, total2, err := coll.List(ctx, q)
	require.NoError(t, err)

	assert.Equal(t, total1, total2)
	assert.Equal(t, first, second)

	all, _, err := coll.List(ctx, Query{})
	require.NoError(t, err)
	assert.Len(t, all, 3, "过滤不应改变集合本身")
}

func TestMemoryCollection_CreateAssignsIDNewestFirst(t *testing.T) {
	ctx := context.Background()
	coll := NewMemoryCollection[model.Note](seedNotes())

	n := &model.Note{Title: "Data Structures", Subject: "Computer Science", AuthorName: "Prof. Vikram Singh"}
	require.NoError(t, coll.Create(ctx, n))
	assert.NotEmpty(t, n.ID)
	assert.False(t, n.CreatedAt.IsZero())

	list, total, err := coll.List(ctx, Query{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Equal(t, "Data Structures", list[0].Title)
	assert.Equal(t, "Calculus Integration Techniques", list[3].Title)
}

func TestMemoryCollection_ListPaging(t *testing.T) {
	coll := NewMemoryCollection[model.Note](seedNotes())

	list, total, err := coll.List(context.Background(), Query{Offset: 1, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, list, 1)
	assert.Equal(t, "Quantum Mechanics Basics", list[0].Title)

	list, _, _ = coll.List(context.Background(), Query{Offset: 10})
	assert.Empty(t, list)
}

func TestMemoryCollection_UpdateFailureLeavesRecord(t *testing.T) {
	ctx := context.Background()
	coll := NewMemoryCollection[model.MaintenanceRequest](nil)
	req := &model.MaintenanceRequest{Title: "AC not cooling", Status: model.MaintenancePending, Category: "HVAC"}
	require.NoError(t, coll.Create(ctx, req))

	_, err := coll.Update(ctx, req.ID, func(m *model.MaintenanceRequest) error {
		m.Status = model.MaintenanceResolved
		return errors.New("invalid transition")
	})
	require.Error(t, err)

	got, err := coll.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MaintenancePending, got.Status)

	updated, err := coll.Update(ctx, req.ID, func(m *model.MaintenanceRequest) error {
		m.Status = model.MaintenanceInProgress
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, model.MaintenanceInProgress, updated.Status)
	assert.Equal(t, req.ID, updated.ID)

	_, err = coll.Update(ctx, "missing", func(*model.MaintenanceRequest) error { return nil })
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMemoryCollection_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	coll := NewMemoryCollection[model.Note](nil)
	n := &model.Note{Title: "Original"}
	require.NoError(t, coll.Create(ctx, n))

	got, _ := coll.Get(ctx, n.ID)
	got.Title = "Changed"

	again, _ := coll.Get(ctx, n.ID)
	assert.Equal(t, "Original", again.Title)
}

func TestMemoryCollection_ScopesAndCount(t *testing.T) {
	ctx := context.Background()
	coll := NewMemoryCollection[model.MaintenanceRequest]([]model.MaintenanceRequest{
		{Title: "a", Status: model.MaintenancePending, StudentID: "1"},
		{Title: "b", Status: model.MaintenanceResolved, StudentID: "1"},
		{Title: "c", Status: model.MaintenancePending, StudentID: "3"},
	})

	n, err := coll.Count(ctx, Eq("status", model.MaintenancePending))
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	list, _, _ := coll.List(ctx, Query{Scopes: []Scope{Eq("status", model.MaintenancePending), Eq("student_id", "3")}})
	require.Len(t, list, 1)
	assert.Equal(t, "c", list[0].Title)
}

func TestChildCollection_AppendOnlyInOrder(t *testing.T) {
	ctx := context.Background()
	tick := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { tick = tick.Add(time.Minute); return tick }
	replies := NewChildCollection[model.DoubtReply](NewMemoryCollection[model.DoubtReply](nil, WithClock(clock)), "doubt_id")

	require.NoError(t, replies.Append(ctx, "d1", &model.DoubtReply{Reply: "first", AuthorName: "Dr. Anjali Verma"}))
	require.NoError(t, replies.Append(ctx, "d2", &model.DoubtReply{Reply: "other"}))
	require.NoError(t, replies.Append(ctx, "d1", &model.DoubtReply{Reply: "second"}))

	list, err := replies.ListByParent(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Reply)
	assert.Equal(t, "second", list[1].Reply)
	assert.True(t, list[0].CreatedAt.Before(list[1].CreatedAt))

	n, _ := replies.CountByParent(ctx, "d1")
	assert.EqualValues(t, 2, n)

	updated, err := replies.Update(ctx, list[0].ID, func(r *model.DoubtReply) error {
		r.DoubtID = "moved"
		r.Reply = "edited"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "d1", updated.DoubtID)
}

func TestMemoryCollection_UniqueConstraint(t *testing.T) {
	ctx := context.Background()
	subs := NewChildCollection[model.Submission](
		NewMemoryCollection[model.Submission](nil, WithUnique("assignment_id", "student_id")), "assignment_id")

	require.NoError(t, subs.Append(ctx, "a1", &model.Submission{StudentID: "1"}))
	require.NoError(t, subs.Append(ctx, "a1", &model.Submission{StudentID: "3"}))
	require.NoError(t, subs.Append(ctx, "a2", &model.Submission{StudentID: "1"}))

	err := subs.Append(ctx, "a1", &model.Submission{StudentID: "1"})
	assert.ErrorIs(t, err, ErrDuplicate)
}
