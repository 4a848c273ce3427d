package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"campus-portal/backend/internal/model"
	"campus-portal/backend/pkg/redis"
)

// TimetableRepository 课表存储，以 (班级, 星期, 时间段) 为复合键逐格读写
type TimetableRepository interface {
	ListByClass(ctx context.Context, className string) ([]model.TimetableSlot, error)
	// Upsert 只写入单个单元格，不影响同班级其他单元格
	Upsert(ctx context.Context, slot *model.TimetableSlot) error
	// Delete 删除单元格；不存在时返回 gorm.ErrRecordNotFound
	Delete(ctx context.Context, className, day, timeSlot string) error
}

// SortSlots 按时间段起点、再按星期顺序排序
func SortSlots(slots []model.TimetableSlot) {
	dayIndex := make(map[string]int, len(model.Weekdays))
	for i, d := range model.Weekdays {
		dayIndex[d] = i
	}
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].TimeSlot != slots[j].TimeSlot {
			return slotLess(slots[i].TimeSlot, slots[j].TimeSlot)
		}
		return dayIndex[slots[i].Day] < dayIndex[slots[j].Day]
	})
}

// slotLess 可解析的时间段按起始时间排序，其余排在后面按字面序
func slotLess(a, b string) bool {
	ma, okA := model.SlotStartMinutes(a)
	mb, okB := model.SlotStartMinutes(b)
	switch {
	case okA && okB && ma != mb:
		return ma < mb
	case okA != okB:
		return okA
	default:
		return a < b
	}
}

// ────── GORM (PostgreSQL) ──────

type timetableRepo struct {
	db *gorm.DB
}

// NewTimetableRepo 创建 PostgreSQL 课表存储
func NewTimetableRepo(db *gorm.DB) TimetableRepository {
	return &timetableRepo{db: db}
}

func (r *timetableRepo) ListByClass(ctx context.Context, className string) ([]model.TimetableSlot, error) {
	var slots []model.TimetableSlot
	if err := r.db.WithContext(ctx).
		Where("class_name = ?", className).
		Find(&slots).Error; err != nil {
		return nil, err
	}
	SortSlots(slots)
	return slots, nil
}

func (r *timetableRepo) Upsert(ctx context.Context, slot *model.TimetableSlot) error {
	slot.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "class_name"}, {Name: "day"}, {Name: "time_slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"subject", "teacher", "room", "updated_at"}),
	}).Create(slot).Error
}

func (r *timetableRepo) Delete(ctx context.Context, className, day, timeSlot string) error {
	res := r.db.WithContext(ctx).
		Where("class_name = ? AND day = ? AND time_slot = ?", className, day, timeSlot).
		Delete(&model.TimetableSlot{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ────── Redis ──────

// redisTimetableRepo 每个班级一个 hash（<prefix>:<class>），字段为 "day|slot"，
// 修改单元格只写对应字段
type redisTimetableRepo struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisTimetableRepo 创建 Redis 课表存储
func NewRedisTimetableRepo(rdb *redis.Client, prefix string) TimetableRepository {
	return &redisTimetableRepo{rdb: rdb, prefix: prefix}
}

func (r *redisTimetableRepo) key(className string) string {
	return r.prefix + ":" + className
}

func (r *redisTimetableRepo) ListByClass(ctx context.Context, className string) ([]model.TimetableSlot, error) {
	fields, err := r.rdb.HGetAll(ctx, r.key(className))
	if err != nil {
		return nil, err
	}
	slots := make([]model.TimetableSlot, 0, len(fields))
	for field, raw := range fields {
		var slot model.TimetableSlot
		if err := json.Unmarshal([]byte(raw), &slot); err != nil {
			return nil, fmt.Errorf("解析课表单元格 %s 失败: %w", field, err)
		}
		slots = append(slots, slot)
	}
	SortSlots(slots)
	return slots, nil
}

func (r *redisTimetableRepo) Upsert(ctx context.Context, slot *model.TimetableSlot) error {
	slot.UpdatedAt = time.Now()
	return r.rdb.HSetJSON(ctx, r.key(slot.ClassName), slot.SlotKey(), slot)
}

func (r *redisTimetableRepo) Delete(ctx context.Context, className, day, timeSlot string) error {
	n, err := r.rdb.HDel(ctx, r.key(className), day+"|"+timeSlot)
	if err != nil {
		return err
	}
	if n == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ────── SQLite（本地持久缓存） ──────

const sqliteTimetableSchema = `
CREATE TABLE IF NOT EXISTS timetable_slots (
    class_name TEXT NOT NULL,
    day        TEXT NOT NULL,
    time_slot  TEXT NOT NULL,
    subject    TEXT NOT NULL,
    teacher    TEXT NOT NULL DEFAULT '',
    room       TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (class_name, day, time_slot)
)`

type sqliteTimetableRepo struct {
	db *sql.DB
}

// NewSQLiteTimetableRepo 在本地 SQLite 中建表并返回课表存储
func NewSQLiteTimetableRepo(ctx context.Context, db *sql.DB) (TimetableRepository, error) {
	if _, err := db.ExecContext(ctx, sqliteTimetableSchema); err != nil {
		return nil, fmt.Errorf("初始化 SQLite 课表失败: %w", err)
	}
	return &sqliteTimetableRepo{db: db}, nil
}

func (r *sqliteTimetableRepo) ListByClass(ctx context.Context, className string) ([]model.TimetableSlot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT class_name, day, time_slot, subject, teacher, room, updated_at
		FROM timetable_slots WHERE class_name = ?`, className)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []model.TimetableSlot
	for rows.Next() {
		var s model.TimetableSlot
		if err := rows.Scan(&s.ClassName, &s.Day, &s.TimeSlot, &s.Subject, &s.Teacher, &s.Room, &s.UpdatedAt); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	SortSlots(slots)
	return slots, nil
}

func (r *sqliteTimetableRepo) Upsert(ctx context.Context, slot *model.TimetableSlot) error {
	slot.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO timetable_slots (class_name, day, time_slot, subject, teacher, room, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (class_name, day, time_slot) DO UPDATE SET
			subject = excluded.subject,
			teacher = excluded.teacher,
			room = excluded.room,
			updated_at = excluded.updated_at`,
		slot.ClassName, slot.Day, slot.TimeSlot, slot.Subject, slot.Teacher, slot.Room, slot.UpdatedAt)
	return err
}

func (r *sqliteTimetableRepo) Delete(ctx context.Context, className, day, timeSlot string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM timetable_slots WHERE class_name = ? AND day = ? AND time_slot = ?`,
		className, day, timeSlot)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ────── 内存 ──────

type memoryTimetableRepo struct {
	mu      sync.RWMutex
	classes map[string]map[string]model.TimetableSlot
}

// NewMemoryTimetableRepo 创建内存课表存储
func NewMemoryTimetableRepo() TimetableRepository {
	return &memoryTimetableRepo{classes: make(map[string]map[string]model.TimetableSlot)}
}

func (r *memoryTimetableRepo) ListByClass(ctx context.Context, className string) ([]model.TimetableSlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	slots := make([]model.TimetableSlot, 0, len(r.classes[className]))
	for _, s := range r.classes[className] {
		slots = append(slots, s)
	}
	SortSlots(slots)
	return slots, nil
}

func (r *memoryTimetableRepo) Upsert(ctx context.Context, slot *model.TimetableSlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot.UpdatedAt = time.Now()
	cells, ok := r.classes[slot.ClassName]
	if !ok {
		cells = make(map[string]model.TimetableSlot)
		r.classes[slot.ClassName] = cells
	}
	cells[slot.SlotKey()] = *slot
	return nil
}

func (r *memoryTimetableRepo) Delete(ctx context.Context, className, day, timeSlot string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := day + "|" + timeSlot
	if _, ok := r.classes[className][key]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.classes[className], key)
	return nil
}
