package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOptions 描述实体在表中的检索列
type GormOptions struct {
	SearchColumns  []string // 标题 / 描述 / 作者 对应列，ILIKE 子串匹配
	CategoryColumn string
	OrderColumn    string // 默认 created_at
}

// GormCollection Collection 的 GORM 实现
type GormCollection[T any, P recordPtr[T]] struct {
	db   *gorm.DB
	opts GormOptions
}

// NewGormCollection 创建 GORM 集合
func NewGormCollection[T any, P recordPtr[T]](db *gorm.DB, opts GormOptions) *GormCollection[T, P] {
	if opts.OrderColumn == "" {
		opts.OrderColumn = "created_at"
	}
	return &GormCollection[T, P]{db: db, opts: opts}
}

func (r *GormCollection[T, P]) Create(ctx context.Context, item *T) error {
	P(item).AssignID(uuid.NewString(), time.Now())
	err := r.db.WithContext(ctx).Create(item).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

func (r *GormCollection[T, P]) Get(ctx context.Context, id string) (*T, error) {
	var item T
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormCollection[T, P]) List(ctx context.Context, q Query) ([]T, int64, error) {
	var items []T
	var total int64

	db := r.filtered(r.db.WithContext(ctx).Model(new(T)), q.Filter, q.Scopes)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: r.opts.OrderColumn}, Desc: true})
	if q.Offset > 0 {
		db = db.Offset(q.Offset)
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	if err := db.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Update 行锁内读取、修改、保存，fn 失败时回滚
func (r *GormCollection[T, P]) Update(ctx context.Context, id string, fn func(*T) error) (*T, error) {
	var item T
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).First(&item).Error; err != nil {
			return err
		}
		if err := fn(&item); err != nil {
			return err
		}
		P(&item).Touch(time.Now())
		return tx.Save(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormCollection[T, P]) Count(ctx context.Context, scopes ...Scope) (int64, error) {
	var n int64
	err := r.filtered(r.db.WithContext(ctx).Model(new(T)), FilterState{}, scopes).Count(&n).Error
	return n, err
}

func (r *GormCollection[T, P]) filtered(db *gorm.DB, f FilterState, scopes []Scope) *gorm.DB {
	for _, s := range scopes {
		db = db.Where(clause.Eq{Column: clause.Column{Name: s.Column}, Value: s.Value})
	}
	if !matchesAllCategories(f.Category) && r.opts.CategoryColumn != "" {
		db = db.Where(clause.Eq{Column: clause.Column{Name: r.opts.CategoryColumn}, Value: f.Category})
	}
	if term := f.SearchTerm; term != "" && len(r.opts.SearchColumns) > 0 {
		like := "%" + escapeLike(term) + "%"
		conds := make([]string, 0, len(r.opts.SearchColumns))
		args := make([]interface{}, 0, len(r.opts.SearchColumns))
		for _, col := range r.opts.SearchColumns {
			conds = append(conds, fmt.Sprintf("%s ILIKE ?", col))
			args = append(args, like)
		}
		db = db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
	return db
}
