package repository

import (
	"context"

	"gorm.io/gorm"

	"campus-portal/backend/internal/model"
)

// ErrDuplicate 违反唯一约束（两种实现返回同一哨兵）
var ErrDuplicate = gorm.ErrDuplicatedKey

// recordPtr 约束 *T 实现 model.Record，使集合可以按值存储、按指针调用方法
type recordPtr[T any] interface {
	*T
	model.Record
}

type childPtr[C any] interface {
	*C
	model.ChildRecord
}

// Collection 通用实体集合
//
// Create 分配 ID 与时间戳；List 按创建时间倒序（最新在前）返回过滤后的结果与总数；
// Get / Update 在记录不存在时返回 gorm.ErrRecordNotFound；
// Update 的 fn 返回错误时不做任何修改。
type Collection[T any] interface {
	Create(ctx context.Context, item *T) error
	Get(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, q Query) ([]T, int64, error)
	Update(ctx context.Context, id string, fn func(*T) error) (*T, error)
	Count(ctx context.Context, scopes ...Scope) (int64, error)
}

// ChildCollection 挂在父实体下、只追加的子集合（作业提交、答疑回复）。
// 父实体是否存在由调用方（Service）检查。
type ChildCollection[C any] interface {
	Append(ctx context.Context, parentID string, item *C) error
	ListByParent(ctx context.Context, parentID string, scopes ...Scope) ([]C, error)
	Get(ctx context.Context, id string) (*C, error)
	Update(ctx context.Context, id string, fn func(*C) error) (*C, error)
	CountByParent(ctx context.Context, parentID string) (int64, error)
	Count(ctx context.Context, scopes ...Scope) (int64, error)
}

// childCollection 基于任意 Collection 实现 ChildCollection
type childCollection[C any, P childPtr[C]] struct {
	coll         Collection[C]
	parentColumn string
}

// NewChildCollection 以 parentColumn 作为父键列包装集合
func NewChildCollection[C any, P childPtr[C]](coll Collection[C], parentColumn string) ChildCollection[C] {
	return &childCollection[C, P]{coll: coll, parentColumn: parentColumn}
}

func (c *childCollection[C, P]) Append(ctx context.Context, parentID string, item *C) error {
	P(item).SetParentID(parentID)
	return c.coll.Create(ctx, item)
}

// ListByParent 按追加顺序（最早在前）返回
func (c *childCollection[C, P]) ListByParent(ctx context.Context, parentID string, scopes ...Scope) ([]C, error) {
	all := append([]Scope{Eq(c.parentColumn, parentID)}, scopes...)
	items, _, err := c.coll.List(ctx, Query{Scopes: all})
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, nil
}

func (c *childCollection[C, P]) Get(ctx context.Context, id string) (*C, error) {
	return c.coll.Get(ctx, id)
}

// Update 不允许修改父键
func (c *childCollection[C, P]) Update(ctx context.Context, id string, fn func(*C) error) (*C, error) {
	return c.coll.Update(ctx, id, func(item *C) error {
		parent := P(item).ParentID()
		if err := fn(item); err != nil {
			return err
		}
		P(item).SetParentID(parent)
		return nil
	})
}

func (c *childCollection[C, P]) CountByParent(ctx context.Context, parentID string) (int64, error) {
	return c.coll.Count(ctx, Eq(c.parentColumn, parentID))
}

func (c *childCollection[C, P]) Count(ctx context.Context, scopes ...Scope) (int64, error) {
	return c.coll.Count(ctx, scopes...)
}
