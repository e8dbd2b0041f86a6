package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// directory — общий CRUD для справочников (провайдеры, клиенты, комнаты).
// Записи приёма через него не идут: у них свой путь через допуск.
type directory[T any] struct {
	db    *gorm.DB
	order string
}

func (d directory[T]) create(ctx context.Context, v *T) error {
	return translate(d.db.WithContext(ctx).Create(v).Error)
}

func (d directory[T]) getByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var v T
	if err := d.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (d directory[T]) list(ctx context.Context, page PageRequest) (Page[T], error) {
	page = page.normalize()

	var (
		items []T
		total int64
	)

	q := d.db.WithContext(ctx).Model(new(T))
	if err := q.Count(&total).Error; err != nil {
		return Page[T]{}, translate(err)
	}
	if err := q.Order(d.order).Limit(page.PageSize).Offset(page.offset()).Find(&items).Error; err != nil {
		return Page[T]{}, translate(err)
	}
	return newPage(items, total, page), nil
}

// update применяет частичное изменение; fields — имена колонок.
func (d directory[T]) update(ctx context.Context, id uuid.UUID, fields map[string]any) (*T, error) {
	res := d.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return d.getByID(ctx, id)
}

func (d directory[T]) delete(ctx context.Context, id uuid.UUID) error {
	res := d.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
