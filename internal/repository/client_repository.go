package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-scheduler/internal/model"
)

type ClientRepository interface {
	Create(ctx context.Context, c *model.Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	// Список клиентов по фамилии, затем по имени.
	List(ctx context.Context, page PageRequest) (Page[model.Client], error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*model.Client, error)
	// Удаление клиента удаляет и его записи (ON DELETE CASCADE).
	Delete(ctx context.Context, id uuid.UUID) error
}

type GormClientRepository struct {
	dir directory[model.Client]
}

func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{dir: directory[model.Client]{db: db, order: "last_name ASC, first_name ASC"}}
}

func (r *GormClientRepository) Create(ctx context.Context, c *model.Client) error {
	return r.dir.create(ctx, c)
}

func (r *GormClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	return r.dir.getByID(ctx, id)
}

func (r *GormClientRepository) List(ctx context.Context, page PageRequest) (Page[model.Client], error) {
	return r.dir.list(ctx, page)
}

func (r *GormClientRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*model.Client, error) {
	return r.dir.update(ctx, id, fields)
}

func (r *GormClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.dir.delete(ctx, id)
}
