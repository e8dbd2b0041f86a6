package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-scheduler/internal/model"
)

type ProviderRepository interface {
	Create(ctx context.Context, p *model.Provider) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Provider, error)
	// Список провайдеров по имени.
	List(ctx context.Context, page PageRequest) (Page[model.Provider], error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*model.Provider, error)
	// Удаление провайдера удаляет и его записи (ON DELETE CASCADE).
	Delete(ctx context.Context, id uuid.UUID) error
}

type GormProviderRepository struct {
	dir directory[model.Provider]
}

func NewGormProviderRepository(db *gorm.DB) *GormProviderRepository {
	return &GormProviderRepository{dir: directory[model.Provider]{db: db, order: "name ASC"}}
}

func (r *GormProviderRepository) Create(ctx context.Context, p *model.Provider) error {
	return r.dir.create(ctx, p)
}

func (r *GormProviderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	return r.dir.getByID(ctx, id)
}

func (r *GormProviderRepository) List(ctx context.Context, page PageRequest) (Page[model.Provider], error) {
	return r.dir.list(ctx, page)
}

func (r *GormProviderRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*model.Provider, error) {
	return r.dir.update(ctx, id, fields)
}

func (r *GormProviderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.dir.delete(ctx, id)
}
