package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-scheduler/internal/model"
)

type RoomRepository interface {
	Create(ctx context.Context, rm *model.Room) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Room, error)
	// Список комнат по названию.
	List(ctx context.Context, page PageRequest) (Page[model.Room], error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*model.Room, error)
	// Удаление комнаты не удаляет записи: ссылка на неё обнуляется (ON DELETE SET NULL).
	Delete(ctx context.Context, id uuid.UUID) error
}

type GormRoomRepository struct {
	dir directory[model.Room]
}

func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	return &GormRoomRepository{dir: directory[model.Room]{db: db, order: "name ASC"}}
}

func (r *GormRoomRepository) Create(ctx context.Context, rm *model.Room) error {
	return r.dir.create(ctx, rm)
}

func (r *GormRoomRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	return r.dir.getByID(ctx, id)
}

func (r *GormRoomRepository) List(ctx context.Context, page PageRequest) (Page[model.Room], error) {
	return r.dir.list(ctx, page)
}

func (r *GormRoomRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*model.Room, error) {
	return r.dir.update(ctx, id, fields)
}

func (r *GormRoomRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.dir.delete(ctx, id)
}
