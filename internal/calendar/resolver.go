package calendar

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Leganyst/booking-scheduler/internal/model"
)

// Resolver проверяет существование сущностей, на которые ссылается запись.
// Никаких бизнес-правил, только поиск по id.
type Resolver struct {
	store Store
}

func NewResolver(store Store) Resolver {
	return Resolver{store: store}
}

// Resolve ищет сущность kind по id.
// Отсутствие строки превращается в отказ соответствующего вида,
// любая другая ошибка хранилища — в InfrastructureError.
func (r Resolver) Resolve(ctx context.Context, kind EntityKind, id uuid.UUID) (Entity, error) {
	var (
		entity Entity
		err    error
	)

	switch kind {
	case EntityClient:
		var c *model.Client
		if c, err = r.store.GetClient(ctx, id); c != nil {
			entity = c
		}
	case EntityProvider:
		var p *model.Provider
		if p, err = r.store.GetProvider(ctx, id); p != nil {
			entity = p
		}
	case EntityRoom:
		var rm *model.Room
		if rm, err = r.store.GetRoom(ctx, id); rm != nil {
			entity = rm
		}
	default:
		return nil, fmt.Errorf("resolve: unknown entity kind %s", kind)
	}

	if err == nil && entity == nil {
		err = ErrNotFound
	}
	if errors.Is(err, ErrNotFound) {
		return nil, Reject(notFoundKind(kind))
	}
	if err != nil {
		return nil, infraErr("get "+kind.String(), err)
	}
	return entity, nil
}

// ResolveOptional пропускает проверку, если ссылка не задана.
func (r Resolver) ResolveOptional(ctx context.Context, kind EntityKind, id *uuid.UUID) (Entity, error) {
	if id == nil {
		return nil, nil
	}
	return r.Resolve(ctx, kind, *id)
}

func notFoundKind(kind EntityKind) RejectionKind {
	switch kind {
	case EntityClient:
		return RejectClientNotFound
	case EntityProvider:
		return RejectProviderNotFound
	default:
		return RejectRoomNotFound
	}
}
