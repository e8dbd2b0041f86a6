package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leganyst/booking-scheduler/internal/model"
)

func TestProviderRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProviderRepository(newTestDB(t))

	spec := "dentist"
	p := &model.Provider{Name: "Dr. Smith", Specialization: &spec}
	require.NoError(t, repo.Create(ctx, p))
	require.NotEqual(t, uuid.Nil, p.ID)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Smith", got.Name)
	require.NotNil(t, got.Specialization)
	assert.Equal(t, "dentist", *got.Specialization)

	updated, err := repo.Update(ctx, p.ID, map[string]any{"name": "Dr. Smith Jr.", "specialization": nil})
	require.NoError(t, err)
	assert.Equal(t, "Dr. Smith Jr.", updated.Name)
	assert.Nil(t, updated.Specialization)

	require.NoError(t, repo.Delete(ctx, p.ID))
	_, err = repo.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProviderRepository_MissingRows(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProviderRepository(newTestDB(t))

	_, err := repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.Update(ctx, uuid.New(), map[string]any{"name": "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), ErrNotFound)
}

func TestProviderRepository_ListOrderedByNameAndPaged(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProviderRepository(newTestDB(t))

	for _, name := range []string{"Charlie", "Alice", "Bob"} {
		require.NoError(t, repo.Create(ctx, &model.Provider{Name: name}))
	}

	first, err := repo.List(ctx, PageRequest{Page: 1, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.Equal(t, "Alice", first.Items[0].Name)
	assert.Equal(t, "Bob", first.Items[1].Name)
	assert.EqualValues(t, 3, first.Total)
	assert.True(t, first.HasNext)
	assert.False(t, first.HasPrev)

	second, err := repo.List(ctx, PageRequest{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, "Charlie", second.Items[0].Name)
	assert.False(t, second.HasNext)
	assert.True(t, second.HasPrev)
}

func TestClientRepository_ListOrderedByLastThenFirstName(t *testing.T) {
	ctx := context.Background()
	repo := NewGormClientRepository(newTestDB(t))

	for _, c := range []model.Client{
		{FirstName: "Zoe", LastName: "Adams"},
		{FirstName: "Bob", LastName: "Brown"},
		{FirstName: "Amy", LastName: "Adams"},
	} {
		c := c
		require.NoError(t, repo.Create(ctx, &c))
	}

	page, err := repo.List(ctx, PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "Amy", page.Items[0].FirstName)
	assert.Equal(t, "Zoe", page.Items[1].FirstName)
	assert.Equal(t, "Bob", page.Items[2].FirstName)
	assert.Equal(t, defaultPageSize, page.PageSize)
}

func TestRoomRepository_DefaultCapacity(t *testing.T) {
	ctx := context.Background()
	repo := NewGormRoomRepository(newTestDB(t))

	rm := &model.Room{Name: "Room A"}
	require.NoError(t, repo.Create(ctx, rm))

	got, err := repo.GetByID(ctx, rm.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Capacity)
}

func TestPageRequest_Normalize(t *testing.T) {
	p := PageRequest{Page: -1, PageSize: 10_000}.normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, maxPageSize, p.PageSize)
	assert.Equal(t, 0, p.offset())

	p = PageRequest{Page: 3, PageSize: 20}.normalize()
	assert.Equal(t, 40, p.offset())
}
