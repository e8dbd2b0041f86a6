package calendar

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Leganyst/booking-scheduler/internal/model"
)

// fakeStore — хранилище в памяти. Atomic работает на копии данных и
// публикует её только при успехе.
type fakeStore struct {
	mu sync.Mutex

	clients      map[uuid.UUID]model.Client
	providers    map[uuid.UUID]model.Provider
	rooms        map[uuid.UUID]model.Room
	appointments map[uuid.UUID]model.Appointment
	events       []model.Event

	// Ошибки, которые вернёт соответствующий метод.
	getErr    error
	listErr   error
	insertErr error
	// Первые atomicFailures вызовов Atomic завершаются atomicErr.
	atomicErr      error
	atomicFailures int
	atomicCalls    int
	listCalls      *int // общий для хранилища и его транзакций
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clients:      map[uuid.UUID]model.Client{},
		providers:    map[uuid.UUID]model.Provider{},
		rooms:        map[uuid.UUID]model.Room{},
		appointments: map[uuid.UUID]model.Appointment{},
		listCalls:    new(int),
	}
}

func (s *fakeStore) addClient() uuid.UUID {
	id := uuid.New()
	s.clients[id] = model.Client{ID: id, FirstName: "C", LastName: id.String()}
	return id
}

func (s *fakeStore) addProvider() uuid.UUID {
	id := uuid.New()
	s.providers[id] = model.Provider{ID: id, Name: id.String()}
	return id
}

func (s *fakeStore) addRoom() uuid.UUID {
	id := uuid.New()
	s.rooms[id] = model.Room{ID: id, Name: id.String(), Capacity: 1}
	return id
}

func (s *fakeStore) GetClient(_ context.Context, id uuid.UUID) (*model.Client, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	c, ok := s.clients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *fakeStore) GetProvider(_ context.Context, id uuid.UUID) (*model.Provider, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	p, ok := s.providers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *fakeStore) GetRoom(_ context.Context, id uuid.UUID) (*model.Room, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	r, ok := s.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (s *fakeStore) GetAppointment(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	a, ok := s.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

// ListAppointmentsByParty возвращает все записи стороны без сужения по окну
// и статусу: фильтрация должна выполняться в ядре.
func (s *fakeStore) ListAppointmentsByParty(_ context.Context, party Party, partyID uuid.UUID, _ TimeRange) ([]model.Appointment, error) {
	*s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []model.Appointment
	for _, a := range s.appointments {
		if (party == PartyClient && a.ClientID == partyID) || (party == PartyProvider && a.ProviderID == partyID) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (s *fakeStore) InsertAppointment(_ context.Context, a *model.Appointment) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.appointments[a.ID] = *a
	return nil
}

func (s *fakeStore) UpdateAppointment(_ context.Context, a *model.Appointment) error {
	if _, ok := s.appointments[a.ID]; !ok {
		return ErrNotFound
	}
	s.appointments[a.ID] = *a
	return nil
}

func (s *fakeStore) RecordEvent(_ context.Context, e *model.Event) error {
	s.events = append(s.events, *e)
	return nil
}

func (s *fakeStore) Atomic(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.atomicCalls++
	if s.atomicCalls <= s.atomicFailures {
		return s.atomicErr
	}

	tx := s.clone()
	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.appointments = tx.appointments
	s.events = tx.events
	return nil
}

func (s *fakeStore) clone() *fakeStore {
	tx := &fakeStore{
		clients:      s.clients,
		providers:    s.providers,
		rooms:        s.rooms,
		appointments: make(map[uuid.UUID]model.Appointment, len(s.appointments)),
		events:       append([]model.Event(nil), s.events...),
		getErr:       s.getErr,
		listErr:      s.listErr,
		insertErr:    s.insertErr,
		listCalls:    s.listCalls,
	}
	for k, v := range s.appointments {
		tx.appointments[k] = v
	}
	return tx
}
