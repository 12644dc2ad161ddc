package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hotel-booking-service/internal/domain"
	"github.com/spec-kit/hotel-booking-service/internal/events"
	"github.com/spec-kit/hotel-booking-service/internal/repository"
	apperrors "github.com/spec-kit/hotel-booking-service/pkg/util"
)

// memStore backs BookingRepository and RoomRepository with maps, mirroring
// the storage-layer guarantees: unique booking per user and a capacity
// re-check on every write. Forced errors simulate backend failures.
type memStore struct {
	rooms    map[int64]*domain.Room
	bookings map[int64]*domain.Booking
	byUser   map[int64]int64
	nextID   int64

	forceViewErr   error
	forceCountErr  error
	forceCreateErr error
	forceUpdateErr error

	findViewCalls int
}

func newMemStore(rooms ...*domain.Room) *memStore {
	s := &memStore{
		rooms:    make(map[int64]*domain.Room),
		bookings: make(map[int64]*domain.Booking),
		byUser:   make(map[int64]int64),
	}
	for _, room := range rooms {
		s.rooms[room.ID] = room
	}
	return s
}

func (s *memStore) FindViewByUser(_ context.Context, userID int64) (*domain.BookingView, error) {
	s.findViewCalls++
	if s.forceViewErr != nil {
		return nil, s.forceViewErr
	}
	id, ok := s.byUser[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	booking := s.bookings[id]
	room := s.rooms[booking.RoomID]
	return &domain.BookingView{
		ID: booking.ID,
		Room: domain.RoomView{
			ID:       room.ID,
			Name:     room.Name,
			Capacity: room.Capacity,
			HotelID:  room.HotelID,
		},
	}, nil
}

func (s *memStore) Create(_ context.Context, userID, roomID int64) (int64, error) {
	if s.forceCreateErr != nil {
		return 0, s.forceCreateErr
	}
	if _, ok := s.byUser[userID]; ok {
		return 0, repository.ErrAlreadyBooked
	}
	room, ok := s.rooms[roomID]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	if s.occupancy(roomID) >= room.Capacity {
		return 0, repository.ErrRoomFull
	}
	s.nextID++
	s.bookings[s.nextID] = &domain.Booking{ID: s.nextID, UserID: userID, RoomID: roomID}
	s.byUser[userID] = s.nextID
	return s.nextID, nil
}

func (s *memStore) UpdateRoom(_ context.Context, bookingID, roomID int64) (int64, error) {
	if s.forceUpdateErr != nil {
		return 0, s.forceUpdateErr
	}
	room, ok := s.rooms[roomID]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	if s.occupancy(roomID) >= room.Capacity {
		return 0, repository.ErrRoomFull
	}
	booking, ok := s.bookings[bookingID]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	booking.RoomID = roomID
	return booking.ID, nil
}

func (s *memStore) CountForRoom(_ context.Context, roomID int64) (int, error) {
	if s.forceCountErr != nil {
		return 0, s.forceCountErr
	}
	return s.occupancy(roomID), nil
}

func (s *memStore) GetByID(_ context.Context, id int64) (*domain.Room, error) {
	room, ok := s.rooms[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return room, nil
}

func (s *memStore) occupancy(roomID int64) int {
	count := 0
	for _, booking := range s.bookings {
		if booking.RoomID == roomID {
			count++
		}
	}
	return count
}

// seedBooking inserts a booking directly, bypassing the eligibility gate.
func (s *memStore) seedBooking(userID, roomID int64) int64 {
	s.nextID++
	s.bookings[s.nextID] = &domain.Booking{ID: s.nextID, UserID: userID, RoomID: roomID}
	s.byUser[userID] = s.nextID
	return s.nextID
}

type fakeEnrollmentRepo struct {
	enrollment *domain.Enrollment
	err        error
}

func (f *fakeEnrollmentRepo) FindByUser(_ context.Context, _ int64) (*domain.Enrollment, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.enrollment == nil {
		return nil, pgx.ErrNoRows
	}
	return f.enrollment, nil
}

type fakeTicketRepo struct {
	ticket *domain.Ticket
	err    error
}

func (f *fakeTicketRepo) FindByEnrollment(_ context.Context, _ int64) (*domain.Ticket, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.ticket == nil {
		return nil, pgx.ErrNoRows
	}
	return f.ticket, nil
}

type fakeCache struct {
	store        map[int64]*domain.BookingView
	invalidated  []int64
	sets         int
	hits, misses int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[int64]*domain.BookingView)}
}

func (f *fakeCache) Get(_ context.Context, userID int64) (*domain.BookingView, bool) {
	view, ok := f.store[userID]
	if ok {
		f.hits++
	} else {
		f.misses++
	}
	return view, ok
}

func (f *fakeCache) Set(_ context.Context, userID int64, view *domain.BookingView) {
	f.sets++
	f.store[userID] = view
}

func (f *fakeCache) Invalidate(_ context.Context, userID int64) {
	f.invalidated = append(f.invalidated, userID)
	delete(f.store, userID)
}

type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(_ events.EventType, _ events.EventHandler) {}

type harness struct {
	store       *memStore
	enrollments *fakeEnrollmentRepo
	tickets     *fakeTicketRepo
	cache       *fakeCache
	dispatcher  *recordingDispatcher
	svc         *BookingService
}

func newHarness(store *memStore, enrollments *fakeEnrollmentRepo, tickets *fakeTicketRepo) *harness {
	h := &harness{
		store:       store,
		enrollments: enrollments,
		tickets:     tickets,
		cache:       newFakeCache(),
		dispatcher:  &recordingDispatcher{},
	}
	h.svc = NewBookingService(BookingDependencies{
		BookingRepo:    store,
		RoomRepo:       store,
		EnrollmentRepo: enrollments,
		TicketRepo:     tickets,
		Cache:          h.cache,
		Dispatcher:     h.dispatcher,
	})
	return h
}

func eligibleHarness(rooms ...*domain.Room) *harness {
	return newHarness(
		newMemStore(rooms...),
		&fakeEnrollmentRepo{enrollment: &domain.Enrollment{ID: 2, UserID: 1}},
		&fakeTicketRepo{ticket: paidHotelTicket()},
	)
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	return domainErr.Code
}

func TestGetBooking_NoBooking(t *testing.T) {
	h := eligibleHarness(&domain.Room{ID: 5, Name: "101", Capacity: 2, HotelID: 1})

	_, err := h.svc.GetBooking(context.Background(), 1)

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGetBooking_ReturnsViewAndCaches(t *testing.T) {
	room := &domain.Room{ID: 5, Name: "101", Capacity: 2, HotelID: 9}
	h := eligibleHarness(room)
	bookingID := h.store.seedBooking(1, 5)

	view, err := h.svc.GetBooking(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, bookingID, view.ID)
	assert.Equal(t, int64(5), view.Room.ID)
	assert.Equal(t, "101", view.Room.Name)
	assert.Equal(t, 2, view.Room.Capacity)
	assert.Equal(t, int64(9), view.Room.HotelID)

	// second read is served from cache
	again, err := h.svc.GetBooking(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, view, again)
	assert.Equal(t, 1, h.store.findViewCalls)
	assert.Equal(t, 1, h.cache.hits)
}

func TestGetBooking_StorageFailure(t *testing.T) {
	h := eligibleHarness(&domain.Room{ID: 5, Name: "101", Capacity: 2, HotelID: 1})
	h.store.forceViewErr = errors.New("connection refused")

	_, err := h.svc.GetBooking(context.Background(), 1)

	require.Error(t, err)
	assert.Equal(t, "STORAGE_UNAVAILABLE", domainCode(t, err))
}

func TestCreateBooking_Succeeds(t *testing.T) {
	room := &domain.Room{ID: 5, Name: "101", Capacity: 2, HotelID: 1}
	h := eligibleHarness(room)

	id, err := h.svc.CreateBooking(context.Background(), 1, 5)

	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	occupancy, err := h.store.CountForRoom(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 1, occupancy)

	require.Len(t, h.dispatcher.published, 1)
	event := h.dispatcher.published[0]
	assert.Equal(t, events.EventBookingCreated, event.Type)
	assert.Equal(t, id, event.BookingID)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, []int64{1}, h.cache.invalidated)
}

func TestCreateBooking_ReadAfterCreateSeesSameRoom(t *testing.T) {
	roomA := &domain.Room{ID: 5, Name: "101", Capacity: 2, HotelID: 1}
	roomB := &domain.Room{ID: 6, Name: "102", Capacity: 2, HotelID: 1}
	h := eligibleHarness(roomA, roomB)

	id, err := h.svc.CreateBooking(context.Background(), 1, 5)
	require.NoError(t, err)

	view, err := h.svc.GetBooking(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, id, view.ID)
	assert.Equal(t, int64(5), view.Room.ID)

	_, err = h.svc.UpdateBooking(context.Background(), 1, id, 6)
	require.NoError(t, err)

	view, err = h.svc.GetBooking(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(6), view.Room.ID)
}

func TestCreateBooking_RoomFull(t *testing.T) {
	room := &domain.Room{ID: 5, Name: "101", Capacity: 2, HotelID: 1}
	h := eligibleHarness(room)
	h.store.seedBooking(10, 5)
	h.store.seedBooking(11, 5)

	_, err := h.svc.CreateBooking(context.Background(), 1, 5)

	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
	assert.Contains(t, err.Error(), "full capacity")
	assert.Empty(t, h.dispatcher.published)
}

func TestCreateBooking_RemoteTicket(t *testing.T) {
	h := eligibleHarness(&domain.Room{ID: 5, Name: "101", Capacity: 2, HotelID: 1})
	h.tickets.ticket.TicketType.IsRemote = true

	_, err := h.svc.CreateBooking(context.Background(), 1, 5)

	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
	assert.Contains(t, err.Error(), "remote ticket")
}

// The ticket checks run before the room lookup result matters: a remote
// ticket against a nonexistent room is forbidden, not not-found.
func TestCreateBooking_RemoteTicketMissingRoomStillForbidden(t *testing.T) {
	h := eligibleHarness() // no rooms at all
	h.tickets.ticket.TicketType.IsRemote = true

	_, err := h.svc.CreateBooking(context.Background(), 1, 99)

	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestCreateBooking_TicketExcludesHotel(t *testing.T) {
	h := eligibleHarness(&domain.Room{ID: 5, Name: "101", Capacity: 2, HotelID: 1})
	h.tickets.ticket.TicketType.IncludesHotel = false

	_, err := h.svc.CreateBooking(context.Background(), 1, 5)

	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestCreateBooking_UnpaidTicket(t *testing.T) {
	h := eligibleHarness(&domain.Room{ID: 5, Name: "101", Capacity: 2, HotelID: 1})
	h.tickets.ticket.Status = domain.TicketStatusReserved

	_, err := h.svc.CreateBooking(context.Background(), 1, 5)

	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestCreateBooking_MissingRoom(t *testing.T) {
	h := eligibleHarness() // eligible ticket, no rooms

	_, err := h.svc.CreateBooking(context.Background(), 1, 99)

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCreateBooking_NoEnrollment(t *testing.T) {
	h := newHarness(
		newMemStore(&domain.Room{ID: 5, Name: "101", Capacity: 2, HotelID: 1}),
		&fakeEnrollmentRepo{},
		&fakeTicketRepo{ticket: paidHotelTicket()},
	)

	_, err := h.svc.CreateBooking(context.Background(), 1, 5)

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCreateBooking_NoTicket(t *testing.T) {
	h := newHarness(
		newMemStore(&domain.Room{ID: 5, Name: "101", Capacity: 2, HotelID: 1}),
		&fakeEnrollmentRepo{enrollment: &domain.Enrollment{ID: 2, UserID: 1}},
		&fakeTicketRepo{},
	)

	_, err := h.svc.CreateBooking(context.Background(), 1, 5)

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

// The advisory occupancy check can pass while the transactional write still
// rejects; the write's verdict is final.
func TestCreateBooking_TransactionalRecheckTrips(t *testing.T) {
	h := eligibleHarness(&domain.Room{ID: 5, Name: "101", Capacity: 2, HotelID: 1})
	h.store.forceCreateErr = repository.ErrRoomFull

	_, err := h.svc.CreateBooking(context.Background(), 1, 5)

	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
	assert.Contains(t, err.Error(), "full capacity")
}

func TestCreateBooking_SecondBookingRejected(t *testing.T) {
	h := eligibleHarness(&domain.Room{ID: 5, Name: "101", Capacity: 2, HotelID: 1})
	h.store.forceCreateErr = repository.ErrAlreadyBooked

	_, err := h.svc.CreateBooking(context.Background(), 1, 5)

	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
	assert.Contains(t, err.Error(), "already has a booking")
}

func TestCreateBooking_StorageFailure(t *testing.T) {
	h := eligibleHarness(&domain.Room{ID: 5, Name: "101", Capacity: 2, HotelID: 1})
	h.store.forceCreateErr = errors.New("connection reset")

	_, err := h.svc.CreateBooking(context.Background(), 1, 5)

	require.Error(t, err)
	assert.Equal(t, "STORAGE_UNAVAILABLE", domainCode(t, err))
}

func TestUpdateBooking_NoExistingBooking(t *testing.T) {
	h := eligibleHarness(&domain.Room{ID: 5, Name: "101", Capacity: 2, HotelID: 1})

	_, err := h.svc.UpdateBooking(context.Background(), 1, 1, 5)

	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
	assert.Contains(t, err.Error(), "no booking")
}

func TestUpdateBooking_TargetRoomMissing(t *testing.T) {
	roomA := &domain.Room{ID: 4, Name: "101", Capacity: 2, HotelID: 1}
	h := eligibleHarness(roomA)
	bookingID := h.store.seedBooking(1, 4)

	_, err := h.svc.UpdateBooking(context.Background(), 1, bookingID, 99)

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdateBooking_TargetRoomFull(t *testing.T) {
	roomA := &domain.Room{ID: 4, Name: "101", Capacity: 2, HotelID: 1}
	roomB := &domain.Room{ID: 5, Name: "102", Capacity: 2, HotelID: 1}
	h := eligibleHarness(roomA, roomB)
	bookingID := h.store.seedBooking(1, 4)
	h.store.seedBooking(10, 5)
	h.store.seedBooking(11, 5)

	_, err := h.svc.UpdateBooking(context.Background(), 1, bookingID, 5)

	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
	assert.Contains(t, err.Error(), "full capacity")
}

// The target occupancy count does not exclude the mover's own booking, so a
// move "within" a room already at capacity is denied.
func TestUpdateBooking_MoveWithinFullRoomDenied(t *testing.T) {
	room := &domain.Room{ID: 4, Name: "101", Capacity: 1, HotelID: 1}
	h := eligibleHarness(room)
	bookingID := h.store.seedBooking(1, 4)

	_, err := h.svc.UpdateBooking(context.Background(), 1, bookingID, 4)

	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
	assert.Contains(t, err.Error(), "full capacity")
}

func TestUpdateBooking_MovesOccupancy(t *testing.T) {
	roomA := &domain.Room{ID: 4, Name: "101", Capacity: 2, HotelID: 1}
	roomB := &domain.Room{ID: 5, Name: "102", Capacity: 2, HotelID: 1}
	h := eligibleHarness(roomA, roomB)
	bookingID := h.store.seedBooking(1, 4)

	id, err := h.svc.UpdateBooking(context.Background(), 1, bookingID, 5)

	require.NoError(t, err)
	assert.Equal(t, bookingID, id)

	sourceOccupancy, _ := h.store.CountForRoom(context.Background(), 4)
	targetOccupancy, _ := h.store.CountForRoom(context.Background(), 5)
	assert.Equal(t, 0, sourceOccupancy)
	assert.Equal(t, 1, targetOccupancy)

	require.Len(t, h.dispatcher.published, 1)
	event := h.dispatcher.published[0]
	assert.Equal(t, events.EventBookingRoomChanged, event.Type)
	payload, ok := event.Payload.(events.BookingRoomChangedPayload)
	require.True(t, ok)
	assert.Equal(t, int64(4), payload.OldRoomID)
	assert.Equal(t, int64(5), payload.NewRoomID)
	assert.Equal(t, []int64{1}, h.cache.invalidated)
}

func TestUpdateBooking_StorageFailure(t *testing.T) {
	roomA := &domain.Room{ID: 4, Name: "101", Capacity: 2, HotelID: 1}
	roomB := &domain.Room{ID: 5, Name: "102", Capacity: 2, HotelID: 1}
	h := eligibleHarness(roomA, roomB)
	h.store.seedBooking(1, 4)
	h.store.forceUpdateErr = errors.New("connection reset")

	_, err := h.svc.UpdateBooking(context.Background(), 1, 1, 5)

	require.Error(t, err)
	assert.Equal(t, "STORAGE_UNAVAILABLE", domainCode(t, err))
}
