package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/vaccine-scheduler/internal/domain"
	apperrors "github.com/spec-kit/vaccine-scheduler/pkg/util/errorutil"
)

// MemoryStore is an in-memory implementation of every ledger interface,
// used by tests and single-process demos. One mutex covers all state so
// the booking triple stays atomic under concurrent callers, matching
// the transactional guarantees of the Postgres implementation.
type MemoryStore struct {
	mu           sync.Mutex
	accounts     map[domain.Role]map[string]domain.Account
	vaccines     map[string]*domain.VaccineInventory
	slots        map[string]map[string]bool // date -> caregiver set
	reservations map[string]domain.Reservation
}

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: map[domain.Role]map[string]domain.Account{
			domain.RolePatient:   {},
			domain.RoleCaregiver: {},
		},
		vaccines:     make(map[string]*domain.VaccineInventory),
		slots:        make(map[string]map[string]bool),
		reservations: make(map[string]domain.Reservation),
	}
}

var (
	_ AccountRepository      = (*MemoryStore)(nil)
	_ InventoryRepository    = (*MemoryStore)(nil)
	_ AvailabilityRepository = (*MemoryStore)(nil)
	_ ReservationRepository  = (*MemoryStore)(nil)
	_ BookingRepository      = (*MemoryStore)(nil)
)

func (m *MemoryStore) Create(_ context.Context, account *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	byName := m.accounts[account.Role]
	if _, exists := byName[account.Username]; exists {
		return apperrors.NewDuplicateUsername(account.Username)
	}
	account.CreatedAt = time.Now().UTC()
	byName[account.Username] = *account
	return nil
}

func (m *MemoryStore) GetByUsername(_ context.Context, role domain.Role, username string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[role][username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &account, nil
}

func (m *MemoryStore) Increment(_ context.Context, name string, n int) (*domain.VaccineInventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.vaccines[name]
	if !ok {
		inv = &domain.VaccineInventory{Name: name, CreatedAt: time.Now().UTC()}
		m.vaccines[name] = inv
	}
	inv.Doses += n
	inv.UpdatedAt = time.Now().UTC()
	copied := *inv
	return &copied, nil
}

func (m *MemoryStore) DecrementIfPositive(_ context.Context, name string, n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.decrementLocked(name, n)
}

func (m *MemoryStore) decrementLocked(name string, n int) error {
	inv, ok := m.vaccines[name]
	if !ok {
		return apperrors.NewUnknownVaccine(name)
	}
	if inv.Doses < n {
		return apperrors.NewOutOfStock(name)
	}
	inv.Doses -= n
	inv.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, name string) (*domain.VaccineInventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.vaccines[name]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *inv
	return &copied, nil
}

func (m *MemoryStore) Publish(_ context.Context, caregiver string, date domain.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	day := m.slots[date.String()]
	if day == nil {
		day = make(map[string]bool)
		m.slots[date.String()] = day
	}
	if day[caregiver] {
		return apperrors.NewDuplicateSlot(caregiver, date.String())
	}
	day[caregiver] = true
	return nil
}

func (m *MemoryStore) ListByDate(_ context.Context, date domain.Date) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.caregiversLocked(date), nil
}

func (m *MemoryStore) Restore(_ context.Context, caregiver string, date domain.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restoreLocked(caregiver, date)
	return nil
}

func (m *MemoryStore) restoreLocked(caregiver string, date domain.Date) {
	day := m.slots[date.String()]
	if day == nil {
		day = make(map[string]bool)
		m.slots[date.String()] = day
	}
	day[caregiver] = true
}

func (m *MemoryStore) caregiversLocked(date domain.Date) []string {
	var caregivers []string
	for caregiver := range m.slots[date.String()] {
		caregivers = append(caregivers, caregiver)
	}
	sort.Strings(caregivers)
	return caregivers
}

func (m *MemoryStore) Reserve(_ context.Context, patient string, date domain.Date, vaccine string) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.decrementLocked(vaccine, 1); err != nil {
		return nil, err
	}

	caregivers := m.caregiversLocked(date)
	if len(caregivers) == 0 {
		// roll back the decrement; nothing is partially applied
		m.vaccines[vaccine].Doses++
		return nil, apperrors.NewNoCaregiverAvailable(date.String())
	}
	caregiver := caregivers[0]
	delete(m.slots[date.String()], caregiver)

	reservation := domain.Reservation{
		ID:                uuid.NewString(),
		VaccineName:       vaccine,
		PatientUsername:   patient,
		CaregiverUsername: caregiver,
		Date:              date,
		CreatedAt:         time.Now().UTC(),
	}
	m.reservations[reservation.ID] = reservation
	copied := reservation
	return &copied, nil
}

func (m *MemoryStore) Cancel(_ context.Context, reservation *domain.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reservations[reservation.ID]; !ok {
		return apperrors.NewNotFound("appointment", map[string]any{"id": reservation.ID})
	}
	delete(m.reservations, reservation.ID)
	if inv, ok := m.vaccines[reservation.VaccineName]; ok {
		inv.Doses++
	}
	m.restoreLocked(reservation.CaregiverUsername, reservation.Date)
	return nil
}

func (m *MemoryStore) GetByID(_ context.Context, id string) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reservation, ok := m.reservations[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &reservation, nil
}

func (m *MemoryStore) ListByPatient(_ context.Context, patient string) ([]domain.Reservation, error) {
	return m.listBy(func(r domain.Reservation) bool { return r.PatientUsername == patient }), nil
}

func (m *MemoryStore) ListByCaregiver(_ context.Context, caregiver string) ([]domain.Reservation, error) {
	return m.listBy(func(r domain.Reservation) bool { return r.CaregiverUsername == caregiver }), nil
}

func (m *MemoryStore) listBy(match func(domain.Reservation) bool) []domain.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.Reservation
	for _, r := range m.reservations {
		if match(r) {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Time().Before(result[j].Date.Time())
		}
		return result[i].ID < result[j].ID
	})
	return result
}
