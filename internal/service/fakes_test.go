package service_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/nickle23/DistriMundoEscolar/internal/entity"
	"github.com/nickle23/DistriMundoEscolar/internal/repository"

	"github.com/google/uuid"
)

var errStoreDown = errors.New("store down")

type fakeVendorRepo struct {
	mu      sync.Mutex
	vendors map[string]entity.Vendor
	failAll bool
}

func newFakeVendorRepo() *fakeVendorRepo {
	return &fakeVendorRepo{vendors: make(map[string]entity.Vendor)}
}

func (r *fakeVendorRepo) FindByCode(_ context.Context, code string) (*entity.Vendor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, errStoreDown
	}
	vendor, ok := r.vendors[code]
	if !ok {
		return nil, nil
	}
	return &vendor, nil
}

func (r *fakeVendorRepo) Create(_ context.Context, vendor *entity.Vendor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errStoreDown
	}
	if _, ok := r.vendors[vendor.Code]; ok {
		return errors.New("duplicate key")
	}
	r.vendors[vendor.Code] = *vendor
	return nil
}

func (r *fakeVendorRepo) Update(_ context.Context, vendor *entity.Vendor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errStoreDown
	}
	r.vendors[vendor.Code] = *vendor
	return nil
}

func (r *fakeVendorRepo) Delete(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errStoreDown
	}
	delete(r.vendors, code)
	return nil
}

func (r *fakeVendorRepo) List(_ context.Context, limit, offset int) ([]entity.Vendor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, errStoreDown
	}
	codes := make([]string, 0, len(r.vendors))
	for code := range r.vendors {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	vendors := make([]entity.Vendor, 0, len(codes))
	for _, code := range codes {
		vendors = append(vendors, r.vendors[code])
	}
	if offset > 0 {
		if offset >= len(vendors) {
			return nil, nil
		}
		vendors = vendors[offset:]
	}
	if limit > 0 && limit < len(vendors) {
		vendors = vendors[:limit]
	}
	return vendors, nil
}

// set writes directly to the backing map, bypassing the service layer.
func (r *fakeVendorRepo) set(vendor entity.Vendor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vendors[vendor.Code] = vendor
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]entity.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]entity.Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, s *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *s
	return nil
}

func (r *fakeSessionRepo) FindByID(_ context.Context, sessionID uuid.UUID) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

func (r *fakeSessionRepo) IsLive(_ context.Context, sessionID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	return ok && session.IsActive, nil
}

func (r *fakeSessionRepo) End(_ context.Context, sessionID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok || !session.IsActive {
		return nil
	}
	now := time.Now()
	session.IsActive = false
	session.EndedAt = &now
	r.sessions[sessionID] = session
	return nil
}

func (r *fakeSessionRepo) RevokeAllByVendor(_ context.Context, vendorCode string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var count int64
	for id, session := range r.sessions {
		if session.VendorCode == vendorCode && session.IsActive {
			session.IsActive = false
			session.EndedAt = &now
			r.sessions[id] = session
			count++
		}
	}
	return count, nil
}

func (r *fakeSessionRepo) ListByVendor(_ context.Context, vendorCode string, liveOnly bool) ([]entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sessions []entity.Session
	for _, session := range r.sessions {
		if vendorCode != "" && session.VendorCode != vendorCode {
			continue
		}
		if liveOnly && !session.IsActive {
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (r *fakeSessionRepo) liveCount(vendorCode string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, session := range r.sessions {
		if session.VendorCode == vendorCode && session.IsActive {
			count++
		}
	}
	return count
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events []entity.AccessEvent
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{}
}

func (r *fakeEventRepo) Log(_ context.Context, event *entity.AccessEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeEventRepo) List(_ context.Context, vendorCode string, limit, offset int) ([]entity.AccessEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var events []entity.AccessEvent
	for _, event := range r.events {
		if vendorCode != "" && event.VendorCode != vendorCode {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func (r *fakeEventRepo) outcomes() []entity.AccessOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	outcomes := make([]entity.AccessOutcome, 0, len(r.events))
	for _, event := range r.events {
		outcomes = append(outcomes, event.Outcome)
	}
	return outcomes
}

func (r *fakeEventRepo) last() *entity.AccessEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return nil
	}
	event := r.events[len(r.events)-1]
	return &event
}

// fakeUnitOfWork hands the same fakes to the closure. It provides no
// atomicity; the tests assert ordering and outcomes, not isolation.
type fakeUnitOfWork struct {
	vendors  *fakeVendorRepo
	sessions *fakeSessionRepo
}

func (u *fakeUnitOfWork) Do(ctx context.Context, fn func(vendors repository.VendorRepository, sessions repository.SessionRepository) error) error {
	return fn(u.vendors, u.sessions)
}

type fixedClock struct {
	at time.Time
}

func (c fixedClock) Now() time.Time {
	return c.at
}
