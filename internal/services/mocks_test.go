package services

import (
	"context"
	"slices"
	"sync"

	"confcentral/internal/domain"
)

// In-memory fakes shared by the service tests. They implement the repository
// semantics closely enough to exercise the business rules without a store.

func testConferenceKey(organizerID string, id int64) *domain.Key {
	return domain.NewIDKey(domain.KindConference, id, domain.NewNameKey(domain.KindProfile, organizerID, nil))
}

func testSessionToken(organizerID string, conferenceID, sessionID int64) string {
	return domain.NewIDKey(domain.KindSession, sessionID, testConferenceKey(organizerID, conferenceID)).Encode()
}

type mockProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*domain.Profile
	err      error
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[string]*domain.Profile)}
}

func (m *mockProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.profiles[p.UserID]; ok {
		return domain.ErrConflict
	}
	cp := *p
	m.profiles[p.UserID] = &cp
	return nil
}

func (m *mockProfileRepo) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProfileRepo) Update(ctx context.Context, p *domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[p.UserID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	m.profiles[p.UserID] = &cp
	return nil
}

func (m *mockProfileRepo) AddToWishlist(ctx context.Context, userID, sessionKey string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if slices.Contains(p.SessionKeysWishlist, sessionKey) {
		return false, nil
	}
	p.SessionKeysWishlist = append(p.SessionKeysWishlist, sessionKey)
	return true, nil
}

func (m *mockProfileRepo) RemoveFromWishlist(ctx context.Context, userID, sessionKey string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return false, domain.ErrNotFound
	}
	i := slices.Index(p.SessionKeysWishlist, sessionKey)
	if i < 0 {
		return false, nil
	}
	p.SessionKeysWishlist = slices.Delete(p.SessionKeysWishlist, i, i+1)
	return true, nil
}

type mockConferenceRepo struct {
	mu          sync.Mutex
	nextID      int64
	conferences map[domain.ConferenceRef]*domain.Conference
	queryCalls  int
	queryResult []*domain.Conference
	lastQuery   *domain.ConferenceQuery
	err         error
}

func newMockConferenceRepo() *mockConferenceRepo {
	return &mockConferenceRepo{conferences: make(map[domain.ConferenceRef]*domain.Conference)}
}

func (m *mockConferenceRepo) AllocateID(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.nextID++
	return m.nextID, nil
}

func (m *mockConferenceRepo) Create(ctx context.Context, c *domain.Conference) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cp := *c
	m.conferences[domain.ConferenceRef{OrganizerID: c.OrganizerID, ID: c.ID}] = &cp
	return nil
}

func (m *mockConferenceRepo) Get(ctx context.Context, ref domain.ConferenceRef) (*domain.Conference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conferences[ref]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockConferenceRepo) GetMulti(ctx context.Context, refs []domain.ConferenceRef) ([]*domain.Conference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.Conference, 0, len(refs))
	for _, ref := range refs {
		if c, ok := m.conferences[ref]; ok {
			cp := *c
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (m *mockConferenceRepo) ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.Conference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.Conference, 0)
	for _, c := range m.conferences {
		if c.OrganizerID == organizerID {
			cp := *c
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (m *mockConferenceRepo) Query(ctx context.Context, q *domain.ConferenceQuery) ([]*domain.Conference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryCalls++
	m.lastQuery = q
	if m.err != nil {
		return nil, m.err
	}
	return m.queryResult, nil
}

type mockSessionRepo struct {
	mu       sync.Mutex
	nextID   int64
	sessions map[domain.SessionRef]*domain.Session
	err      error
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[domain.SessionRef]*domain.Session)}
}

func (m *mockSessionRepo) AllocateID(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.nextID++
	return m.nextID, nil
}

func (m *mockSessionRepo) Create(ctx context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cp := *s
	m.sessions[domain.SessionRef{ConferenceKey: s.ConferenceKey, ID: s.ID}] = &cp
	return nil
}

func (m *mockSessionRepo) Get(ctx context.Context, ref domain.SessionRef) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[ref]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockSessionRepo) GetMulti(ctx context.Context, refs []domain.SessionRef) ([]*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.Session, 0, len(refs))
	for _, ref := range refs {
		if s, ok := m.sessions[ref]; ok {
			cp := *s
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (m *mockSessionRepo) list(filter func(*domain.Session) bool) []*domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.Session, 0)
	for _, s := range m.sessions {
		if filter(s) {
			cp := *s
			result = append(result, &cp)
		}
	}
	slices.SortFunc(result, func(a, b *domain.Session) int {
		if a.StartTime != b.StartTime {
			return a.StartTime - b.StartTime
		}
		return int(a.ID - b.ID)
	})
	return result
}

func (m *mockSessionRepo) ListAll(ctx context.Context) ([]*domain.Session, error) {
	return m.list(func(s *domain.Session) bool { return true }), nil
}

func (m *mockSessionRepo) ListByConference(ctx context.Context, conferenceKey, typeOfSession string) ([]*domain.Session, error) {
	return m.list(func(s *domain.Session) bool {
		return s.ConferenceKey == conferenceKey && (typeOfSession == "" || s.TypeOfSession == typeOfSession)
	}), nil
}

func (m *mockSessionRepo) ListBySpeaker(ctx context.Context, speakerName string) ([]*domain.Session, error) {
	return m.list(func(s *domain.Session) bool {
		return s.SpeakerName == speakerName
	}), nil
}

func (m *mockSessionRepo) ListBySpeakerInConference(ctx context.Context, speakerName, conferenceKey string) ([]*domain.Session, error) {
	return m.list(func(s *domain.Session) bool {
		return s.SpeakerName == speakerName && s.ConferenceKey == conferenceKey
	}), nil
}

func (m *mockSessionRepo) ListUpcoming(ctx context.Context, hourCutoff int, excludedType string) ([]*domain.Session, error) {
	return m.list(func(s *domain.Session) bool {
		return s.StartTime >= 1 && s.StartTime <= hourCutoff && s.TypeOfSession != excludedType
	}), nil
}

type mockSpeakerRepo struct {
	mu       sync.Mutex
	speakers map[string]*domain.Speaker
	err      error
}

func newMockSpeakerRepo() *mockSpeakerRepo {
	return &mockSpeakerRepo{speakers: make(map[string]*domain.Speaker)}
}

func (m *mockSpeakerRepo) GetByName(ctx context.Context, name string) (*domain.Speaker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.speakers[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockSpeakerRepo) CreateIfAbsent(ctx context.Context, s *domain.Speaker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.speakers[s.Name]; ok {
		return nil
	}
	cp := *s
	m.speakers[s.Name] = &cp
	return nil
}

// fakeRegistrationStore reimplements the engine's semantics over the two
// in-memory fakes so the seat-accounting invariant can be checked at the
// service level.
type fakeRegistrationStore struct {
	profiles    *mockProfileRepo
	conferences *mockConferenceRepo
	err         error
}

func (f *fakeRegistrationStore) Register(ctx context.Context, userID string, ref domain.ConferenceRef, conferenceKey string) error {
	if f.err != nil {
		return f.err
	}
	f.profiles.mu.Lock()
	defer f.profiles.mu.Unlock()
	f.conferences.mu.Lock()
	defer f.conferences.mu.Unlock()

	p, ok := f.profiles.profiles[userID]
	if !ok {
		return domain.ErrNotFound
	}
	c, ok := f.conferences.conferences[ref]
	if !ok {
		return domain.ErrNotFound
	}
	if slices.Contains(p.ConferenceKeysToAttend, conferenceKey) {
		return domain.ErrConflict
	}
	if c.SeatsAvailable <= 0 {
		return domain.ErrConflict
	}
	p.ConferenceKeysToAttend = append(p.ConferenceKeysToAttend, conferenceKey)
	c.SeatsAvailable--
	return nil
}

func (f *fakeRegistrationStore) Unregister(ctx context.Context, userID string, ref domain.ConferenceRef, conferenceKey string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.profiles.mu.Lock()
	defer f.profiles.mu.Unlock()
	f.conferences.mu.Lock()
	defer f.conferences.mu.Unlock()

	p, ok := f.profiles.profiles[userID]
	if !ok {
		return false, domain.ErrNotFound
	}
	c, ok := f.conferences.conferences[ref]
	if !ok {
		return false, domain.ErrNotFound
	}
	i := slices.Index(p.ConferenceKeysToAttend, conferenceKey)
	if i < 0 {
		return false, nil
	}
	p.ConferenceKeysToAttend = slices.Delete(p.ConferenceKeysToAttend, i, i+1)
	c.SeatsAvailable++
	return true, nil
}

type mockEmailService struct {
	mu   sync.Mutex
	sent []*domain.ConferenceConfirmationEmailData
	err  error
}

func (m *mockEmailService) SendConferenceConfirmation(ctx context.Context, data *domain.ConferenceConfirmationEmailData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, data)
	return nil
}
