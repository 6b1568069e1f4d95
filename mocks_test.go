package auth_test

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	auth "github.com/toccatech/raspiauth"
)

// memStore is an in-memory CredentialStore honoring the same sentinel
// contract the real backends do, including username/email uniqueness.
type memStore struct {
	mu      sync.Mutex
	records map[string]*auth.Credential // keyed by id
	fail    error                       // forces every call to fail when set
}

var _ auth.CredentialStore = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{records: map[string]*auth.Credential{}}
}

func (s *memStore) FindByUsername(ctx context.Context, username string) (*auth.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return nil, s.fail
	}

	for _, record := range s.records {
		if record.Username == username {
			clone := *record
			return &clone, nil
		}
	}
	return nil, auth.ErrIdentityNotFound
}

func (s *memStore) FindByID(ctx context.Context, id string) (*auth.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return nil, s.fail
	}

	if record, ok := s.records[id]; ok {
		clone := *record
		return &clone, nil
	}
	return nil, auth.ErrIdentityNotFound
}

func (s *memStore) Create(ctx context.Context, record *auth.Credential) (*auth.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return nil, s.fail
	}

	for _, existing := range s.records {
		if existing.Username == record.Username || existing.Email == record.Email {
			return nil, auth.ErrAlreadyRegistered
		}
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	clone := *record
	s.records[record.ID.String()] = &clone

	return record, nil
}

func (s *memStore) Update(ctx context.Context, id string, changes *auth.CredentialUpdate) (*auth.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return nil, s.fail
	}

	record, ok := s.records[id]
	if !ok {
		return nil, auth.ErrIdentityNotFound
	}

	if changes.Email != "" {
		record.Email = changes.Email
	}
	if changes.AvatarURL != "" {
		record.AvatarURL = changes.AvatarURL
	}
	if changes.PasswordHash != "" {
		record.PasswordHash = changes.PasswordHash
	}

	clone := *record
	return &clone, nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// MockLogger implements auth.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}
