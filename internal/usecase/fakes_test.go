package usecase

import (
	"context"
	"errors"
	"sync"

	"jaggery-store/internal/data/entity"
	"jaggery-store/internal/data/repository"

	"github.com/google/uuid"
)

type fakeUserRepo struct {
	mu        sync.Mutex
	users     map[uuid.UUID]entity.User
	updateErr error
	updates   int
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]entity.User)}
	for _, u := range users {
		r.users[u.ID] = *u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindAll(_ context.Context, limit, offset int) ([]*entity.User, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeUserRepo) CountAll(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrUserNotUpdated
	}
	r.users[user.ID] = *user
	r.updates++
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrUserNotUpdated
	}
	delete(r.users, id)
	return nil
}

type sentOTP struct {
	phone string
	code  string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentOTP
	err  error
}

func (s *fakeSender) SendOTP(_ context.Context, phone, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentOTP{phone: phone, code: code})
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]entity.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]entity.Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.Token.String()] = *session
	return nil
}

func (r *fakeSessionRepo) FindValidSession(_ context.Context, token string) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[token]
	if !ok || s.RevokedAt != nil {
		return nil, nil
	}
	return &s, nil
}

func (r *fakeSessionRepo) Revoke(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[token]
	if !ok || s.RevokedAt != nil {
		return repository.ErrSessionNotFound
	}
	now := s.CreatedAt
	s.RevokedAt = &now
	r.sessions[token] = s
	return nil
}

func (r *fakeSessionRepo) RevokeAllUserSessions(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, s := range r.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			now := s.CreatedAt
			s.RevokedAt = &now
			r.sessions[token] = s
		}
	}
	return nil
}

func (r *fakeSessionRepo) CleanExpiredSessions(context.Context) (int64, error) { return 0, nil }
