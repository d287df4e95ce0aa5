package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/devagency/agency-api/internal/core/domain"
	"github.com/devagency/agency-api/internal/core/ports"
)

type stubUserRepo struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	findErr error
}

func newStubUserRepo(seed ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[string]*domain.User)}
	for _, u := range seed {
		r.users[u.ID] = cloneUser(u)
	}
	return r
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrUserExists
		}
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) List(_ context.Context, filter domain.UserFilter) ([]*domain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, u := range r.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Search != "" && !strings.Contains(u.Name+u.Email, filter.Search) {
			continue
		}
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLogin = &at
	return nil
}

func (r *stubUserRepo) Stats(context.Context) (*domain.UserStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &domain.UserStats{TotalUsers: int64(len(r.users))}
	for _, u := range r.users {
		if u.Role == domain.RoleClient {
			stats.TotalClients++
		} else {
			stats.TotalAdmins++
		}
		if u.IsActive() {
			stats.ActiveUsers++
		} else {
			stats.InactiveUsers++
		}
	}
	return stats, nil
}

type stubSessionRepo struct {
	mu        sync.Mutex
	sessions  map[string]*domain.Session
	users     *stubUserRepo
	deleteErr error
	deletes   int

	// beforeGet and afterGet run outside the lock around a lookup, so a
	// test can interleave a concurrent sweep.
	beforeGet func()
	afterGet  func()
}

func newStubSessionRepo(users *stubUserRepo) *stubSessionRepo {
	return &stubSessionRepo{sessions: make(map[string]*domain.Session), users: users}
}

func (r *stubSessionRepo) Create(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *s
	r.sessions[s.Token] = &clone
	return nil
}

func (r *stubSessionRepo) GetSessionWithUser(ctx context.Context, token string) (*domain.Session, error) {
	if r.beforeGet != nil {
		r.beforeGet()
	}
	r.mu.Lock()
	s, ok := r.sessions[token]
	r.mu.Unlock()
	if r.afterGet != nil {
		r.afterGet()
	}
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	clone := *s
	if r.users != nil {
		if u, err := r.users.FindByID(ctx, s.UserID); err == nil {
			clone.User = u.Sanitized()
		}
	}
	return &clone, nil
}

func (r *stubSessionRepo) DeleteByToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes++
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.sessions, token)
	return nil
}

func (r *stubSessionRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for token, s := range r.sessions {
		if s.ExpiresAt.Before(now) {
			delete(r.sessions, token)
			n++
		}
	}
	return n, nil
}

func (r *stubSessionRepo) ListActiveByUser(_ context.Context, userID string, now time.Time) ([]*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Session
	for _, s := range r.sessions {
		if s.UserID == userID && now.Before(s.ExpiresAt) {
			clone := *s
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubSessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

type stubRequestRepo struct {
	requests map[string]*domain.ServiceRequest
	lastList domain.ServiceRequestFilter
}

func newStubRequestRepo(seed ...*domain.ServiceRequest) *stubRequestRepo {
	r := &stubRequestRepo{requests: make(map[string]*domain.ServiceRequest)}
	for _, req := range seed {
		clone := *req
		r.requests[req.ID] = &clone
	}
	return r
}

func (r *stubRequestRepo) Create(_ context.Context, req *domain.ServiceRequest) error {
	clone := *req
	r.requests[req.ID] = &clone
	return nil
}

func (r *stubRequestRepo) FindByID(_ context.Context, id string) (*domain.ServiceRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, domain.ErrServiceRequestNotFound
	}
	clone := *req
	return &clone, nil
}

func (r *stubRequestRepo) List(_ context.Context, filter domain.ServiceRequestFilter) ([]*domain.ServiceRequest, int64, error) {
	r.lastList = filter
	var out []*domain.ServiceRequest
	for _, req := range r.requests {
		if filter.UserID != "" && req.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		clone := *req
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

func (r *stubRequestRepo) Update(_ context.Context, req *domain.ServiceRequest) error {
	if _, ok := r.requests[req.ID]; !ok {
		return domain.ErrServiceRequestNotFound
	}
	clone := *req
	r.requests[req.ID] = &clone
	return nil
}

func (r *stubRequestRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.requests[id]; !ok {
		return domain.ErrServiceRequestNotFound
	}
	delete(r.requests, id)
	return nil
}

func (r *stubRequestRepo) Stats(context.Context) (*domain.ServiceRequestStats, error) {
	stats := &domain.ServiceRequestStats{Total: int64(len(r.requests))}
	for _, req := range r.requests {
		switch req.Status {
		case domain.RequestPending:
			stats.Pending++
		case domain.RequestInProgress:
			stats.InProgress++
		case domain.RequestReview:
			stats.Review++
		case domain.RequestCompleted:
			stats.Completed++
		case domain.RequestCancelled:
			stats.Cancelled++
		}
	}
	return stats, nil
}

func (r *stubRequestRepo) CountByUser(_ context.Context, userID string) (total, pending, completed int64, err error) {
	for _, req := range r.requests {
		if req.UserID != userID {
			continue
		}
		total++
		switch req.Status {
		case domain.RequestPending:
			pending++
		case domain.RequestCompleted:
			completed++
		}
	}
	return total, pending, completed, nil
}

type stubNotificationRepo struct {
	created []*domain.Notification
	unread  int64
}

func (r *stubNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	clone := *n
	r.created = append(r.created, &clone)
	return nil
}

func (r *stubNotificationRepo) List(_ context.Context, filter domain.NotificationFilter) ([]*domain.Notification, int64, error) {
	var out []*domain.Notification
	for _, n := range r.created {
		if n.UserID == filter.UserID {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubNotificationRepo) CountUnread(context.Context, string) (int64, error) {
	return r.unread, nil
}

func (r *stubNotificationRepo) MarkRead(_ context.Context, id, userID string) (*domain.Notification, error) {
	for _, n := range r.created {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return n, nil
		}
	}
	return nil, domain.ErrNotificationNotFound
}

func (r *stubNotificationRepo) MarkAllRead(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, item := range r.created {
		if item.UserID == userID && !item.Read {
			item.Read = true
			n++
		}
	}
	return n, nil
}

func (r *stubNotificationRepo) Delete(_ context.Context, id, userID string) error {
	for i, n := range r.created {
		if n.ID == id && n.UserID == userID {
			r.created = append(r.created[:i], r.created[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotificationNotFound
}

type stubActivity struct {
	mu      sync.Mutex
	entries []domain.ActivityLog
}

func (a *stubActivity) Record(_ context.Context, entry domain.ActivityLog) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

func (a *stubActivity) List(_ context.Context, userID string, _ int) ([]*domain.ActivityLog, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []*domain.ActivityLog
	for i := range a.entries {
		if a.entries[i].UserID == userID {
			entry := a.entries[i]
			out = append(out, &entry)
		}
	}
	return out, nil
}

func (a *stubActivity) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

type stubMailQueue struct {
	sent   []string
	accept bool
}

func (q *stubMailQueue) Enqueue(msg ports.MailMessage) bool {
	q.sent = append(q.sent, msg.To)
	return q.accept
}

// fixedClock returns a controllable time source.
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
