// Package repotest provides in-memory repositories for service and handler tests.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"leadcrm/internal/models"
	"leadcrm/internal/repositories"
)

type UserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: map[string]models.User{}}
}

func (s *UserStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return repositories.ErrDuplicate
		}
	}
	s.users[u.ID] = *u
	return nil
}

func (s *UserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *UserStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// LeadStore keeps leads in insertion order.
type LeadStore struct {
	mu    sync.Mutex
	leads []models.Lead
}

func NewLeadStore() *LeadStore {
	return &LeadStore{}
}

func (s *LeadStore) Create(_ context.Context, l *models.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.leads {
		if existing.UserID == l.UserID && existing.Email == l.Email {
			return repositories.ErrDuplicate
		}
	}
	l.Score = models.ClampScore(l.Score)
	s.leads = append(s.leads, *l)
	return nil
}

func (s *LeadStore) find(ownerID, id string) int {
	for i, l := range s.leads {
		if l.ID == id && l.UserID == ownerID {
			return i
		}
	}
	return -1
}

func (s *LeadStore) GetByID(_ context.Context, ownerID, id string) (*models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(ownerID, id)
	if i < 0 {
		return nil, repositories.ErrNotFound
	}
	l := s.leads[i]
	return &l, nil
}

func (s *LeadStore) ExistsByEmail(_ context.Context, ownerID, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.leads {
		if l.UserID == ownerID && l.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *LeadStore) Update(_ context.Context, ownerID, id string, p models.LeadPatch) (*models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(ownerID, id)
	if i < 0 {
		return nil, repositories.ErrNotFound
	}
	l := &s.leads[i]
	if p.FirstName != nil {
		l.FirstName = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		l.LastName = strings.TrimSpace(*p.LastName)
	}
	if p.Phone != nil {
		l.Phone = models.TrimOptional(p.Phone)
	}
	if p.Company != nil {
		l.Company = models.TrimOptional(p.Company)
	}
	if p.City != nil {
		l.City = models.TrimOptional(p.City)
	}
	if p.State != nil {
		l.State = models.TrimOptional(p.State)
	}
	if p.Source != nil {
		l.Source = *p.Source
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
	if p.Score != nil {
		l.Score = models.ClampScore(*p.Score)
	}
	if p.LeadValue != nil {
		l.LeadValue = *p.LeadValue
	}
	if p.LastActivityAt != nil {
		l.LastActivityAt = p.LastActivityAt.UTC()
	}
	l.UpdatedAt = time.Now().UTC()
	out := *l
	return &out, nil
}

func (s *LeadStore) Delete(_ context.Context, ownerID, id string) (*models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(ownerID, id)
	if i < 0 {
		return nil, repositories.ErrNotFound
	}
	l := s.leads[i]
	s.leads = append(s.leads[:i], s.leads[i+1:]...)
	return &l, nil
}

func (s *LeadStore) List(_ context.Context, ownerID string, q models.LeadListQuery) ([]models.Lead, int, error) {
	s.mu.Lock()
	var matched []models.Lead
	for _, l := range s.leads {
		if l.UserID == ownerID && matches(l, q) {
			matched = append(matched, l)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		var less bool
		switch q.SortColumn {
		case "score":
			less = a.Score < b.Score
		case "lead_value":
			less = a.LeadValue < b.LeadValue
		case "last_activity_at":
			less = a.LastActivityAt.Before(b.LastActivityAt)
		default:
			less = a.CreatedAt.Before(b.CreatedAt)
		}
		if q.Desc {
			return !less && !equalKey(a, b, q.SortColumn)
		}
		return less
	})

	total := len(matched)
	start := q.Offset()
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	return append([]models.Lead{}, matched[start:end]...), total, nil
}

// Len counts every stored lead across owners.
func (s *LeadStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.leads)
}

func equalKey(a, b models.Lead, col string) bool {
	switch col {
	case "score":
		return a.Score == b.Score
	case "lead_value":
		return a.LeadValue == b.LeadValue
	case "last_activity_at":
		return a.LastActivityAt.Equal(b.LastActivityAt)
	default:
		return a.CreatedAt.Equal(b.CreatedAt)
	}
}

func matches(l models.Lead, q models.LeadListQuery) bool {
	if q.Status != nil && l.Status != *q.Status {
		return false
	}
	if q.Source != nil && l.Source != *q.Source {
		return false
	}
	if q.IsQualified != nil && l.IsQualified != *q.IsQualified {
		return false
	}
	if !inRange(float64(l.Score), q.Score) || !inRange(l.LeadValue, q.LeadValue) {
		return false
	}
	if !inDays(l.CreatedAt, q.CreatedAt) || !inDays(l.LastActivityAt, q.LastActivityAt) {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		hay := []string{l.FirstName, l.LastName, l.Email, deref(l.Phone), deref(l.Company), deref(l.City), deref(l.State)}
		found := false
		for _, h := range hay {
			if strings.Contains(strings.ToLower(h), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func inRange(v float64, r *models.NumberRange) bool {
	if r == nil {
		return true
	}
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

func inDays(t time.Time, r *models.DateRange) bool {
	if r == nil {
		return true
	}
	return !t.Before(r.Start) && !t.After(r.End)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
