package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/atinyakov/ExpenseKeeper/internal/models"
)

// MemoryStore keeps accounts, expenses and projects in process memory. It
// serves as the storage backend when no database is configured and as a
// realistic fake in handler and service tests. It applies the same email
// uniqueness and owner scoping rules as the PostgreSQL repositories.
type MemoryStore struct {
	mu  sync.RWMutex
	now func() time.Time

	accounts    map[models.AccountID]*models.Credentials
	emails      map[string]models.AccountID
	lastAccount models.AccountID

	expenses    map[int64]*memoryExpense
	lastExpense int64

	projects    map[int64]*models.Project
	lastProject int64
}

type memoryExpense struct {
	models.Expense
	deletedAt *time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:      time.Now,
		accounts: make(map[models.AccountID]*models.Credentials),
		emails:   make(map[string]models.AccountID),
		expenses: make(map[int64]*memoryExpense),
		projects: make(map[int64]*models.Project),
	}
}

// CreateAccount stores a standard account, failing with ErrEmailTaken for a known email.
func (s *MemoryStore) CreateAccount(_ context.Context, email, passwordHash string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.emails[email]; ok {
		return nil, ErrEmailTaken
	}
	s.lastAccount++
	c := &models.Credentials{
		Account: models.Account{
			ID:        s.lastAccount,
			Email:     email,
			Role:      models.RoleStandard,
			CreatedAt: s.now().UTC(),
		},
		PasswordHash: passwordHash,
	}
	s.accounts[c.ID] = c
	s.emails[email] = c.ID
	a := c.Account
	return &a, nil
}

// GetCredentials returns an account and its password hash by email.
func (s *MemoryStore) GetCredentials(_ context.Context, email string) (*models.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return nil, ErrNotFound
	}
	c := *s.accounts[id]
	return &c, nil
}

// GetAccount returns the public fields of an account.
func (s *MemoryStore) GetAccount(_ context.Context, id models.AccountID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	a := c.Account
	return &a, nil
}

// GetRole returns the current role of an account.
func (s *MemoryStore) GetRole(_ context.Context, id models.AccountID) (models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.accounts[id]
	if !ok {
		return "", ErrNotFound
	}
	return c.Role, nil
}

// ListAccounts returns every account ordered by id.
func (s *MemoryStore) ListAccounts(_ context.Context) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Account, 0, len(s.accounts))
	for _, c := range s.accounts {
		out = append(out, c.Account)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SetRole changes an account's role.
func (s *MemoryStore) SetRole(_ context.Context, id models.AccountID, role models.Role) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	c.Role = role
	a := c.Account
	return &a, nil
}

// DeleteAccount removes an account. Only tests use it, to simulate an
// account vanishing while its tokens are still valid.
func (s *MemoryStore) DeleteAccount(id models.AccountID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.accounts[id]; ok {
		delete(s.emails, c.Email)
		delete(s.accounts, id)
	}
}

// ownedExpense returns the live expense with the given id only if owner owns it.
func (s *MemoryStore) ownedExpense(owner models.AccountID, id int64) (*memoryExpense, bool) {
	e, ok := s.expenses[id]
	if !ok || e.UserID != owner || e.deletedAt != nil {
		return nil, false
	}
	return e, true
}

// CreateExpense stores an expense owned by owner.
func (s *MemoryStore) CreateExpense(_ context.Context, owner models.AccountID, in models.NewExpense) (*models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	occurred := now
	if in.OccurredAt != nil {
		occurred = *in.OccurredAt
	}
	s.lastExpense++
	e := &memoryExpense{Expense: models.Expense{
		ID:          s.lastExpense,
		UserID:      owner,
		AmountCents: in.AmountCents,
		Description: in.Description,
		OccurredAt:  occurred,
		CreatedAt:   now,
	}}
	s.expenses[e.ID] = e
	out := e.Expense
	return &out, nil
}

// GetExpense returns the owner's live expense.
func (s *MemoryStore) GetExpense(_ context.Context, owner models.AccountID, id int64) (*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.ownedExpense(owner, id)
	if !ok {
		return nil, ErrNotFound
	}
	out := e.Expense
	return &out, nil
}

// ListExpenses returns a page of the owner's expenses, newest first, and their total.
func (s *MemoryStore) ListExpenses(_ context.Context, owner models.AccountID, page models.Page) ([]models.Expense, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var mine []models.Expense
	for _, e := range s.expenses {
		if e.UserID == owner && e.deletedAt == nil {
			mine = append(mine, e.Expense)
		}
	}
	sort.Slice(mine, func(i, j int) bool {
		if !mine[i].OccurredAt.Equal(mine[j].OccurredAt) {
			return mine[i].OccurredAt.After(mine[j].OccurredAt)
		}
		return mine[i].ID > mine[j].ID
	})
	return window(mine, page), len(mine), nil
}

// UpdateExpense applies a partial update to the owner's expense.
func (s *MemoryStore) UpdateExpense(_ context.Context, owner models.AccountID, id int64, p models.ExpensePatch) (*models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.ownedExpense(owner, id)
	if !ok {
		return nil, ErrNotFound
	}
	if p.AmountCents != nil {
		e.AmountCents = *p.AmountCents
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.OccurredAt != nil {
		e.OccurredAt = *p.OccurredAt
	}
	out := e.Expense
	return &out, nil
}

// DeleteExpense marks the owner's expense deleted.
func (s *MemoryStore) DeleteExpense(_ context.Context, owner models.AccountID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.ownedExpense(owner, id)
	if !ok {
		return ErrNotFound
	}
	now := s.now()
	e.deletedAt = &now
	return nil
}

// PurgeDeleted drops soft-deleted expenses whose deletion is older than
// the cutoff and reports how many were removed.
func (s *MemoryStore) PurgeDeleted(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, e := range s.expenses {
		if e.deletedAt != nil && e.deletedAt.Before(cutoff) {
			delete(s.expenses, id)
			n++
		}
	}
	return n, nil
}

// CreateProject stores a new project.
func (s *MemoryStore) CreateProject(_ context.Context, in models.NewProject) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastProject++
	p := &models.Project{
		ID:         s.lastProject,
		Name:       in.Name,
		PriceCents: in.PriceCents,
		CreatedAt:  s.now().UTC(),
	}
	s.projects[p.ID] = p
	out := *p
	return &out, nil
}

// GetProject returns a project by id.
func (s *MemoryStore) GetProject(_ context.Context, id int64) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *p
	return &out, nil
}

// ListProjects returns a page of projects, newest first, and their total.
func (s *MemoryStore) ListProjects(_ context.Context, page models.Page) ([]models.Project, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	return window(all, page), len(all), nil
}

// UpdateProject applies a partial update to a project.
func (s *MemoryStore) UpdateProject(_ context.Context, id int64, patch models.ProjectPatch) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.PriceCents != nil {
		p.PriceCents = *patch.PriceCents
	}
	out := *p
	return &out, nil
}

// DeleteProject removes a project.
func (s *MemoryStore) DeleteProject(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		return ErrNotFound
	}
	delete(s.projects, id)
	return nil
}

func window[T any](items []T, page models.Page) []T {
	start := page.Offset()
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := start + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
