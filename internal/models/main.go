// Package models defines the core data structures for accounts, expenses
// and projects.
package models

import (
	"math"
	"strconv"
	"time"
)

// AccountID identifies an account. Valid identifiers are strictly positive.
type AccountID int64

// Valid reports whether id can identify a persisted account.
func (id AccountID) Valid() bool { return id > 0 }

// String returns the decimal form used as a token subject.
func (id AccountID) String() string { return strconv.FormatInt(int64(id), 10) }

// Role is an account's privilege level.
type Role string

const (
	// RoleStandard is assigned to every newly registered account.
	RoleStandard Role = "standard"
	// RoleAdmin grants access to administrative operations.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleStandard || r == RoleAdmin
}

// Account is the public view of a registered user. It never carries the
// password hash, so it is always safe to serialize.
type Account struct {
	ID        AccountID `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Credentials pairs an account with its stored password hash. It is only
// used between the repository and the credential check.
type Credentials struct {
	Account
	PasswordHash string
}

// Expense is a record owned by exactly one account.
type Expense struct {
	ID          int64     `json:"id"`
	UserID      AccountID `json:"user_id"`
	AmountCents int64     `json:"amount_cents"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurred_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewExpense holds the client-editable fields of an expense to create.
// The owner is never part of it.
type NewExpense struct {
	AmountCents int64
	Description string
	// OccurredAt defaults to the creation time when nil.
	OccurredAt *time.Time
}

// ExpensePatch holds a partial update; nil fields are left unchanged.
type ExpensePatch struct {
	AmountCents *int64
	Description *string
	OccurredAt  *time.Time
}

// Empty reports whether the patch changes nothing.
func (p ExpensePatch) Empty() bool {
	return p.AmountCents == nil && p.Description == nil && p.OccurredAt == nil
}

// Project is a shared record visible to everyone.
type Project struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewProject holds the fields of a project to create.
type NewProject struct {
	Name       string
	PriceCents int64
}

// ProjectPatch holds a partial project update; nil fields are left unchanged.
type ProjectPatch struct {
	Name       *string
	PriceCents *int64
}

// Empty reports whether the patch changes nothing.
func (p ProjectPatch) Empty() bool {
	return p.Name == nil && p.PriceCents == nil
}

// Page selects a window of a list.
type Page struct {
	// Page is 1-based.
	Page  int
	Limit int
}

// Offset returns the number of rows to skip. It saturates at math.MaxInt
// instead of wrapping, so it is never negative.
func (p Page) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// Overflows reports whether the offset of p does not fit in an int.
func (p Page) Overflows() bool {
	return p.Page > 1 && p.Limit > 0 && p.Page-1 > math.MaxInt/p.Limit
}
