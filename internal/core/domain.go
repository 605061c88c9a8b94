package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  CategoryType = "INCOME"
	Expense CategoryType = "EXPENSE"
)

type (
	CategoryType string

	Date struct {
		time.Time
	}

	// User is the authenticated owner of every entity below.
	User struct {
		ID        int64  `json:"id"`
		Username  string `json:"username"`
		Email     string `json:"email"`
		FirstName string `json:"first_name,omitempty"`
		LastName  string `json:"last_name,omitempty"`
	}

	// Account balances are server-owned: account edits never touch them,
	// only transaction and transfer side effects do.
	Account struct {
		ID      int64  `json:"id"`
		Name    string `json:"name"`
		Balance string `json:"balance"`
		Owner   int64  `json:"owner"`
	}

	Category struct {
		ID    int64        `json:"id"`
		Name  string       `json:"name"`
		Type  CategoryType `json:"type"`
		Owner int64        `json:"owner"`
	}

	Transaction struct {
		ID          int64  `json:"id"`
		Account     int64  `json:"account"`
		Category    *int64 `json:"category"`
		Amount      string `json:"amount"`
		Date        Date   `json:"date"`
		Description string `json:"description"`
		Owner       int64  `json:"owner"`
	}

	Transfer struct {
		ID          int64  `json:"id"`
		FromAccount int64  `json:"from_account"`
		ToAccount   int64  `json:"to_account"`
		Amount      string `json:"amount"`
		Date        Date   `json:"date"`
		Description string `json:"description"`
		Owner       int64  `json:"owner"`
	}
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidDate    = errors.New("invalid date")
	ErrEmptyName      = errors.New("empty name")
	ErrInvalidType    = errors.New("invalid category type")
	ErrMissingAccount = errors.New("missing account")
	ErrSameAccount    = errors.New("source and destination account must differ")
)

const dateLayout = "2006-01-02"

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD", the wire format the API uses.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// EntityID implementations let the generic store reconcile records by id.

func (a Account) EntityID() int64     { return a.ID }
func (c Category) EntityID() int64    { return c.ID }
func (t Transaction) EntityID() int64 { return t.ID }
func (t Transfer) EntityID() int64    { return t.ID }
