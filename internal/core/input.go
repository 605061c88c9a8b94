package core

import "strings"

// Input payloads for create/update calls. Each validates its own boundary
// invariants so invalid data never reaches the network.
type (
	AccountInput struct {
		Name    string `json:"name"`
		Balance string `json:"balance,omitempty"`
	}

	CategoryInput struct {
		Name string       `json:"name"`
		Type CategoryType `json:"type"`
	}

	TransactionInput struct {
		Account     int64  `json:"account"`
		Category    *int64 `json:"category,omitempty"`
		Amount      string `json:"amount"`
		Date        Date   `json:"date"`
		Description string `json:"description,omitempty"`
	}

	TransferInput struct {
		FromAccount int64  `json:"from_account"`
		ToAccount   int64  `json:"to_account"`
		Amount      string `json:"amount"`
		Date        Date   `json:"date"`
		Description string `json:"description,omitempty"`
	}
)

func (in AccountInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrEmptyName
	}
	if in.Balance != "" {
		if _, err := ParseAmount(in.Balance); err != nil {
			return err
		}
	}
	return nil
}

func (in CategoryInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrEmptyName
	}
	switch in.Type {
	case Income, Expense:
	default:
		return ErrInvalidType
	}
	return nil
}

func (in TransactionInput) Validate() error {
	if in.Account == 0 {
		return ErrMissingAccount
	}
	if _, err := ParseAmount(in.Amount); err != nil {
		return err
	}
	return in.Date.Validate()
}

func (in TransferInput) Validate() error {
	if in.FromAccount == 0 || in.ToAccount == 0 {
		return ErrMissingAccount
	}
	if in.FromAccount == in.ToAccount {
		return ErrSameAccount
	}
	if _, err := ParseAmount(in.Amount); err != nil {
		return err
	}
	return in.Date.Validate()
}
