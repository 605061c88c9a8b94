package store

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"findash/internal/api"
	"findash/internal/core"
	"findash/internal/log"
)

// Stores bundles the four entity stores the dashboard works with.
type Stores struct {
	Accounts     *Store[core.Account]
	Categories   *Store[core.Category]
	Transactions *Store[core.Transaction]
	Transfers    *Store[core.Transfer]

	log *log.Logger
}

func NewStores(gw *api.Client, pub Publisher, logger *log.Logger) *Stores {
	s := &Stores{
		Accounts:     New[core.Account]("account", api.EndpointAccounts, gw, pub, logger),
		Categories:   New[core.Category]("category", api.EndpointCategories, gw, pub, logger),
		Transactions: New[core.Transaction]("transaction", api.EndpointTransactions, gw, pub, logger),
		Transfers:    New[core.Transfer]("transfer", api.EndpointTransfers, gw, pub, logger),
		log:          logger.WithComponent("stores"),
	}

	// Category lists stay name-sorted after create/update; the other
	// collections keep insertion order.
	s.Categories.sortAfterWrite = func(items []core.Category) {
		sort.SliceStable(items, func(i, j int) bool {
			return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
		})
	}

	return s
}

// PrefetchSupporting loads the account and category collections
// concurrently. These feed auxiliary dropdowns: failures are logged and
// the collections stay empty rather than failing the caller.
func (s *Stores) PrefetchSupporting(ctx context.Context) {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if _, err := s.Accounts.FetchAll(ctx, nil); err != nil {
			s.log.Warn("account prefetch failed, continuing with an empty collection", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		if _, err := s.Categories.FetchAll(ctx, nil); err != nil {
			s.log.Warn("category prefetch failed, continuing with an empty collection", "error", err)
		}
		return nil
	})
	_ = g.Wait()
}
