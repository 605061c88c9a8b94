// Package worker mirrors transaction mutations into the configured
// Google spreadsheet. It is the consuming side of the mutation events the
// entity stores publish.
package worker

import (
	"context"
	"fmt"

	"findash/internal/analytics"
	"findash/internal/api"
	"findash/internal/core"
	"findash/internal/events"
	"findash/internal/log"
	"findash/internal/store"
)

// RowAppender is the sink a mirrored transaction row is written to.
// Satisfied by the sheets exporter.
type RowAppender interface {
	Append(ctx context.Context, tx core.TransactionDetails) error
}

type Mirror struct {
	gw       *api.Client
	stores   *store.Stores
	exporter RowAppender
	log      *log.Logger
}

func NewMirror(gw *api.Client, stores *store.Stores, exporter RowAppender, logger *log.Logger) *Mirror {
	return &Mirror{
		gw:       gw,
		stores:   stores,
		exporter: exporter,
		log:      logger.WithComponent("mirror"),
	}
}

// Handle processes one mutation event. Only transaction creations and
// updates produce sheet rows; everything else is acknowledged and
// skipped. The record is re-read through the API so the row reflects
// server truth, not whatever the event's publisher had cached.
func (m *Mirror) Handle(ctx context.Context, msg *events.MutationMessage) error {
	if msg.Entity != "transaction" || msg.Action == events.ActionDeleted {
		m.log.Debug("skipping event", "entity", msg.Entity, "action", string(msg.Action), "id", msg.ID)
		return nil
	}

	tx, err := api.Get[core.Transaction](ctx, m.gw, api.EntityPath(api.EndpointTransactions, msg.ID), nil, "failed to load the transaction")
	if err != nil {
		return fmt.Errorf("fetch transaction %d: %w", msg.ID, err)
	}

	details := analytics.PopulateDetails(
		[]core.Transaction{tx},
		m.stores.Accounts.Items(),
		m.stores.Categories.Items(),
	)

	if err := m.exporter.Append(ctx, details[0]); err != nil {
		return fmt.Errorf("mirror transaction %d: %w", msg.ID, err)
	}

	m.log.Info("mirrored transaction", "id", msg.ID, "action", string(msg.Action))
	return nil
}
