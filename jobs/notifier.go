package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ncrtrack/ncrtrack/internal/rnc"
	"github.com/ncrtrack/ncrtrack/internal/shares"
	"github.com/ncrtrack/ncrtrack/internal/users"
)

// UserDirectory resolves principal ids to accounts for addressing.
type UserDirectory interface {
	Get(ctx context.Context, id int64) (users.User, error)
}

// Notifier turns domain events into queued emails. Enqueue failures are
// logged, never surfaced: notification must not fail the operation that
// triggered it.
type Notifier struct {
	client *Client
	users  UserDirectory
	logger *slog.Logger
}

// NewNotifier constructs a Notifier.
func NewNotifier(client *Client, users UserDirectory, logger *slog.Logger) *Notifier {
	return &Notifier{client: client, users: users, logger: logger}
}

// ShareCreated mails the grantee about the new grant.
func (n *Notifier) ShareCreated(ctx context.Context, share shares.Share) {
	grantee, err := n.users.Get(ctx, share.GranteeID)
	if err != nil {
		n.logger.Warn("share notification: grantee lookup", slog.Int64("grantee_id", share.GranteeID), slog.Any("error", err))
		return
	}
	n.enqueue(ctx, SendEmailPayload{
		To:      grantee.Email,
		Subject: fmt.Sprintf("A non-conformance report was shared with you (record %d)", share.RecordID),
		Body: fmt.Sprintf("Hello %s,\n\nRecord %d was shared with you with %s access.\n",
			grantee.Name, share.RecordID, share.Level),
	})
}

// RecordFinalized mails the record owner.
func (n *Notifier) RecordFinalized(ctx context.Context, rec rnc.Record) {
	owner, err := n.users.Get(ctx, rec.OwnerID)
	if err != nil {
		n.logger.Warn("finalize notification: owner lookup", slog.Int64("owner_id", rec.OwnerID), slog.Any("error", err))
		return
	}
	n.enqueue(ctx, SendEmailPayload{
		To:      owner.Email,
		Subject: fmt.Sprintf("Report %s was finalized", rec.RNCNumber),
		Body: fmt.Sprintf("Hello %s,\n\nYour report %s (%s) has been finalized.\n",
			owner.Name, rec.RNCNumber, rec.Title),
	})
}

func (n *Notifier) enqueue(ctx context.Context, payload SendEmailPayload) {
	if n.client == nil {
		return
	}
	if _, err := n.client.EnqueueSendEmail(ctx, payload); err != nil {
		n.logger.Warn("enqueue email", slog.String("to", payload.To), slog.Any("error", err))
	}
}
