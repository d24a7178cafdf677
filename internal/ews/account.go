package ews

import (
	"context"
	"errors"
)

// Account is an ordered, non-empty list of sessions. An address may
// resolve on only one tenant, so lookups try each session in turn.
type Account struct {
	sessions []*Session
}

// NewAccount creates an account over the given sessions, in order.
func NewAccount(sessions ...*Session) (*Account, error) {
	if len(sessions) == 0 {
		return nil, errors.New("at least one session is required")
	}
	return &Account{sessions: sessions}, nil
}

// GetMailbox resolves an SMTP address to a mailbox, trying sessions in
// order. A session answering "no such mailbox" is skipped; any other
// failure aborts the lookup. When every session reports the mailbox as
// missing, ErrMailboxNotFound is returned.
func (a *Account) GetMailbox(ctx context.Context, address string) (*Mailbox, error) {
	for _, s := range a.sessions {
		mb, err := s.resolve(ctx, address)
		if errors.Is(err, ErrMailboxNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return mb, nil
	}
	return nil, ErrMailboxNotFound
}
