// Package access gates bot features behind single-use, time-limited codes.
package access

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"shopbot/entity"
	"shopbot/internal/storage"
	"shopbot/lib/sl"
	"shopbot/pkg/metrics"
)

const (
	documentName = "access_codes"

	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 8
	codeLifetime = 24 * time.Hour
)

// Reason explains a verification outcome.
type Reason string

const (
	ReasonSuccess           Reason = "success"
	ReasonAlreadyAuthorized Reason = "already_authorized"
	ReasonExpired           Reason = "expired"
	ReasonInvalid           Reason = "invalid"
)

// errNoChange aborts an Update cycle without persisting anything.
var errNoChange = errors.New("no change")

// Manager issues and redeems access codes against the persisted access
// document. Every mutation is one atomic read-modify-write cycle on the
// injected store.
type Manager struct {
	store *storage.Store
	log   *slog.Logger
	now   func() time.Time
}

func New(store *storage.Store, log *slog.Logger) *Manager {
	return &Manager{
		store: store,
		log:   log.With(sl.Module("access")),
		now:   time.Now,
	}
}

// GenerateCode issues a new code on behalf of an admin: 8 characters from
// A-Z0-9, valid for 24 hours, unused. Collisions with live codes are not
// checked; at 36^8 combinations the overlap chance is accepted.
func (m *Manager) GenerateCode(ctx context.Context, adminID int64) (entity.AccessCode, error) {
	code, err := randomCode()
	if err != nil {
		return entity.AccessCode{}, fmt.Errorf("generate code: %w", err)
	}

	issued := entity.AccessCode{
		Code:       code,
		Expiration: m.now().Add(codeLifetime),
		CreatedBy:  adminID,
		Used:       false,
	}

	var doc entity.AccessDocument
	err = m.store.Update(ctx, documentName, &doc, func() error {
		doc.Codes = append(doc.Codes, issued)
		return nil
	})
	if err != nil {
		metrics.StorageErrors.WithLabelValues(documentName).Inc()
		return entity.AccessCode{}, fmt.Errorf("persist code: %w", err)
	}

	metrics.CodesGenerated.Inc()
	m.log.Info("access code generated",
		sl.User(adminID),
		slog.Time("expiration", issued.Expiration),
	)
	return issued, nil
}

// VerifyCode redeems a code for a user.
//
// Already-authorized users are accepted immediately without consuming
// anything. Otherwise expired codes are swept from the document (the
// sweep persists with this call), the remaining codes are scanned in
// storage order, and a matching unused code is marked used while the user
// joins the authorized set.
func (m *Manager) VerifyCode(ctx context.Context, code string, userID int64) (bool, Reason) {
	accepted := false
	reason := ReasonInvalid

	var doc entity.AccessDocument
	err := m.store.Update(ctx, documentName, &doc, func() error {
		now := m.now()

		if doc.IsAuthorized(userID) {
			accepted, reason = true, ReasonAlreadyAuthorized
			return errNoChange
		}

		live := doc.Codes[:0]
		for _, c := range doc.Codes {
			if !c.Expired(now) {
				live = append(live, c)
			}
		}
		doc.Codes = live

		for i := range doc.Codes {
			c := &doc.Codes[i]
			if c.Code != code || c.Used {
				continue
			}
			if c.Expired(now) {
				// Defensive: the sweep above removed expired codes, so this
				// branch fires only if the code lapses between the sweep and
				// this check.
				accepted, reason = false, ReasonExpired
				return nil
			}
			c.Used = true
			doc.AuthorizedUsers = append(doc.AuthorizedUsers, userID)
			accepted, reason = true, ReasonSuccess
			return nil
		}

		accepted, reason = false, ReasonInvalid
		return nil
	})
	if err != nil && !errors.Is(err, errNoChange) {
		metrics.StorageErrors.WithLabelValues(documentName).Inc()
		m.log.Error("verifying code", sl.User(userID), sl.Err(err))
		return false, ReasonInvalid
	}

	metrics.CodeRedemptions.WithLabelValues(string(reason)).Inc()
	m.log.Debug("code verified",
		sl.User(userID),
		slog.Bool("accepted", accepted),
		slog.String("reason", string(reason)),
	)
	return accepted, reason
}

// IsAuthorized checks the authorized set for a user id.
func (m *Manager) IsAuthorized(ctx context.Context, userID int64) bool {
	var doc entity.AccessDocument
	if err := m.store.View(ctx, documentName, &doc); err != nil {
		m.log.Error("loading access document", sl.Err(err))
		return false
	}
	return doc.IsAuthorized(userID)
}

// ActiveCodes lists unused, unexpired codes in storage order.
// Read-only; expired codes stay in the document until the next sweep.
func (m *Manager) ActiveCodes(ctx context.Context) ([]entity.AccessCode, error) {
	var doc entity.AccessDocument
	if err := m.store.View(ctx, documentName, &doc); err != nil {
		return nil, fmt.Errorf("load access document: %w", err)
	}

	now := m.now()
	var active []entity.AccessCode
	for _, c := range doc.Codes {
		if c.Active(now) {
			active = append(active, c)
		}
	}
	return active, nil
}

func randomCode() (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	buf := make([]byte, codeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
