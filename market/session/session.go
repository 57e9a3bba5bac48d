// Package session drives the per-user listing creation wizard: a strictly
// linear state machine that turns free-text chat turns into a structured
// listing. The manager only decides what happens next; sending the actual
// messages is the caller's job.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/shomybay/marketbot/core/logger"
	"github.com/shomybay/marketbot/market"
	"github.com/shomybay/marketbot/market/store"
)

// ErrNoSession reports an Advance call without an active wizard. The
// dispatcher is expected to check Active first, so hitting this is a
// contract violation, not a user-facing condition.
var ErrNoSession = errors.New("session: no active session")

// SkipWord finalizes the photo step without an attachment (case-insensitive).
const SkipWord = "пропустить"

// Result describes the outcome of one wizard turn.
type Result struct {
	// Step awaits the next input. Set unless the wizard completed.
	Step market.Step
	// Invalid marks a rejected input: the step did not advance and the
	// user should be re-prompted with a validation hint.
	Invalid bool
	// Listing is the created listing, non-nil exactly on completion.
	Listing *market.Listing
}

// Completed reports whether the wizard finished on this turn.
func (r Result) Completed() bool { return r.Listing != nil }

type transition struct {
	apply func(d *market.Draft, text string) bool
	next  market.Step
}

// sellFlow is the transition table of the sell wizard. Every step except
// price accepts any non-empty text verbatim; price is the only validator.
var sellFlow = map[market.Step]transition{
	market.StepTitle: {
		apply: func(d *market.Draft, text string) bool {
			d.Title = text
			return true
		},
		next: market.StepPrice,
	},
	market.StepPrice: {
		apply: func(d *market.Draft, text string) bool {
			price, ok := parsePrice(text)
			if !ok {
				return false
			}
			d.Price = price
			return true
		},
		next: market.StepStyle,
	},
	market.StepStyle: {
		apply: func(d *market.Draft, text string) bool {
			d.Style = text
			return true
		},
		next: market.StepGender,
	},
	market.StepGender: {
		apply: func(d *market.Draft, text string) bool {
			d.Gender = text
			return true
		},
		next: market.StepDescription,
	},
	market.StepDescription: {
		apply: func(d *market.Draft, text string) bool {
			d.Description = text
			return true
		},
		next: market.StepPhoto,
	},
}

// parsePrice strips every non-digit rune and parses the remainder, so
// inputs like "5000₽" or "5 000 руб" become 5000. Inputs without digits
// are rejected.
func parsePrice(text string) (int64, bool) {
	var digits strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	price, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return price, true
}

// Manager tracks at most one active wizard per user on top of the shared
// store. Mutations of the same user's session are serialized by a per-user
// lock so concurrently handled updates cannot corrupt the draft.
type Manager struct {
	store store.Store
	ttl   time.Duration
	now   func() time.Time

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewManager builds a Manager. A zero ttl disables session expiry.
func NewManager(st store.Store, ttl time.Duration) *Manager {
	return &Manager{
		store: st,
		ttl:   ttl,
		now:   time.Now,
		locks: make(map[int64]*sync.Mutex),
	}
}

func (m *Manager) userLock(userID int64) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lk, ok := m.locks[userID]
	if !ok {
		lk = &sync.Mutex{}
		m.locks[userID] = lk
	}
	return lk
}

// Start idempotently (re)initializes a sell wizard at the title step.
// An in-flight wizard is discarded in full, leftover draft included.
func (m *Manager) Start(ctx context.Context, userID int64) error {
	lk := m.userLock(userID)
	lk.Lock()
	defer lk.Unlock()

	u, err := m.store.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("session start: %w", err)
	}
	if u == nil {
		u = &market.User{ID: userID, CreatedAt: m.now()}
	}
	u.Session = &market.Session{
		Flow:      market.FlowSell,
		Step:      market.StepTitle,
		UpdatedAt: m.now(),
	}
	if err := m.store.PutUser(ctx, u); err != nil {
		return fmt.Errorf("session start: %w", err)
	}

	logger.Debug(ctx, "service.sessions", "wizard.start",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("flow", string(market.FlowSell)),
	)
	return nil
}

// Active reports whether the user has a live, non-expired wizard.
func (m *Manager) Active(ctx context.Context, userID int64) bool {
	u, err := m.store.GetUser(ctx, userID)
	if err != nil || u == nil || u.Session == nil {
		return false
	}
	return !m.expired(u.Session)
}

func (m *Manager) expired(s *market.Session) bool {
	if m.ttl <= 0 {
		return false
	}
	return m.now().Sub(s.UpdatedAt) > m.ttl
}

// Advance applies the current step's rule to one chat turn. It returns the
// next prompt to issue or, on the terminal transition, the created listing.
// The caller must hold an active session; otherwise ErrNoSession.
func (m *Manager) Advance(ctx context.Context, userID int64, text string) (Result, error) {
	lk := m.userLock(userID)
	lk.Lock()
	defer lk.Unlock()

	u, err := m.store.GetUser(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("session advance: %w", err)
	}
	if u == nil || u.Session == nil {
		return Result{}, ErrNoSession
	}
	sess := u.Session
	if m.expired(sess) {
		u.Session = nil
		if err := m.store.PutUser(ctx, u); err != nil {
			return Result{}, fmt.Errorf("session advance: %w", err)
		}
		logger.Debug(ctx, "service.sessions", "wizard.expired",
			slog.String("status", "skip"),
			slog.Int64("user_id", userID),
		)
		return Result{}, ErrNoSession
	}

	if sess.Step == market.StepPhoto {
		return m.finishOrReprompt(ctx, u, text)
	}

	tr, ok := sellFlow[sess.Step]
	if !ok {
		return Result{}, fmt.Errorf("session advance: unknown step %q", sess.Step)
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" || !tr.apply(&sess.Draft, trimmed) {
		logger.Debug(ctx, "service.sessions", "wizard.reject",
			slog.String("status", "skip"),
			slog.Int64("user_id", userID),
			slog.String("step", string(sess.Step)),
		)
		return Result{Step: sess.Step, Invalid: true}, nil
	}

	sess.Step = tr.next
	sess.UpdatedAt = m.now()
	if err := m.store.PutUser(ctx, u); err != nil {
		return Result{}, fmt.Errorf("session advance: %w", err)
	}
	return Result{Step: sess.Step}, nil
}

// finishOrReprompt handles the terminal photo step: the skip literal
// materializes the listing, anything else re-prompts the skip hint.
// Photo attachments themselves arrive through a different update type and
// are acknowledged by the transport layer, never stored here.
func (m *Manager) finishOrReprompt(ctx context.Context, u *market.User, text string) (Result, error) {
	if !strings.EqualFold(strings.TrimSpace(text), SkipWord) {
		return Result{Step: market.StepPhoto, Invalid: true}, nil
	}

	d := u.Session.Draft
	listing := &market.Listing{
		UserID:      u.ID,
		Title:       d.Title,
		Price:       d.Price,
		Style:       d.Style,
		Gender:      d.Gender,
		Description: d.Description,
		Approved:    true,
	}
	if err := m.store.AppendListing(ctx, listing); err != nil {
		return Result{}, fmt.Errorf("session finish: %w", err)
	}

	u.Session = nil
	if err := m.store.PutUser(ctx, u); err != nil {
		return Result{}, fmt.Errorf("session finish: %w", err)
	}

	logger.Info(ctx, "service.sessions", "wizard.complete",
		slog.String("status", "ok"),
		slog.Int64("user_id", u.ID),
		slog.Int64("listing_id", listing.ID),
	)
	return Result{Listing: listing}, nil
}
