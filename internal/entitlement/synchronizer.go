package entitlement

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tellbill/server/internal/domain"
)

// State is the synchronizer lifecycle position.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
)

// SDK is the client-side subscription SDK surface the synchronizer
// consumes. Its answers are a fast hint, never sole authority.
type SDK interface {
	// Ready polls SDK readiness; it returns an error until the SDK has
	// finished its own startup.
	Ready(ctx context.Context) error
	ActiveEntitlements(ctx context.Context) (domain.EntitlementRecord, error)
}

// Verifier asks the TellBill backend to confirm the purchase state
// server-side. When it answers, its tier overrides the SDK-derived one.
type Verifier interface {
	VerifyPlan(ctx context.Context, receipt string) (domain.Tier, error)
}

// TierStore persists the resolved tier locally for offline reads.
type TierStore interface {
	LoadTier(ctx context.Context, userID string) (domain.Tier, bool, error)
	SaveTier(ctx context.Context, userID string, tier domain.Tier) error
}

// Options configure a Synchronizer.
type Options struct {
	UserID   string
	SDK      SDK
	Verifier Verifier
	Store    TierStore
	Logger   zerolog.Logger

	// InitAttempts and InitDelay bound the SDK readiness poll. When the
	// cap is exhausted the synchronizer fails open to the cached tier
	// (free when none exists) rather than blocking startup.
	InitAttempts int
	InitDelay    time.Duration
}

// Synchronizer owns the cached tier. It is the tier's single writer;
// everything else reads through Tier. No failure inside it ever
// propagates to callers: the worst case is a stale or free tier until
// the next successful sync.
type Synchronizer struct {
	opts Options
	log  zerolog.Logger

	mu      sync.Mutex
	state   State
	tier    domain.Tier
	started uint64 // generation of the most recently started refresh
	subs    []func(domain.Tier)
}

// New builds a synchronizer in the uninitialized state with the free
// tier cached.
func New(opts Options) *Synchronizer {
	if opts.InitAttempts <= 0 {
		opts.InitAttempts = 5
	}
	if opts.InitDelay <= 0 {
		opts.InitDelay = 2 * time.Second
	}
	return &Synchronizer{
		opts: opts,
		log:  opts.Logger.With().Str("component", "entitlement_sync").Logger(),
		tier: domain.TierFree,
	}
}

// State returns the current lifecycle state.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Tier returns the cached tier. Always answers synchronously.
func (s *Synchronizer) Tier() domain.Tier {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tier
}

// Subscribe registers a callback invoked whenever the tier changes.
// Callbacks run on the goroutine that applied the change.
func (s *Synchronizer) Subscribe(fn func(domain.Tier)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Start drives the uninitialized -> initializing -> ready transition.
// It loads the locally persisted tier first so offline starts keep the
// last-known entitlements, then polls SDK readiness with a bounded
// retry. Exhausting the retry cap fails open: the app must stay usable.
func (s *Synchronizer) Start(ctx context.Context) {
	s.mu.Lock()
	if s.state != StateUninitialized {
		s.mu.Unlock()
		return
	}
	s.state = StateInitializing
	s.mu.Unlock()

	if s.opts.Store != nil {
		if cached, ok, err := s.opts.Store.LoadTier(ctx, s.opts.UserID); err == nil && ok {
			s.apply(cached, false)
		}
	}

	ready := false
	for attempt := 1; attempt <= s.opts.InitAttempts; attempt++ {
		if err := s.opts.SDK.Ready(ctx); err == nil {
			ready = true
			break
		} else {
			s.log.Debug().Err(err).Int("attempt", attempt).Msg("subscription sdk not ready")
		}
		select {
		case <-ctx.Done():
			attempt = s.opts.InitAttempts
		case <-time.After(s.opts.InitDelay):
		}
	}

	if ready {
		s.EntitlementsChanged(ctx)
	} else {
		s.log.Warn().Int("attempts", s.opts.InitAttempts).Msg("subscription sdk never became ready, continuing with cached tier")
	}

	s.mu.Lock()
	s.state = StateReady
	s.mu.Unlock()
}

// EntitlementsChanged handles the SDK's push notification (purchase,
// renewal, cancellation, expiry). It re-runs the entitlement mapping
// and applies the result as a non-authoritative hint.
func (s *Synchronizer) EntitlementsChanged(ctx context.Context) {
	record, err := s.opts.SDK.ActiveEntitlements(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("entitlement fetch failed, keeping cached tier")
		return
	}
	s.apply(ResolveTier(record.Active), true)
}

// Refresh asks the backend to verify the purchase state server-side;
// its answer is authoritative and overrides the SDK hint. Called on
// login and app foreground. Responses are applied last-request-wins: a
// straggling answer from an earlier query never overwrites the result
// of a later one.
func (s *Synchronizer) Refresh(ctx context.Context, receipt string) {
	if s.opts.Verifier == nil {
		return
	}

	s.mu.Lock()
	s.started++
	gen := s.started
	s.mu.Unlock()

	tier, err := s.opts.Verifier.VerifyPlan(ctx, receipt)
	if err != nil {
		s.log.Debug().Err(err).Msg("backend verification failed, keeping cached tier")
		return
	}

	s.mu.Lock()
	stale := gen != s.started
	s.mu.Unlock()
	if stale {
		s.log.Debug().Msg("discarding stale verification response")
		return
	}
	s.apply(tier, true)
}

// apply updates the cached tier, persists it, and notifies subscribers
// when it changed. persist=false is used for the initial cache load.
func (s *Synchronizer) apply(tier domain.Tier, persist bool) {
	s.mu.Lock()
	if tier == s.tier {
		s.mu.Unlock()
		return
	}
	old := s.tier
	s.tier = tier
	subs := make([]func(domain.Tier), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	s.log.Info().Str("from", string(old)).Str("to", string(tier)).Msg("tier changed")

	if persist && s.opts.Store != nil {
		if err := s.opts.Store.SaveTier(context.Background(), s.opts.UserID, tier); err != nil {
			s.log.Debug().Err(err).Msg("tier persist failed")
		}
	}
	for _, fn := range subs {
		fn(tier)
	}
}
