package session

import (
	"context"
	"errors"
	"sync"

	"strarun-gateway/internal/cache"
	"strarun-gateway/internal/strava"
)

// ErrStateMismatch is returned when an OAuth callback carries a state value
// that does not match the stored nonce. The exchange fails closed before any
// network call so the UI can ask the user to retry sign-in, distinct from a
// transport failure.
var ErrStateMismatch = errors.New("oauth state validation failed, please try signing in again")

type State int

const (
	StateAnonymous State = iota
	StateRefreshPending
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshPending:
		return "refresh_pending"
	default:
		return "anonymous"
	}
}

// Snapshot is a consistent view of the session. Athlete is non-nil exactly
// when State is StateAuthenticated; consumers never observe a torn pair.
type Snapshot struct {
	State   State
	Athlete *strava.Athlete
}

// Credentials holds the current bearer token. The manager owns writes; the
// transport wrapper reads through the TokenSource interface.
type Credentials struct {
	mu    sync.RWMutex
	token string
}

func NewCredentials() *Credentials {
	return &Credentials{}
}

func (c *Credentials) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Credentials) set(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Watcher receives a Snapshot on every session transition. Slow watchers
// drop updates rather than block the manager.
type Watcher struct {
	C chan Snapshot
}

// Manager owns the authentication state machine. All transitions go through
// it; feature code reads state via Current or Subscribe.
type Manager struct {
	api   *strava.Client
	cache *cache.Store
	creds *Credentials

	mu       sync.Mutex
	state    State
	athlete  *strava.Athlete
	gen      uint64
	nonce    nonceSlot
	watchers map[*Watcher]struct{}
}

func NewManager(api *strava.Client, store *cache.Store, creds *Credentials) *Manager {
	return &Manager{
		api:      api,
		cache:    store,
		creds:    creds,
		watchers: map[*Watcher]struct{}{},
	}
}

// Init runs the startup probe. An authenticated backend session enters
// Authenticated directly; a stale access token with a usable refresh
// credential goes through RefreshPending and one silent refresh. Refresh
// failure is terminal for the session, never retried.
func (m *Manager) Init(ctx context.Context) Snapshot {
	status, err := m.api.AuthStatus(ctx)
	if err != nil {
		return m.transition(StateAnonymous, nil)
	}

	switch {
	case status.Authenticated:
		athlete := status.Athlete
		if athlete == nil {
			profile, err := m.api.Athlete(ctx)
			if err != nil {
				return m.transition(StateAnonymous, nil)
			}
			athlete = &profile
		}
		return m.transition(StateAuthenticated, athlete)
	case status.RefreshAvailable:
		m.transition(StateRefreshPending, nil)
		return m.silentRefresh(ctx)
	default:
		return m.transition(StateAnonymous, nil)
	}
}

func (m *Manager) silentRefresh(ctx context.Context) Snapshot {
	m.mu.Lock()
	gen := m.gen
	m.mu.Unlock()

	token, err := m.api.RefreshToken(ctx)
	if err != nil {
		return m.transitionIfGen(gen, StateAnonymous, nil)
	}
	m.creds.set(token.AccessToken)

	athlete, err := m.resolveAthlete(ctx, token)
	if err != nil {
		m.creds.set("")
		return m.transitionIfGen(gen, StateAnonymous, nil)
	}

	m.mu.Lock()
	if m.gen != gen {
		// a logout raced the refresh; the late token must not survive
		m.mu.Unlock()
		m.creds.set("")
		return m.Current()
	}
	snap := m.applyLocked(StateAuthenticated, athlete)
	m.mu.Unlock()
	return snap
}

// resolveAthlete backfills the profile when a token response omits it, so an
// authenticated snapshot always carries a profile.
func (m *Manager) resolveAthlete(ctx context.Context, token strava.Token) (*strava.Athlete, error) {
	if token.Athlete != nil {
		return token.Athlete, nil
	}
	profile, err := m.api.Athlete(ctx)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// BeginAuth fetches the provider authorization URL and stores the state
// nonce for later validation. The returned URL is what the browser should
// be redirected to.
func (m *Manager) BeginAuth(ctx context.Context) (string, error) {
	out, err := m.api.AuthURL(ctx)
	if err != nil {
		return "", err
	}
	m.storeNonce(out.State)
	return out.AuthURL, nil
}

// Exchange trades the OAuth callback code for a session. The state nonce is
// compared exactly and consumed whether or not it matches, so a replayed
// callback always fails. A failed exchange leaves the session state
// untouched for a user-facing retry.
func (m *Manager) Exchange(ctx context.Context, code, state string) (Snapshot, error) {
	if !m.consumeNonce(state) {
		return m.Current(), ErrStateMismatch
	}

	token, err := m.api.ExchangeToken(ctx, code)
	if err != nil {
		return m.Current(), err
	}

	m.creds.set(token.AccessToken)
	athlete, err := m.resolveAthlete(ctx, token)
	if err != nil {
		m.creds.set("")
		return m.Current(), err
	}
	return m.transition(StateAuthenticated, athlete), nil
}

// Logout clears every cached response before the state reset: cache keys
// carry no identity discriminator, so a cache that outlives the session
// would leak one athlete's data into the next session on this device.
func (m *Manager) Logout(ctx context.Context) Snapshot {
	m.cache.ClearAll(ctx)
	m.creds.set("")

	m.mu.Lock()
	m.gen++
	m.mu.Unlock()

	return m.transition(StateAnonymous, nil)
}

func (m *Manager) Current() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{State: m.state, Athlete: m.athlete}
}

// Subscribe registers a watcher that receives every subsequent transition.
func (m *Manager) Subscribe() *Watcher {
	w := &Watcher{C: make(chan Snapshot, 8)}
	m.mu.Lock()
	m.watchers[w] = struct{}{}
	m.mu.Unlock()
	return w
}

func (m *Manager) Unsubscribe(w *Watcher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.watchers[w]; ok {
		delete(m.watchers, w)
		close(w.C)
	}
}

func (m *Manager) transition(state State, athlete *strava.Athlete) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applyLocked(state, athlete)
}

// transitionIfGen applies the transition only if no logout happened since
// gen was captured. A refresh resolving after logout must not resurrect the
// session.
func (m *Manager) transitionIfGen(gen uint64, state State, athlete *strava.Athlete) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return Snapshot{State: m.state, Athlete: m.athlete}
	}
	return m.applyLocked(state, athlete)
}

func (m *Manager) applyLocked(state State, athlete *strava.Athlete) Snapshot {
	if state != StateAuthenticated {
		athlete = nil
	}
	m.state = state
	m.athlete = athlete

	snap := Snapshot{State: state, Athlete: athlete}
	for w := range m.watchers {
		select {
		case w.C <- snap:
		default:
		}
	}
	return snap
}
