package auth

import (
	"context"
	stderrors "errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"notemaster/pkg/errors"
	"notemaster/pkg/models"
)

// SessionStore persists the current session between runs
type SessionStore interface {
	Load(ctx context.Context) (*models.Session, error)
	Save(ctx context.Context, session *models.Session) error
	Clear(ctx context.Context) error
}

// Remote performs the account calls against the notes service
type Remote interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, name, email, password string) error
	Me(ctx context.Context) (*models.User, error)
}

// Manager owns the explicit session handed to the networking collaborators
type Manager struct {
	mutex     sync.RWMutex
	current   *models.Session
	store     SessionStore
	remote    Remote
	validator *errors.Validator
	now       func() time.Time
}

// NewManager creates a session manager. store may be nil for an in-memory session.
func NewManager(store SessionStore, remote Remote) *Manager {
	return &Manager{
		store:     store,
		remote:    remote,
		validator: errors.NewValidator(),
		now:       time.Now,
	}
}

// Current returns a copy of the active session, or nil
func (m *Manager) Current() *models.Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.current == nil {
		return nil
	}
	s := *m.current
	return &s
}

// Authenticated reports whether a non-expired session is active
func (m *Manager) Authenticated() bool {
	return m.Current().Valid(m.now())
}

// Set replaces the in-memory session without persisting it. Used when the
// persisted session changes underneath us.
func (m *Manager) Set(session *models.Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.current = session
}

// Restore loads the persisted session, discarding it if already expired
func (m *Manager) Restore(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	session, err := m.store.Load(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrTypeStorage, "SESSION_LOAD_FAILED", "failed to load session")
	}
	if session != nil && !session.Valid(m.now()) {
		log.Printf("Stored session expired at %s, discarding", session.ExpiresAt.Format(time.RFC3339))
		session = nil
		if err := m.store.Clear(ctx); err != nil {
			log.Printf("Warning: failed to clear expired session: %v", err)
		}
	}
	m.Set(session)
	return nil
}

// Login exchanges credentials for a token and persists the resulting session
func (m *Manager) Login(ctx context.Context, email, password string) (*models.Session, error) {
	if result := m.validator.ValidateCredentials(email, password); !result.IsValid {
		return nil, result.GetFirstError()
	}

	token, err := m.remote.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, err
	}

	session := &models.Session{Token: token, ExpiresAt: TokenExpiry(token)}
	m.Set(session)

	if user, err := m.remote.Me(ctx); err != nil {
		log.Printf("Warning: logged in but failed to fetch profile: %v", err)
	} else {
		session.User = user
		m.Set(session)
	}

	if m.store != nil {
		if err := m.store.Save(ctx, session); err != nil {
			return nil, errors.Wrap(err, errors.ErrTypeStorage, "SESSION_SAVE_FAILED", "failed to persist session")
		}
	}

	log.Printf("Logged in as %s", strings.TrimSpace(email))
	return m.Current(), nil
}

// Register creates an account. It does not log in; the caller proceeds to Login.
func (m *Manager) Register(ctx context.Context, name, email, password string) error {
	if result := m.validator.ValidateRegistration(name, email, password); !result.IsValid {
		return result.GetFirstError()
	}
	return m.remote.Register(ctx, strings.TrimSpace(name), strings.TrimSpace(email), password)
}

// Logout drops the session locally and from the store
func (m *Manager) Logout(ctx context.Context) error {
	m.Set(nil)
	if m.store == nil {
		return nil
	}
	if err := m.store.Clear(ctx); err != nil {
		return errors.Wrap(err, errors.ErrTypeStorage, "SESSION_CLEAR_FAILED", "failed to clear session")
	}
	return nil
}

// Me returns the signed-in user. An expired session is dropped.
func (m *Manager) Me(ctx context.Context) (*models.User, error) {
	user, err := m.remote.Me(ctx)
	if err != nil {
		if stderrors.Is(err, errors.ErrSessionExpired) {
			if clearErr := m.Logout(ctx); clearErr != nil {
				log.Printf("Warning: %v", clearErr)
			}
		}
		return nil, err
	}

	m.mutex.Lock()
	if m.current != nil {
		updated := *m.current
		updated.User = user
		m.current = &updated
	}
	m.mutex.Unlock()
	return user, nil
}

// TokenExpiry reads the exp claim of a JWT without verifying it. Tokens that
// are not JWTs, or carry no exp, yield the zero time.
func TokenExpiry(token string) time.Time {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
