package services

import (
	"context"
	stderrors "errors"
	"log"

	"notemaster/pkg/auth"
	"notemaster/pkg/errors"
	"notemaster/pkg/models"
)

// SessionWatcher reports session changes made by other processes
type SessionWatcher interface {
	Watch(ctx context.Context, fn func(*models.Session)) error
}

// AuthService handles account flows and keeps the session in sync
type AuthService struct {
	manager  *auth.Manager
	notifier *Notifier
}

// NewAuthService creates a new authentication service
func NewAuthService(manager *auth.Manager, notifier *Notifier) *AuthService {
	return &AuthService{
		manager:  manager,
		notifier: notifier,
	}
}

// Manager returns the session manager, the session provider of the clients
func (s *AuthService) Manager() *auth.Manager {
	return s.manager
}

// Login signs in and persists the session
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	session, err := s.manager.Login(ctx, email, password)
	if err != nil {
		logError(err)
		return nil, err
	}
	return session, nil
}

// Register creates an account
func (s *AuthService) Register(ctx context.Context, name, email, password string) error {
	if err := s.manager.Register(ctx, name, email, password); err != nil {
		logError(err)
		return err
	}
	log.Printf("Registered account for %s", email)
	return nil
}

// Logout ends the session
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.manager.Logout(ctx); err != nil {
		logError(err)
		return err
	}
	log.Println("Logged out")
	return nil
}

// Me returns the signed-in user
func (s *AuthService) Me(ctx context.Context) (*models.User, error) {
	user, err := s.manager.Me(ctx)
	if err != nil {
		logError(err)
		return nil, err
	}
	return user, nil
}

// Watch follows session changes made elsewhere, such as a login from
// another instance sharing the token file
func (s *AuthService) Watch(ctx context.Context, watcher SessionWatcher) error {
	return watcher.Watch(ctx, func(session *models.Session) {
		had := s.manager.Current() != nil
		s.manager.Set(session)
		switch {
		case session == nil && had:
			s.notifier.Add("info", "", "You were signed out from another window")
		case session != nil && !had:
			s.notifier.Add("info", "", "Signed in from another window")
		}
	})
}

// logError logs AppErrors in their structured form
func logError(err error) {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		appErr.Log()
		return
	}
	log.Printf("ERROR %v", err)
}
