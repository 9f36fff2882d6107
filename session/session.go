// Package session holds the signed-in identity: credential lookup, the
// on-disk identity cache and the restore/login/logout lifecycle.
package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"promoshow/firebase"
	"promoshow/models"
	"promoshow/utils"
)

// Credential lookup only needs equality queries.
type CredentialStore interface {
	FindBy(ctx context.Context, collection, field string, value any) ([]models.Document, error)
}

// IdentityCache persists the identity between runs.
type IdentityCache interface {
	Load() (*models.User, error)
	Save(u models.User) error
	Clear() error
}

var _ CredentialStore = (firebase.DocumentStore)(nil)

// Authenticate looks the username up and checks the password. It returns
// nil, nil for unknown users and wrong passwords.
func Authenticate(ctx context.Context, store CredentialStore, collection, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, nil
	}

	docs, err := store.FindBy(ctx, collection, models.FieldUsername, username)
	if err != nil {
		return nil, err
	}

	for _, doc := range docs {
		if passwordMatches(doc.String(models.FieldPassword), password) {
			u := models.UserFromDocument(doc)
			return &u, nil
		}
	}
	return nil, nil
}

// passwordMatches accepts bcrypt hashes and, for older records, plain text.
func passwordMatches(stored, given string) bool {
	if stored == "" {
		return false
	}
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

func isBcryptHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

// Session is the current identity of one client.
type Session struct {
	Docs       CredentialStore
	Cache      IdentityCache
	Collection string
	Logger     *zap.Logger

	mu   sync.RWMutex
	user *models.User
}

func New(docs CredentialStore, cache IdentityCache, collection string, logger *zap.Logger) *Session {
	return &Session{
		Docs:       docs,
		Cache:      cache,
		Collection: collection,
		Logger:     utils.OrNop(logger),
	}
}

// Restore loads the cached identity. A missing or unreadable cache leaves
// the session signed out.
func (s *Session) Restore(ctx context.Context) *models.User {
	if s.Cache == nil {
		return nil
	}
	u, err := s.Cache.Load()
	if err != nil {
		s.Logger.Warn("could not restore session", zap.Error(err))
		return nil
	}

	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
	return s.Current()
}

// Login reports whether the credentials matched. Store failures are
// returned as errors; wrong credentials are not.
func (s *Session) Login(ctx context.Context, username, password string) (bool, error) {
	u, err := Authenticate(ctx, s.Docs, s.Collection, username, password)
	if err != nil {
		s.Logger.Error("login lookup failed", zap.String("username", username), zap.Error(err))
		return false, err
	}
	if u == nil {
		s.Logger.Info("login rejected", zap.String("username", username))
		return false, nil
	}

	if s.Cache != nil {
		if err := s.Cache.Save(*u); err != nil {
			s.Logger.Warn("could not cache session", zap.Error(err))
		}
	}

	s.mu.Lock()
	s.user = u
	s.mu.Unlock()

	s.Logger.Info("login", zap.String("username", u.Username), zap.String("role", u.Role))
	return true, nil
}

// Logout clears the cache, then the identity.
func (s *Session) Logout(ctx context.Context) error {
	var err error
	if s.Cache != nil {
		err = s.Cache.Clear()
	}

	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	return err
}

// Current returns a copy of the identity, nil when signed out.
func (s *Session) Current() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) IsAuthenticated() bool {
	return s.Current() != nil
}

func (s *Session) IsAdmin() bool {
	return s.Current().IsAdmin()
}

var errNoIdentity = errors.New("no cached identity")
