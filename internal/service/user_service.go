package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"curiousminds/internal/models"
	"curiousminds/internal/remote"
	"curiousminds/internal/repository"
)

// UserService owns profile persistence and the identity merge performed on
// every session refresh. Profile writes are local first with best-effort
// remote propagation; the one exception is the destructive delete, whose
// remote failure is surfaced because local and remote would then disagree
// about an irreversible operation.
type UserService struct {
	users    *repository.UserRepository
	sessions *repository.SessionRepository
	remote   remote.Store
	email    *EmailService

	sessionSecret   []byte
	sessionDuration time.Duration
}

// NewUserService creates a user service. email may be nil when credential
// notifications are not configured.
func NewUserService(
	users *repository.UserRepository,
	sessions *repository.SessionRepository,
	remoteStore remote.Store,
	email *EmailService,
	sessionSecret string,
	sessionDuration time.Duration,
) *UserService {
	return &UserService{
		users:           users,
		sessions:        sessions,
		remote:          remoteStore,
		email:           email,
		sessionSecret:   []byte(sessionSecret),
		sessionDuration: sessionDuration,
	}
}

// GetUsers returns every locally cached profile
func (s *UserService) GetUsers() ([]models.User, error) {
	return s.users.GetAll()
}

// GetUser returns a locally cached profile by id, nil if not cached
func (s *UserService) GetUser(id string) (*models.User, error) {
	return s.users.GetByID(id)
}

// SaveUser persists a profile locally (rejecting username collisions), then
// forwards it to the remote store best effort.
func (s *UserService) SaveUser(ctx context.Context, user *models.User) error {
	user.Username = models.NormalizeUsername(user.Username)
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	if err := s.users.Save(user); err != nil {
		return err
	}

	if err := s.remote.UpsertUser(ctx, user); err != nil {
		log.Printf("Cloud user sync failed: %v", err)
	}
	return nil
}

// ProvisionUser creates an admin-provisioned account with a fallback
// password. The password is stored hashed; if the account has an email and
// notifications are configured, the credentials are mailed out (best effort).
func (s *UserService) ProvisionUser(ctx context.Context, user *models.User, password string) error {
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.SaveUser(ctx, user); err != nil {
		return err
	}

	if s.email != nil && user.Email != "" {
		if err := s.email.SendCredentials(ctx, user, password); err != nil {
			log.Printf("Credentials email failed for %s: %v", user.Username, err)
		}
	}
	return nil
}

// VerifyPassword checks a fallback-login password against the stored hash
func (s *UserService) VerifyPassword(user *models.User, password string) bool {
	if user.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// DeleteUser removes a profile locally and remotely. The remote failure is
// returned, not swallowed: the caller must know the remote copy may still
// exist after a destructive action.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(id); err != nil {
		return err
	}

	if err := s.remote.DeleteUser(ctx, id); err != nil && !errors.Is(err, remote.ErrDisabled) {
		return fmt.Errorf("user removed locally but remote delete failed: %w", err)
	}
	return nil
}

// Login stores the active-session snapshot with a signed session token
func (s *UserService) Login(user *models.User) error {
	token, err := s.issueToken(user)
	if err != nil {
		return fmt.Errorf("failed to issue session token: %w", err)
	}

	profile, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	return s.sessions.Save(token, profile)
}

// Logout clears the active session
func (s *UserService) Logout() error {
	return s.sessions.Clear()
}

// RefreshSession reloads the logged-in profile and reconciles it against the
// remote store. The remote copy wins field-wise when found, except for the
// entitlement list which keeps the first non-empty of (remote, local) so a
// transient blank read never revokes access. The merge result is persisted
// locally only; the remote is authoritative for everything it returned.
// Returns nil with no error when nobody is logged in.
func (s *UserService) RefreshSession(ctx context.Context) (*models.User, error) {
	token, profile, err := s.sessions.Get()
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, nil
	}

	local, err := models.DecodeUser(profile)
	if err != nil {
		// Corrupt snapshot: clearing forces a fresh login rather than
		// operating on state we cannot trust.
		log.Printf("Corrupt session snapshot, clearing session: %v", err)
		return nil, s.sessions.Clear()
	}

	if token != "" {
		if err := s.validateToken(token); err != nil {
			log.Printf("Session token rejected, clearing session: %v", err)
			return nil, s.sessions.Clear()
		}
	}

	remoteUser, err := s.remote.FindUser(ctx, local.ID, local.Username)
	if err != nil {
		if !errors.Is(err, remote.ErrDisabled) {
			log.Printf("Identity lookup failed, keeping local profile: %v", err)
		}
		return local, nil
	}
	if remoteUser == nil {
		return local, nil
	}

	merged := MergeProfiles(local, remoteUser)

	snapshot, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to encode merged profile: %w", err)
	}
	if err := s.sessions.Save(token, snapshot); err != nil {
		return nil, err
	}
	if err := s.users.Save(merged); err != nil {
		log.Printf("Failed to cache merged profile: %v", err)
	}

	return merged, nil
}

// MergeProfiles reconciles a cached profile with its remote counterpart.
// Remote fields win except allowedModules, which keeps the first non-empty
// of (remote, local); entitlements never silently revert to empty.
func MergeProfiles(local, remoteUser *models.User) *models.User {
	merged := *remoteUser

	switch {
	case len(remoteUser.AllowedModules) > 0:
		merged.AllowedModules = remoteUser.AllowedModules
	case len(local.AllowedModules) > 0:
		merged.AllowedModules = local.AllowedModules
	default:
		merged.AllowedModules = []string{}
	}

	return &merged
}

func (s *UserService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionDuration)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.sessionSecret)
}

func (s *UserService) validateToken(token string) error {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.sessionSecret, nil
	})
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return fmt.Errorf("invalid session token")
	}
	return nil
}
