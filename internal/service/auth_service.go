package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/clubhouse/internal/auth"
	"github.com/spec-kit/clubhouse/internal/config"
	"github.com/spec-kit/clubhouse/internal/domain"
	"github.com/spec-kit/clubhouse/internal/events"
	"github.com/spec-kit/clubhouse/internal/repository"
	"github.com/spec-kit/clubhouse/pkg/util"
)

// Login failure reasons. They intentionally distinguish unknown usernames
// from wrong passwords, matching the established behavior of the login form.
var (
	ErrIncorrectUsername = errors.New("incorrect username")
	ErrIncorrectPassword = errors.New("incorrect password")
)

// RegisterInput carries the sign-up form fields.
type RegisterInput struct {
	FirstName       string
	LastName        string
	Username        string
	Password        string
	ConfirmPassword string
	Admin           bool
}

// AuthService coordinates registration, login and the member upgrade gate.
type AuthService struct {
	users      repository.UserRepository
	sessions   auth.SessionManager
	codec      *auth.CookieCodec
	dispatcher events.Dispatcher
	bcryptCost int
	memberCode string
}

// AuthDependencies encapsulates collaborator requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Sessions   auth.SessionManager
	Codec      *auth.CookieCodec
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		sessions:   deps.Sessions,
		codec:      deps.Codec,
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.BcryptCost,
		memberCode: cfg.MemberCode,
	}
}

// Register validates the sign-up form and creates a nonmember account.
// Validation failures return util.ValidationErrors and persist nothing.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Username = strings.TrimSpace(in.Username)
	in.Password = strings.TrimSpace(in.Password)

	var verr util.ValidationErrors
	if utf8.RuneCountInString(in.FirstName) < 2 {
		verr = append(verr, "First name must be at least two characters")
	}
	if utf8.RuneCountInString(in.LastName) < 2 {
		verr = append(verr, "Last name must be at least two characters")
	}
	if utf8.RuneCountInString(in.Username) < 4 {
		verr = append(verr, "Username must be at least 4 characters")
	}
	if utf8.RuneCountInString(in.Password) < 6 {
		verr = append(verr, "Password must be at least 6 characters")
	}
	if in.ConfirmPassword != in.Password {
		verr = append(verr, "Passwords do not match")
	}
	if len(verr) > 0 {
		return nil, verr
	}

	if _, err := s.users.GetByUsername(ctx, in.Username); err == nil {
		return nil, util.ValidationErrors{"Username is already taken"}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Username:     in.Username,
		PasswordHash: hash,
		MemberStatus: domain.MemberStatusNonMember,
		Admin:        in.Admin,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventUserRegistered, user.ID, nil)
	return user, nil
}

// Login authenticates credentials, establishes a session and returns the
// signed cookie value to hand to the browser.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", ErrIncorrectUsername
		}
		return nil, "", err
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, "", ErrIncorrectPassword
	}

	sessionID, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	cookie, err := s.codec.Encode(sessionID)
	if err != nil {
		return nil, "", err
	}

	s.publish(ctx, events.EventUserLoggedIn, user.ID, nil)
	return user, cookie, nil
}

// Logout destroys the server-side session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Destroy(ctx, sessionID)
}

// UpgradeMember promotes the calling user to member when the shared code
// matches. The target is always the session principal, never a request field.
func (s *AuthService) UpgradeMember(ctx context.Context, user *domain.User, code string) error {
	if code != s.memberCode {
		return util.ValidationErrors{"That is not the code"}
	}

	if err := s.users.SetMemberStatus(ctx, user.ID, domain.MemberStatusMember); err != nil {
		return err
	}

	user.MemberStatus = domain.MemberStatusMember
	s.publish(ctx, events.EventMemberUpgraded, user.ID, nil)
	return nil
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, userID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
