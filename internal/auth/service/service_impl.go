package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockroom/internal/auth/domain"
	"github.com/smallbiznis/stockroom/internal/auth/password"
	"github.com/smallbiznis/stockroom/internal/clock"
	obslogger "github.com/smallbiznis/stockroom/internal/observability/logger"
	"github.com/smallbiznis/stockroom/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	sessionTokenBytes = 32
	sessionTTL        = 7 * 24 * time.Hour
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	SessionRepo domain.SessionRepository
	Codes       domain.CodeVerifier
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	sessionRepo domain.SessionRepository
	codes       domain.CodeVerifier
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("auth.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		sessionRepo: p.SessionRepo,
		codes:       p.Codes,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.LoginResult, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" || req.ConfirmPassword == "" {
		return nil, domain.ErrMissingFields
	}
	if req.Password != req.ConfirmPassword {
		return nil, domain.ErrPasswordMismatch
	}

	user, err := s.createUser(ctx, username, req.Email, req.Password, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, user, req.UserAgent, req.IPAddress)
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	identifier := strings.TrimSpace(req.Username)
	if identifier == "" || req.Password == "" {
		return nil, domain.ErrMissingFields
	}

	user, err := s.repo.FindByIdentifier(ctx, s.db, identifier)
	if err != nil {
		return nil, err
	}
	if user == nil || !password.Verify(req.Password, user.PasswordHash) {
		obslogger.WithContext(ctx, s.log).Info("login rejected")
		return nil, domain.ErrInvalidCredentials
	}

	return s.startSession(ctx, user, req.UserAgent, req.IPAddress)
}

func (s *Service) startSession(ctx context.Context, user *domain.User, userAgent, ip string) (*domain.LoginResult, error) {
	rawToken, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	session := &domain.Session{
		ID:               s.genID.Generate().Int64(),
		UserID:           user.ID,
		SessionTokenHash: hashToken(rawToken),
		UserAgent:        strings.TrimSpace(userAgent),
		IPAddress:        strings.TrimSpace(ip),
		ExpiresAt:        now.Add(sessionTTL),
		CreatedAt:        now,
		LastSeenAt:       now,
	}
	if err := s.sessionRepo.CreateSession(ctx, s.db, session); err != nil {
		return nil, err
	}

	return &domain.LoginResult{
		User:      toUserResponse(user),
		RawToken:  rawToken,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *Service) Logout(ctx context.Context, rawToken string) error {
	token := strings.TrimSpace(rawToken)
	if token == "" {
		return domain.ErrInvalidSession
	}

	session, err := s.sessionRepo.GetSessionByTokenHash(ctx, s.db, hashToken(token))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.ErrInvalidSession
		}
		return err
	}
	return s.sessionRepo.RevokeSession(ctx, s.db, session.ID, s.clock.Now().UTC())
}

func (s *Service) Authenticate(ctx context.Context, rawToken string) (*domain.Principal, error) {
	token := strings.TrimSpace(rawToken)
	if token == "" {
		return nil, domain.ErrInvalidSession
	}

	session, err := s.sessionRepo.GetSessionByTokenHash(ctx, s.db, hashToken(token))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrInvalidSession
		}
		return nil, err
	}

	now := s.clock.Now().UTC()
	if session.RevokedAt != nil {
		return nil, domain.ErrSessionRevoked
	}
	if now.After(session.ExpiresAt) {
		return nil, domain.ErrSessionExpired
	}

	user, err := s.repo.FindByID(ctx, s.db, session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidSession
	}

	if err := s.sessionRepo.UpdateLastSeen(ctx, s.db, session.ID, now); err != nil {
		return nil, err
	}

	return &domain.Principal{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		SessionID: session.ID,
	}, nil
}

func (s *Service) Me(ctx context.Context, userID int64) (*domain.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *Service) ChangeOwnPassword(ctx context.Context, req domain.ChangeOwnPasswordRequest) error {
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return domain.ErrMissingFields
	}
	if len(req.NewPassword) < password.MinLength {
		return domain.ErrPasswordTooShort
	}

	user, err := s.repo.FindByID(ctx, s.db, req.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if !password.Verify(req.CurrentPassword, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}
	return s.setPassword(ctx, user.ID, req.NewPassword)
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.UserResponse, error) {
	users, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	resp := make([]domain.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}
	return resp, nil
}

// CreateUser is the admin path; it requires a code issued for req.Email.
func (s *Service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.UserResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" || strings.TrimSpace(req.VerificationCode) == "" {
		return nil, domain.ErrMissingFields
	}
	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.IsValidRole(role) {
		return nil, domain.ErrInvalidRole
	}
	if !s.codes.Verify(ctx, strings.TrimSpace(req.Email), req.VerificationCode) {
		return nil, domain.ErrInvalidVerificationCode
	}

	user, err := s.createUser(ctx, username, req.Email, req.Password, role)
	if err != nil {
		return nil, err
	}
	obslogger.WithContext(ctx, s.log).Info("user created by admin",
		zap.Int64("user_id", user.ID),
		zap.String("role", user.Role),
	)
	resp := toUserResponse(user)
	return &resp, nil
}

// ChangePassword is the admin path; the code must be issued for the target user's email.
func (s *Service) ChangePassword(ctx context.Context, req domain.ChangePasswordRequest) error {
	if strings.TrimSpace(req.UserID) == "" || req.NewPassword == "" || strings.TrimSpace(req.VerificationCode) == "" {
		return domain.ErrMissingFields
	}
	if len(req.NewPassword) < password.MinLength {
		return domain.ErrPasswordTooShort
	}
	id, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
	if err != nil {
		return domain.ErrUserNotFound
	}

	user, err := s.repo.FindByID(ctx, s.db, id.Int64())
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if !s.codes.Verify(ctx, user.Email, req.VerificationCode) {
		return domain.ErrInvalidVerificationCode
	}
	return s.setPassword(ctx, user.ID, req.NewPassword)
}

func (s *Service) EnsureAdmin(ctx context.Context, username, email, pw string) (bool, error) {
	count, err := s.repo.CountByRole(ctx, s.db, domain.RoleAdmin)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if _, err := s.createUser(ctx, strings.TrimSpace(username), email, pw, domain.RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) createUser(ctx context.Context, username, rawEmail, pw, role string) (*domain.User, error) {
	email, err := normalizeEmail(rawEmail)
	if err != nil {
		return nil, domain.ErrInvalidEmail
	}
	if len(pw) < password.MinLength {
		return nil, domain.ErrPasswordTooShort
	}

	exists, err := s.repo.ExistsUsernameOrEmail(ctx, s.db, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserExists
	}

	hashed, err := password.Hash(pw)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	user := &domain.User{
		ID:                  s.genID.Generate().Int64(),
		Username:            username,
		Email:               email,
		PasswordHash:        hashed,
		Role:                role,
		LastPasswordChanged: &now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.repo.Create(ctx, s.db, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) setPassword(ctx context.Context, userID int64, pw string) error {
	hashed, err := password.Hash(pw)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, s.db, userID, hashed, s.clock.Now().UTC())
}

func toUserResponse(u *domain.User) domain.UserResponse {
	return domain.UserResponse{
		ID:        snowflake.ID(u.ID).String(),
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func normalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", domain.ErrInvalidEmail
	}
	return strings.ToLower(addr.Address), nil
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
