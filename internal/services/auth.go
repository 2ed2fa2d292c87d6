package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/chachabrian/tourhub-backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
}

type OTPRepository interface {
	Create(ctx context.Context, otp *models.OTP) error
	// InvalidateAll marks every unused code of the given type as used.
	InvalidateAll(ctx context.Context, userID uuid.UUID, otpType models.OTPType) error
	FindActive(ctx context.Context, userID uuid.UUID, otpType models.OTPType, code string) (*models.OTP, error)
	MarkUsed(ctx context.Context, id uuid.UUID) error
}

type PasswordResetMailer interface {
	Enabled() bool
	SendPasswordResetEmail(to, otp string, validFor time.Duration) error
}

type AuthConfig struct {
	BcryptCost    int
	OTPExpiration time.Duration
}

type AuthService struct {
	users    UserRepository
	otps     OTPRepository
	sessions SessionStore
	tokens   *utils.JWTManager
	mailer   PasswordResetMailer
	cfg      AuthConfig
	now      func() time.Time
}

func NewAuthService(users UserRepository, otps OTPRepository, sessions SessionStore, tokens *utils.JWTManager, mailer PasswordResetMailer, cfg AuthConfig) *AuthService {
	if cfg.OTPExpiration == 0 {
		cfg.OTPExpiration = 15 * time.Minute
	}
	return &AuthService{users: users, otps: otps, sessions: sessions, tokens: tokens, mailer: mailer, cfg: cfg, now: time.Now}
}

// Session is an issued login token.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

type RegisterInput struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"required,notblank"`
	LastName  string `json:"lastName" binding:"required,notblank"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a User account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if len(in.Password) < 8 {
		return nil, invalid("password", "password must be at least 8 characters")
	}
	u := &models.User{
		Email:     normalizeEmail(in.Email),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Role:      models.RoleUser,
	}
	u.Name = strings.TrimSpace(u.FirstName + " " + u.LastName)
	if err := u.HashPassword(in.Password, s.cfg.BcryptCost); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return s.issue(ctx, u)
}

// Login checks credentials. Unknown email and wrong password are indistinguishable.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := u.CheckPassword(password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, u)
}

func (s *AuthService) issue(ctx context.Context, u *models.User) (*Session, error) {
	sid := uuid.NewString()
	token, exp, err := s.tokens.GenerateToken(u.ID, string(u.Role), sid)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	if err := s.sessions.Create(ctx, sid, u.ID, s.tokens.TTL()); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return &Session{Token: token, ExpiresAt: exp, User: u}, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}

// Authenticate resolves a token to a Principal. A token whose session was
// revoked is rejected even before its expiry.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Principal, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrUnauthorized
	}
	ok, err := s.sessions.Exists(ctx, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if !ok {
		return nil, ErrSessionRevoked
	}
	return &Principal{UserID: userID, Role: models.UserRole(claims.Role), SessionID: claims.SessionID}, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUnauthorized
	}
	return u, err
}

// RequestPasswordReset emails a fresh code. Unknown emails succeed silently.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.otps.InvalidateAll(ctx, u.ID, models.OTPTypePasswordReset); err != nil {
		return fmt.Errorf("invalidate codes: %w", err)
	}
	code, err := utils.GenerateOTP()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	otp := &models.OTP{
		UserID:    u.ID,
		Code:      code,
		Type:      models.OTPTypePasswordReset,
		ExpiresAt: s.now().Add(s.cfg.OTPExpiration),
	}
	if err := s.otps.Create(ctx, otp); err != nil {
		return fmt.Errorf("store code: %w", err)
	}

	if s.mailer == nil || !s.mailer.Enabled() {
		log.Warn().Str("user_id", u.ID.String()).Msg("email not configured, password reset code not sent")
		return nil
	}
	if err := s.mailer.SendPasswordResetEmail(u.Email, code, s.cfg.OTPExpiration); err != nil {
		log.Error().Err(err).Str("user_id", u.ID.String()).Msg("failed to send password reset email")
	}
	return nil
}

type ResetPasswordInput struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required,len=6"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

func (s *AuthService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	if len(in.NewPassword) < 8 {
		return invalid("newPassword", "password must be at least 8 characters")
	}
	u, err := s.users.FindByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, ErrNotFound) {
		return ErrInvalidOTP
	}
	if err != nil {
		return err
	}

	otp, err := s.otps.FindActive(ctx, u.ID, models.OTPTypePasswordReset, in.OTP)
	if errors.Is(err, ErrNotFound) {
		return ErrInvalidOTP
	}
	if err != nil {
		return err
	}
	if !otp.IsValid(s.now()) {
		return ErrInvalidOTP
	}

	if err := u.HashPassword(in.NewPassword, s.cfg.BcryptCost); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return s.otps.MarkUsed(ctx, otp.ID)
}
