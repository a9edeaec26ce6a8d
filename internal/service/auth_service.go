package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fluttercity/auth-backend/internal/domain"
	"github.com/fluttercity/auth-backend/internal/repository/ports"
	"github.com/fluttercity/auth-backend/internal/util"
)

var (
	ErrNameRequired       = errors.New("name is required")
	ErrInvalidEmail       = errors.New("only gmail addresses are allowed")
	ErrPasswordTooShort   = errors.New("password must be at least 5 characters long")
	ErrEmailAlreadyUsed   = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrResetTokenInvalid  = errors.New("invalid or unknown reset token")
	ErrResetTokenExpired  = errors.New("reset token expired")
	ErrInvalidToken       = errors.New("invalid token")
	ErrMailDelivery       = errors.New("unable to send reset email")
)

// Registration enforces the strict pattern; the reset request keeps the
// original's looser substring check.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@gmail\.com$`)

const minPasswordLength = 5

// PasswordResetSender delivers a reset link to a recipient.
type PasswordResetSender interface {
	SendPasswordReset(ctx context.Context, email, link string) error
}

// AuthResult is returned by every operation that authenticates a user.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	users  ports.UserRepository
	resets ports.PasswordResetRepository
	mailer PasswordResetSender
	jwt    *util.JWTManager

	resetPageURL string
	resetTTL     time.Duration
	dbTimeout    time.Duration
}

func NewAuthService(
	users ports.UserRepository,
	resets ports.PasswordResetRepository,
	mailer PasswordResetSender,
	jwtManager *util.JWTManager,
	resetPageURL string,
	resetTTL time.Duration,
	dbTimeout time.Duration,
) *AuthService {
	return &AuthService{
		users:        users,
		resets:       resets,
		mailer:       mailer,
		jwt:          jwtManager,
		resetPageURL: resetPageURL,
		resetTTL:     resetTTL,
		dbTimeout:    dbTimeout,
	}
}

// RegisterWithEmail creates an account. The store's unique constraint on
// email is the final arbiter; the pre-check only exists for a friendly error
// without burning a hash derivation.
func (s *AuthService) RegisterWithEmail(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	email = normalizeEmail(email)
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	existing, err := s.findByEmail(ctx, email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check existing account: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailAlreadyUsed
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	opCtx, cancel := s.opContext(ctx)
	defer cancel()
	user, err := s.users.Create(opCtx, name, email, hash)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailAlreadyUsed
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return user, nil
}

// LoginWithEmail authenticates a stored credential. An unknown email and a
// wrong password are indistinguishable to the caller.
func (s *AuthService) LoginWithEmail(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.findByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if !util.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.issueToken(user)
}

// RequestPasswordReset starts the reset handshake: a random single-use token
// is stored hashed with a validity window, and the plaintext token travels to
// the account owner inside the reset link. A delivery failure consumes the
// token so a link that never arrived cannot linger.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@gmail.com") {
		return ErrInvalidEmail
	}

	user, err := s.findByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	opCtx, cancel := s.opContext(ctx)
	if err := s.resets.ConsumeByUser(opCtx, user.ID); err != nil {
		cancel()
		return fmt.Errorf("invalidate previous reset tokens: %w", err)
	}
	cancel()

	token, err := util.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	tokenHash, err := util.HashPassword(token)
	if err != nil {
		return fmt.Errorf("hash reset token: %w", err)
	}

	opCtx, cancel = s.opContext(ctx)
	reset, err := s.resets.Create(opCtx, user.ID, tokenHash, time.Now().Add(s.resetTTL))
	cancel()
	if err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	link := fmt.Sprintf("%s?email=%s&token=%s", s.resetPageURL, url.QueryEscape(user.Email), token)
	if err := s.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		opCtx, cancel = s.opContext(context.WithoutCancel(ctx))
		_ = s.resets.MarkConsumed(opCtx, reset.ID)
		cancel()
		return fmt.Errorf("%w: %s", ErrMailDelivery, err)
	}
	return nil
}

// ConfirmPasswordReset completes the handshake: the presented token must
// match the latest active reset for the account, is consumed exactly once,
// and the new credential replaces the old one before a fresh JWT is issued.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, email, token, newPassword string) (*AuthResult, error) {
	if len(newPassword) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	email = normalizeEmail(email)
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	now := time.Now()
	opCtx, cancel := s.opContext(ctx)
	reset, err := s.resets.FindActiveByUser(opCtx, user.ID, now)
	cancel()
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResetTokenInvalid
		}
		return nil, fmt.Errorf("lookup reset token: %w", err)
	}
	if reset.Expired(now) {
		opCtx, cancel = s.opContext(ctx)
		_ = s.resets.MarkConsumed(opCtx, reset.ID)
		cancel()
		return nil, ErrResetTokenExpired
	}
	if !util.CheckPassword(token, reset.TokenHash) {
		return nil, ErrResetTokenInvalid
	}

	opCtx, cancel = s.opContext(ctx)
	err = s.resets.MarkConsumed(opCtx, reset.ID)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("consume reset token: %w", err)
	}

	hash, err := util.HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	opCtx, cancel = s.opContext(ctx)
	rows, err := s.users.UpdatePassword(opCtx, email, hash)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}
	if rows == 0 {
		return nil, ErrUserNotFound
	}

	fresh, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("reload account: %w", err)
	}
	return s.issueToken(fresh)
}

// Authenticate resolves a bearer token to its account. Every consumer of an
// issued token goes through here before trusting any claim.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	opCtx, cancel := s.opContext(ctx)
	defer cancel()
	user, err := s.users.FindByID(opCtx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	return user, nil
}

func (s *AuthService) issueToken(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.jwt.Generate(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) findByEmail(ctx context.Context, email string) (*domain.User, error) {
	opCtx, cancel := s.opContext(ctx)
	defer cancel()
	return s.users.FindByEmail(opCtx, email)
}

func (s *AuthService) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.dbTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.dbTimeout)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
