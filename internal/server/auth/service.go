package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/authkeeper/internal/autherr"
	"github.com/iudanet/authkeeper/internal/models"
	"github.com/iudanet/authkeeper/internal/server/mail"
	"github.com/iudanet/authkeeper/internal/server/storage"
	"github.com/iudanet/authkeeper/internal/server/token"
)

// Profile holds the personal data supplied at registration
type Profile struct {
	FirstName string
	LastName  string
}

// Service sequences registration, verification, login, resend and refresh
// and owns every account state transition.
type Service struct {
	logger    *slog.Logger
	accounts  storage.AccountStorage
	roles     storage.RoleStorage
	hasher    SecretHasher
	mailer    MailSender
	limiter   AttemptLimiter
	codes     *CodeManager
	sessions  *SessionIssuer
	refresher *RefreshHandler
}

// Option configures a Service
type Option func(*Service)

// WithLimiter enables attempt limiting for verify and resend
func WithLimiter(limiter AttemptLimiter) Option {
	return func(s *Service) {
		s.limiter = limiter
	}
}

// WithClock overrides the clock used for verification code expiry
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.codes.now = now
	}
}

// NewService создает сервис аутентификации
func NewService(
	logger *slog.Logger,
	accounts storage.AccountStorage,
	roles storage.RoleStorage,
	hasher SecretHasher,
	mailer MailSender,
	codec *token.Codec,
	opts ...Option,
) *Service {
	s := &Service{
		logger:    logger,
		accounts:  accounts,
		roles:     roles,
		hasher:    hasher,
		mailer:    mailer,
		codes:     NewCodeManager(accounts),
		sessions:  NewSessionIssuer(accounts, hasher, codec),
		refresher: NewRefreshHandler(accounts, codec),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Register creates a disabled account with one role and sends it a verification code
func (s *Service) Register(ctx context.Context, identity, secret string, profile Profile, roleTag string) (*models.Account, error) {
	exists, err := s.accounts.ExistsByIdentity(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to check account: %w", err)
	}
	if exists {
		return nil, autherr.New(autherr.ErrAccountAlreadyExists, identity)
	}

	role, err := s.roles.FindByTag(ctx, roleTag)
	if err != nil {
		if errors.Is(err, storage.ErrRoleNotFound) {
			return nil, autherr.New(autherr.ErrNoSuchRole, roleTag)
		}
		return nil, fmt.Errorf("failed to find role: %w", err)
	}

	secretHash, err := s.hasher.Hash(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to hash secret: %w", err)
	}

	account := &models.Account{
		ID:         uuid.New().String(),
		Identity:   identity,
		SecretHash: secretHash,
		FirstName:  profile.FirstName,
		LastName:   profile.LastName,
		Roles:      []models.Role{*role},
		Enabled:    false,
	}

	vc, err := s.codes.Issue(account)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.Save(ctx, account); err != nil {
		// гонка двух регистраций с одним identity
		if errors.Is(err, storage.ErrAccountAlreadyExists) {
			return nil, autherr.New(autherr.ErrAccountAlreadyExists, identity)
		}
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.logger.InfoContext(ctx, "account registered",
		slog.String("identity", identity),
		slog.String("account_id", account.ID),
		slog.String("role", role.Tag))

	s.deliverCode(ctx, identity, vc.Code, IssueWindow)

	return account, nil
}

// Authenticate checks credentials and returns a token pair
func (s *Service) Authenticate(ctx context.Context, identity, secret string) (*TokenPair, error) {
	pair, err := s.sessions.Login(ctx, identity, secret)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "account authenticated", slog.String("identity", identity))
	return pair, nil
}

// Verify enables the account when code matches its current verification code
func (s *Service) Verify(ctx context.Context, identity, code string) error {
	if err := s.allow(ctx, ActionVerify, identity); err != nil {
		return err
	}

	account, err := s.findAccount(ctx, identity)
	if err != nil {
		return err
	}

	// повторная верификация должна давать понятную ошибку, а не CodeExpired
	if account.Enabled {
		return autherr.New(autherr.ErrAccountAlreadyVerified, identity)
	}

	if err := s.codes.Verify(ctx, account, code); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "account verified", slog.String("identity", identity))
	return nil
}

// ResendCode replaces the verification code of an unverified account and mails it again
func (s *Service) ResendCode(ctx context.Context, identity string) error {
	if err := s.allow(ctx, ActionResend, identity); err != nil {
		return err
	}

	account, err := s.findAccount(ctx, identity)
	if err != nil {
		return err
	}

	if account.Enabled {
		return autherr.New(autherr.ErrAccountAlreadyVerified, identity)
	}

	vc, err := s.codes.Reissue(account)
	if err != nil {
		return err
	}

	if err := s.accounts.Save(ctx, account); err != nil {
		return fmt.Errorf("failed to save verification code: %w", err)
	}

	s.logger.InfoContext(ctx, "verification code reissued", slog.String("identity", identity))

	s.deliverCode(ctx, identity, vc.Code, ReissueWindow)
	return nil
}

// RefreshToken exchanges the refresh token in an Authorization header value for a new access token
func (s *Service) RefreshToken(ctx context.Context, header string) (*TokenPair, error) {
	return s.refresher.Refresh(ctx, header)
}

func (s *Service) findAccount(ctx context.Context, identity string) (*models.Account, error) {
	account, err := s.accounts.FindByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			return nil, autherr.New(autherr.ErrNoSuchAccount, identity)
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return account, nil
}

// allow consults the limiter. Limiter outages are logged and do not block the request.
func (s *Service) allow(ctx context.Context, action, identity string) error {
	if s.limiter == nil {
		return nil
	}

	err := s.limiter.Allow(ctx, action, identity)
	if err == nil {
		return nil
	}
	if errors.Is(err, autherr.ErrTooManyAttempts) {
		s.logger.WarnContext(ctx, "attempt limit exceeded",
			slog.String("action", action),
			slog.String("identity", identity))
		return err
	}

	s.logger.ErrorContext(ctx, "attempt limiter unavailable", slog.String("action", action), slog.Any("error", err))
	return nil
}

func (s *Service) deliverCode(ctx context.Context, identity, code string, window time.Duration) {
	subject, body := mail.VerificationMessage(code, window)
	if err := s.mailer.Send(ctx, identity, subject, body); err != nil {
		s.logger.WarnContext(ctx, "failed to deliver verification code",
			slog.String("identity", identity),
			slog.Any("error", err))
	}
}
