package storeauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/schmidtgroupe/reservation-portal/app/observability/metrics"
	"github.com/schmidtgroupe/reservation-portal/config"
	"github.com/schmidtgroupe/reservation-portal/internal/types"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service runs the store token sign-in orchestration: validate, recompute the
// day token, look up the profile, sign in, provision on first contact, then
// refresh profile metadata.
type Service interface {
	SignInStore(ctx context.Context, req StoreLoginRequest) (*StoreLoginResponse, error)
}

// TokenIssuer mints the session tokens handed back after a confirmed sign-in.
// Implemented by the session package; injected to keep this package free of a
// JWT dependency.
type TokenIssuer interface {
	IssueTokens(ctx context.Context, profile *types.Profile) (accessToken, refreshToken string, err error)
}

type ServiceImpl struct {
	logger  *slog.Logger
	repo    Repository
	issuer  TokenIssuer
	cfg     config.StoreAuthConfig
	nowFunc func() time.Time
}

func NewService(repo Repository, issuer TokenIssuer, cfg config.StoreAuthConfig, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		repo:    repo,
		issuer:  issuer,
		cfg:     cfg,
		nowFunc: time.Now,
	}
}

// SignInStore establishes an authenticated session for a store, provisioning
// the account on first contact. Sequencing matters: no repository call is
// made before the cheap length checks and the token recomputation pass.
func (s *ServiceImpl) SignInStore(ctx context.Context, req StoreLoginRequest) (*StoreLoginResponse, error) {
	ctx, span := otel.Tracer("StoreAuthService").Start(ctx, "SignInStore", trace.WithAttributes(
		attribute.String("store.id", req.StoreID),
	))
	defer span.End()

	m := metrics.Get()
	start := s.nowFunc()
	l := s.logger.With(slog.String("method", "SignInStore"), slog.String("storeID", req.StoreID))
	m.StoreAuthAttemptsTotal.Add(ctx, 1)

	// Cheap sanity filter before any backend call.
	if len(req.StoreID) < s.cfg.MinStoreIDLen || len(req.Token) < s.cfg.MinTokenLen {
		l.WarnContext(ctx, "Store login rejected by validation",
			slog.Int("store_id_len", len(req.StoreID)),
			slog.Int("token_len", len(req.Token)),
		)
		m.StoreAuthRejectionsTotal.Add(ctx, 1)
		span.SetStatus(codes.Error, "validation failed")
		return nil, types.ErrValidation
	}

	now := s.nowFunc()
	ok, err := Verify(req.StoreID, s.cfg.SecretPhrase, req.Token, now)
	if err != nil {
		// Missing secret is a deployment defect, not a client error.
		l.ErrorContext(ctx, "Token verification misconfigured", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "token derivation misconfigured")
		return nil, fmt.Errorf("store auth configuration: %w", err)
	}
	if !ok {
		l.WarnContext(ctx, "Store token mismatch, possible tampering attempt")
		m.StoreAuthRejectionsTotal.Add(ctx, 1)
		span.SetStatus(codes.Error, "token mismatch")
		return nil, types.ErrTokenMismatch
	}

	identity := types.StoreIdentity{
		StoreID:      req.StoreID,
		Brand:        types.NormalizeBrand(req.Brand),
		CountryCode:  req.CountryCode,
		LanguageCode: req.LanguageCode,
		Context:      req.Context,
	}

	profile, err := s.repo.GetProfileByStoreID(ctx, req.StoreID)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		l.ErrorContext(ctx, "Profile lookup failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "profile lookup failed")
		return nil, fmt.Errorf("%w: %w", types.ErrBackendUnavailable, err)
	}

	email := SynthesizeEmail(req.StoreID, s.cfg.EmailDomain)
	resp, err := s.signInOrProvision(ctx, l, email, profile, identity, req.Token)
	if err != nil {
		m.StoreAuthRejectionsTotal.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "sign-in failed")
		return nil, err
	}
	if resp.Provisioned {
		m.AccountsProvisionedTotal.Add(ctx, 1)
	}

	// Metadata supplied by the latest deep link wins over stale stored
	// values. The session is already valid, so a failure here is logged and
	// swallowed.
	md := types.ProfileMetadata{
		Brand:        identity.Brand,
		CountryCode:  identity.CountryCode,
		LanguageCode: identity.LanguageCode,
		Context:      identity.Context,
	}
	if err := s.repo.SyncProfileMetadata(ctx, resp.AccountID, md); err != nil {
		l.WarnContext(ctx, "Profile metadata sync failed, session still valid", slog.Any("error", err))
	}

	sessionProfile := &types.Profile{
		ID:           resp.AccountID,
		StoreID:      identity.StoreID,
		Role:         resp.Role,
		Brand:        identity.Brand,
		CountryCode:  identity.CountryCode,
		LanguageCode: identity.LanguageCode,
		Context:      identity.Context,
	}
	access, refresh, err := s.issuer.IssueTokens(ctx, sessionProfile)
	if err != nil {
		l.ErrorContext(ctx, "Failed to issue session tokens", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "token issuance failed")
		return nil, fmt.Errorf("issuing session tokens: %w", err)
	}
	resp.AccessToken = access
	resp.RefreshToken = refresh
	resp.Brand = identity.Brand

	m.StoreAuthDurationSeconds.Record(ctx, s.nowFunc().Sub(start).Seconds())
	l.InfoContext(ctx, "Store signed in",
		slog.String("accountID", resp.AccountID),
		slog.Bool("provisioned", resp.Provisioned),
	)
	span.SetStatus(codes.Ok, "store signed in")
	return resp, nil
}

// signInOrProvision resolves the account for the synthesized email, creating
// it on first contact. The token has already been verified against today's
// derivation, so a stored hash that no longer matches means the password
// predates today's rollover and is resynchronized in place.
func (s *ServiceImpl) signInOrProvision(ctx context.Context, l *slog.Logger, email string, profile *types.Profile, identity types.StoreIdentity, token string) (*StoreLoginResponse, error) {
	account, err := s.repo.GetAccountByEmail(ctx, email)
	switch {
	case err == nil:
		// Existing account: check the stored hash against today's token.
		if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(token)) != nil {
			if err := s.rotatePassword(ctx, l, account.ID, token); err != nil {
				return nil, err
			}
		}
		role := types.RoleMagasin
		if profile != nil {
			role = profile.Role
		}
		return &StoreLoginResponse{AccountID: account.ID, StoreID: identity.StoreID, Role: role}, nil

	case errors.Is(err, types.ErrNotFound):
		if profile != nil {
			// A profile without its account is an inconsistency, not a
			// provisioning case.
			l.ErrorContext(ctx, "Profile exists but account is missing", slog.String("profileID", profile.ID))
			return nil, types.ErrUnauthenticated
		}
		return s.provision(ctx, l, email, identity, token)

	default:
		return nil, fmt.Errorf("%w: %w", types.ErrBackendUnavailable, err)
	}
}

func (s *ServiceImpl) provision(ctx context.Context, l *slog.Logger, email string, identity types.StoreIdentity, token string) (*StoreLoginResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing day token: %w", err)
	}

	accountID, err := s.repo.CreateStoreAccount(ctx, email, string(hash), identity)
	if errors.Is(err, types.ErrProvisioningConflict) {
		// Double-submitted deep link: another request won the race. Fall back
		// to signing in against the account it created.
		l.InfoContext(ctx, "Provisioning raced an existing account, falling back to sign-in")
		account, gerr := s.repo.GetAccountByEmail(ctx, email)
		if gerr != nil {
			return nil, fmt.Errorf("%w: %w", types.ErrBackendUnavailable, gerr)
		}
		if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(token)) != nil {
			if rerr := s.rotatePassword(ctx, l, account.ID, token); rerr != nil {
				return nil, rerr
			}
		}
		return &StoreLoginResponse{AccountID: account.ID, StoreID: identity.StoreID, Role: types.RoleMagasin}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrBackendUnavailable, err)
	}

	l.InfoContext(ctx, "Store account provisioned", slog.String("accountID", accountID))
	return &StoreLoginResponse{AccountID: accountID, StoreID: identity.StoreID, Role: types.RoleMagasin, Provisioned: true}, nil
}

// rotatePassword re-keys the account to today's token. Safe because the
// caller has already proven possession of a token matching today's
// derivation.
func (s *ServiceImpl) rotatePassword(ctx context.Context, l *slog.Logger, accountID, token string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing day token: %w", err)
	}
	if err := s.repo.UpdatePasswordHash(ctx, accountID, string(hash)); err != nil {
		return fmt.Errorf("%w: %w", types.ErrBackendUnavailable, err)
	}
	l.InfoContext(ctx, "Account password resynchronized to current day token", slog.String("accountID", accountID))
	return nil
}
