// Package googleauth wraps the Google identity provider: authorization URL
// generation with a signed state parameter, code exchange, and profile
// retrieval.
//
// Credentials are never held on the service. Every provider call builds its
// token source from the token bundle of the request at hand, so concurrent
// requests from different users cannot bleed credentials into each other.
package googleauth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauthapi "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"fintrack/internal/config"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/uuid"
)

// Scopes requested from Google: identity plus per-file Drive access.
var Scopes = []string{
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/drive.file",
}

// Service performs the OAuth exchange and userinfo lookup.
type Service struct {
	cfg         *oauth2.Config
	stateSecret []byte
	stateTTL    time.Duration

	// apiOpts lets tests point the userinfo client at a fake endpoint.
	apiOpts []option.ClientOption
}

// New builds the service from application configuration.
func New(appCfg *config.Config, apiOpts ...option.ClientOption) *Service {
	return &Service{
		cfg: &oauth2.Config{
			ClientID:     appCfg.GoogleClientID,
			ClientSecret: appCfg.GoogleClientSecret,
			RedirectURL:  appCfg.CallbackURL(),
			Scopes:       Scopes,
			Endpoint:     google.Endpoint,
		},
		stateSecret: []byte(appCfg.StateSecret),
		stateTTL:    appCfg.StateTTL,
		apiOpts:     apiOpts,
	}
}

// AuthCodeURL returns the provider authorization URL carrying a freshly
// signed state parameter. Offline access and a consent prompt are requested
// so a refresh token is always issued.
func (s *Service) AuthCodeURL() (string, error) {
	state, err := s.signState()
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	), nil
}

// VerifyState checks the signature and expiry of the state parameter echoed
// back by the callback.
func (s *Service) VerifyState(state string) error {
	token, err := jwt.Parse(state, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.stateSecret, nil
	})
	if err != nil || !token.Valid {
		return apperrors.Wrap(apperrors.ErrInvalidState, err)
	}
	return nil
}

// Exchange trades an authorization code for a token bundle.
func (s *Service) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrAuthExchange, err)
	}
	return token, nil
}

// FetchProfile retrieves the user's profile with the given token bundle.
func (s *Service) FetchProfile(ctx context.Context, token *oauth2.Token) (models.Profile, error) {
	opts := append([]option.ClientOption{
		option.WithTokenSource(s.TokenSource(ctx, token)),
	}, s.apiOpts...)

	svc, err := oauthapi.NewService(ctx, opts...)
	if err != nil {
		return models.Profile{}, apperrors.Wrap(apperrors.ErrAuthExchange, err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return models.Profile{}, apperrors.Wrap(apperrors.ErrAuthExchange, err)
	}

	return models.Profile{
		Name:    info.Name,
		Email:   info.Email,
		Picture: info.Picture,
	}, nil
}

// TokenSource returns a request-scoped token source for the bundle. The
// source refreshes the access token transparently when it has expired.
func (s *Service) TokenSource(ctx context.Context, token *oauth2.Token) oauth2.TokenSource {
	return s.cfg.TokenSource(ctx, token)
}

func (s *Service) signState() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.New(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.stateTTL)),
		Issuer:    "fintrack",
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.stateSecret)
}
