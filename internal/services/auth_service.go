package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/alimgiray/gdocscope/internal/handlers"
	"github.com/alimgiray/gdocscope/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const callbackPath = "/oauth2/callback"

type AuthService struct {
	oauthConfig  *oauth2.Config
	tokenFile    string
	callbackAddr string
	timeout      time.Duration
	prompt       io.Writer
}

// NewAuthService reads the OAuth client secrets downloaded from the Google
// Cloud Console. The consent URL is written to prompt.
func NewAuthService(credentialsFile, tokenFile, callbackAddr string, timeout time.Duration, prompt io.Writer) (*AuthService, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s not found, download it from the Google Cloud Console", ErrAuth, credentialsFile)
		}
		return nil, fmt.Errorf("%w: failed to read %s: %w", ErrAuth, credentialsFile, err)
	}

	oauthConfig, err := google.ConfigFromJSON(data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid client secrets in %s: %w", ErrAuth, credentialsFile, err)
	}

	return NewAuthServiceWithConfig(oauthConfig, tokenFile, callbackAddr, timeout, prompt), nil
}

// NewAuthServiceWithConfig uses an already built OAuth configuration
func NewAuthServiceWithConfig(oauthConfig *oauth2.Config, tokenFile, callbackAddr string, timeout time.Duration, prompt io.Writer) *AuthService {
	if prompt == nil {
		prompt = io.Discard
	}
	return &AuthService{
		oauthConfig:  oauthConfig,
		tokenFile:    tokenFile,
		callbackAddr: callbackAddr,
		timeout:      timeout,
		prompt:       prompt,
	}
}

// HTTPClient returns an authorized HTTP client. A cached token is reused and
// refreshed when possible; otherwise the interactive consent flow runs.
// Every token the client obtains is written back to the cache.
func (s *AuthService) HTTPClient(ctx context.Context) (*http.Client, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}

	source := &cachingTokenSource{
		base:  s.oauthConfig.TokenSource(ctx, token),
		last:  token,
		store: s.saveToken,
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(token, source)), nil
}

// Token returns a valid token from the cache or from the consent flow
func (s *AuthService) Token(ctx context.Context) (*oauth2.Token, error) {
	cached, err := s.loadToken()
	switch {
	case err == nil:
		fresh, refreshErr := s.oauthConfig.TokenSource(ctx, cached).Token()
		if refreshErr == nil {
			if fresh.AccessToken != cached.AccessToken {
				logger.Info("Refreshed cached OAuth token")
				if err := s.saveToken(fresh); err != nil {
					return nil, err
				}
			}
			return fresh, nil
		}
		logger.WithError(refreshErr).Warnf("Cached token in %s is no longer usable", s.tokenFile)
	case errors.Is(err, os.ErrNotExist):
		logger.Debugf("No cached token at %s", s.tokenFile)
	default:
		logger.WithError(err).Warnf("Ignoring unreadable token cache %s", s.tokenFile)
	}

	token, err := s.consent(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.saveToken(token); err != nil {
		return nil, err
	}
	return token, nil
}

// consent runs the installed-app flow: a loopback server receives the
// redirect of the consent screen and the code is exchanged for a token.
func (s *AuthService) consent(ctx context.Context) (*oauth2.Token, error) {
	listener, err := net.Listen("tcp", s.callbackAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to listen on %s: %w", ErrAuth, s.callbackAddr, err)
	}

	cfg := *s.oauthConfig
	cfg.RedirectURL = "http://" + listener.Addr().String() + callbackPath

	state := uuid.NewString()
	results := make(chan handlers.CallbackResult, 1)

	gin.SetMode(gin.ReleaseMode)
	server := &http.Server{
		Handler:           handlers.NewCallbackRouter(handlers.NewOAuthCallbackHandler(state, results)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Warnf("OAuth callback server stopped")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Fprintf(s.prompt, "Open the following URL in your browser to authorize access:\n\n%s\n\n", authURL)
	logger.WithField("redirect_url", cfg.RedirectURL).Info("Waiting for OAuth consent")

	waitCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	select {
	case result := <-results:
		if result.Err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAuth, result.Err)
		}
		token, err := cfg.Exchange(waitCtx, result.Code)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to exchange code for token: %w", ErrAuth, err)
		}
		return token, nil
	case <-waitCtx.Done():
		return nil, fmt.Errorf("%w: no authorization received: %w", ErrAuth, waitCtx.Err())
	}
}

func (s *AuthService) loadToken() (*oauth2.Token, error) {
	lock := flock.New(s.tokenFile + ".lock")
	if err := lock.RLock(); err != nil {
		return nil, fmt.Errorf("failed to lock token cache: %w", err)
	}
	defer lock.Unlock()

	data, err := os.ReadFile(s.tokenFile)
	if err != nil {
		return nil, err
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to decode token cache: %w", err)
	}
	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, fmt.Errorf("token cache %s holds no token", s.tokenFile)
	}
	return &token, nil
}

func (s *AuthService) saveToken(token *oauth2.Token) error {
	lock := flock.New(s.tokenFile + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock token cache: %w", err)
	}
	defer lock.Unlock()

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.tokenFile), ".token-*")
	if err != nil {
		return fmt.Errorf("failed to write token cache: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write token cache: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write token cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write token cache: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.tokenFile); err != nil {
		return fmt.Errorf("failed to write token cache: %w", err)
	}
	return nil
}

// cachingTokenSource persists every new token the base source hands out
type cachingTokenSource struct {
	base  oauth2.TokenSource
	last  *oauth2.Token
	store func(*oauth2.Token) error
}

func (c *cachingTokenSource) Token() (*oauth2.Token, error) {
	token, err := c.base.Token()
	if err != nil {
		return nil, err
	}
	if c.last == nil || token.AccessToken != c.last.AccessToken {
		if err := c.store(token); err != nil {
			logger.WithError(err).Warnf("Failed to update token cache")
		}
		c.last = token
	}
	return token, nil
}
