package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/gnx/internal/server"
	"github.com/desertthunder/gnx/internal/services"
	"github.com/desertthunder/gnx/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const authTimeout = 2 * time.Minute

// AuthLogin runs the Google consent flow and stores the resulting tokens in the config file.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	google := r.config.Credentials.Google
	if google.ClientID == "" || google.ClientSecret == "" {
		return fmt.Errorf("%w: credentials.google.client_id and client_secret are required", shared.ErrInvalidArgument)
	}

	token, err := r.doOAuth(ctx, services.GoogleOAuthConfig(google))
	if err != nil {
		return err
	}

	if err := r.saveTokens(token); err != nil {
		return err
	}

	r.logger.Info("authentication successful")
	return r.writePlain("✓ Authentication successful\nTokens saved to %s\n", r.configPath)
}

// AuthStatus checks that the configured store accepts the stored credentials.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking auth status")

	store, err := r.Store(ctx)
	if err != nil {
		return err
	}

	names, err := store.ListSheetNames(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}

	r.writePlain("✓ Connected to %s\n", store.Name())
	return r.writePlain("Sheets: %d\n", len(names))
}

// doOAuth executes the authorization code flow with a local callback server.
func (r *Runner) doOAuth(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	handler := server.NewOAuthHandler(config, shared.GenerateID())
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger))
	router.Handler(handler)

	addr := r.config.Server.Addr()
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth server at %v", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	authURL := handler.AuthURL()
	r.writePlain("→ Opening browser for Google authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(authTimeout)
	defer timeout.Stop()

	var result server.OAuthResult
	select {
	case result = <-handler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if err := result.Error(); err != nil {
		return nil, fmt.Errorf("authorization failed: %w", err)
	}
	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}
	return result.Token, nil
}

// saveTokens updates the Google credentials and persists the config when a path is set.
func (r *Runner) saveTokens(token *oauth2.Token) error {
	if r.config == nil {
		return fmt.Errorf("%w: config is nil", shared.ErrInvalidConfig)
	}
	if err := r.config.Credentials.Google.Update(token); err != nil {
		return fmt.Errorf("failed to update google configuration: %w", err)
	}
	if r.configPath == "" {
		return nil
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}
