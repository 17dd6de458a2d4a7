// ABOUTME: Google OAuth CLI commands
// ABOUTME: Handles credential prompts, the browser authorization flow, and auth status
package cli

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"syscall"

	"golang.org/x/oauth2"
	"golang.org/x/term"

	"github.com/synapse-app/calsync/sync"
)

// AuthInitCommand runs the OAuth setup: collects client credentials if
// needed, then drives the browser authorization flow via a local callback.
func AuthInitCommand(args []string) error {
	ctx := context.Background()

	if err := ensureClientCredentials(); err != nil {
		return err
	}

	config, err := sync.GetClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to get OAuth config: %w", err)
	}

	// Start local server for OAuth callback
	callbackChan := make(chan *oauth2.Token)
	errChan := make(chan error)

	http.HandleFunc("/oauth/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			errChan <- fmt.Errorf("no authorization code received")
			return
		}

		token, err := config.Exchange(ctx, code)
		if err != nil {
			errChan <- fmt.Errorf("failed to exchange code: %w", err)
			return
		}

		callbackChan <- token
		_, _ = fmt.Fprintf(w, "Authorization successful! You can close this window.")
	})

	server := &http.Server{Addr: ":8080"}
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	authURL := config.AuthCodeURL("state", oauth2.AccessTypeOffline)

	fmt.Println("Opening browser for Google OAuth...")
	fmt.Printf("\nIf browser doesn't open, visit this URL:\n%s\n\n", authURL)

	_ = openBrowser(authURL)

	select {
	case token := <-callbackChan:
		_ = server.Shutdown(ctx)

		if err := sync.SaveToken(token); err != nil {
			return fmt.Errorf("failed to save token: %w", err)
		}

		fmt.Printf("\n✓ Authenticated successfully\n")
		fmt.Printf("✓ Tokens saved to %s\n\n", sync.TokenPath())
		fmt.Println("Ready to sync! Run 'calsync sync push' to push tasks to your calendar.")

		return nil
	case err := <-errChan:
		_ = server.Shutdown(ctx)
		return err
	}
}

// AuthStatusCommand reports whether the user is authenticated.
func AuthStatusCommand(args []string) error {
	if !sync.HasCalendarPermissions() {
		fmt.Println("Not authenticated. Run 'calsync auth init' first.")
		return nil
	}

	fmt.Printf("✓ Authenticated\n")
	fmt.Printf("  Token: %s\n", sync.TokenPath())
	return nil
}

// ensureClientCredentials prompts for the Google OAuth client ID/secret
// when neither the environment nor the sync config carries them, and saves
// them into the sync config for later runs.
func ensureClientCredentials() error {
	config := sync.NewOAuthConfig()
	if config.ClientID != "" && config.ClientSecret != "" {
		return nil
	}

	cfg, err := sync.LoadSyncConfig()
	if err != nil {
		return fmt.Errorf("failed to load sync config: %w", err)
	}

	fmt.Println("Google OAuth client credentials are not configured.")
	fmt.Println("Create an OAuth app in the Google Cloud Console, then enter its credentials.")

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Client ID: ")
	clientID, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read client ID: %w", err)
	}
	cfg.ClientID = strings.TrimSpace(clientID)

	// Hidden input for the secret
	fmt.Print("Client secret: ")
	secretBytes, err := term.ReadPassword(syscall.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read client secret: %w", err)
	}
	fmt.Println()
	cfg.ClientSecret = strings.TrimSpace(string(secretBytes))

	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return fmt.Errorf("client ID and secret are required")
	}

	if err := sync.SaveSyncConfig(cfg); err != nil {
		return fmt.Errorf("failed to save sync config: %w", err)
	}

	fmt.Printf("✓ Credentials saved to %s\n\n", sync.SyncConfigPath())
	return nil
}

// openBrowser opens the default browser to the given URL.
func openBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start"}
	default:
		cmd = "xdg-open"
	}

	args = append(args, url)
	return exec.Command(cmd, args...).Start()
}
