// ABOUTME: Google sync CLI commands
// ABOUTME: Handles OAuth setup and importing Google Contacts into the CRM
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/sync"
	"golang.org/x/oauth2"
)

const callbackAddr = "localhost:8085"

// SyncInitCommand handles OAuth setup
func SyncInitCommand(ctx context.Context, args []string) error {
	fs := newFlagSet("sync init")
	noBrowser := fs.Bool("no-browser", false, "Print the URL instead of opening a browser")
	if err := fs.Parse(args); err != nil {
		return err
	}

	config, err := sync.GetClient()
	if err != nil {
		return fmt.Errorf("failed to get OAuth config: %w", err)
	}

	state := uuid.NewString()
	tokens := make(chan *oauth2.Token, 1)
	errs := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			errs <- fmt.Errorf("oauth state mismatch")
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			errs <- fmt.Errorf("no authorization code received")
			return
		}

		token, err := config.Exchange(r.Context(), code)
		if err != nil {
			http.Error(w, "token exchange failed", http.StatusBadGateway)
			errs <- fmt.Errorf("failed to exchange code: %w", err)
			return
		}

		tokens <- token
		_, _ = fmt.Fprintf(w, "Authorization successful! You can close this window.")
	})

	server := &http.Server{Addr: callbackAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOffline)
	_, _ = fmt.Fprintln(stdout, "Opening browser for Google OAuth...")
	_, _ = fmt.Fprintf(stdout, "\nIf browser doesn't open, visit this URL:\n%s\n\n", authURL)
	if !*noBrowser {
		_ = openBrowser(authURL)
	}

	select {
	case token := <-tokens:
		path := sync.TokenPath()
		if err := sync.SaveToken(path, token); err != nil {
			return fmt.Errorf("failed to save token: %w", err)
		}
		_, _ = fmt.Fprintf(stdout, "\n✓ Authenticated successfully\n")
		_, _ = fmt.Fprintf(stdout, "✓ Tokens saved to %s\n\n", path)
		_, _ = fmt.Fprintln(stdout, "Ready to sync! Run 'dealboard sync contacts' to import contacts.")
		return nil
	case err := <-errs:
		return fmt.Errorf("OAuth flow failed: %w", err)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SyncContactsCommand imports Google Contacts.
func SyncContactsCommand(ctx context.Context, store db.ContactStore, logger *log.Logger, args []string) error {
	fs := newFlagSet("sync contacts")
	if err := fs.Parse(args); err != nil {
		return err
	}

	config, err := sync.GetClient()
	if err != nil {
		return err
	}
	token, err := sync.LoadToken(sync.TokenPath())
	if err != nil {
		return fmt.Errorf("no authentication token found. Run 'dealboard sync init' first: %w", err)
	}

	source, err := sync.NewPeopleClient(ctx, config, token)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(stdout, "Syncing Google Contacts...")
	result, err := sync.ImportContacts(ctx, store, source, logger)
	if err != nil {
		return fmt.Errorf("contacts sync failed: %w", err)
	}
	printImportResult(result)
	return nil
}

func printImportResult(r sync.ImportResult) {
	_, _ = fmt.Fprintf(stdout, "  ✓ Fetched %d contacts\n", r.Fetched)
	_, _ = fmt.Fprintf(stdout, "  ✓ Created %d, updated %d, skipped %d\n", r.Created, r.Updated, r.Skipped)
}

// openBrowser attempts to open URL in default browser
func openBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}

	return exec.Command(cmd, args...).Start()
}
