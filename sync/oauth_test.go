package sync

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"golang.org/x/oauth2"
)

func TestOAuthConfigCreation(t *testing.T) {
	config := NewOAuthConfig()

	if len(config.Scopes) != 1 || config.Scopes[0] != contactsScope {
		t.Errorf("expected only the contacts scope, got %v", config.Scopes)
	}
	if config.RedirectURL != RedirectURL {
		t.Errorf("unexpected redirect %s", config.RedirectURL)
	}
}

func TestGetClientNeedsCredentials(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "")
	t.Setenv("GOOGLE_CLIENT_SECRET", "")

	if _, err := GetClient(); err == nil {
		t.Fatal("expected error without credentials")
	}

	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")
	if _, err := GetClient(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTokenPathXDG(t *testing.T) {
	path := TokenPath()

	expectedBase := filepath.Join(xdg.DataHome, "dealboard")
	if !strings.HasPrefix(path, expectedBase) {
		t.Errorf("expected path under %s, got %s", expectedBase, path)
	}
	if filepath.Base(path) != "google-credentials.json" {
		t.Errorf("expected filename google-credentials.json, got %s", filepath.Base(path))
	}
}

func TestSaveAndLoadToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	token := &oauth2.Token{AccessToken: "abc", RefreshToken: "def", Expiry: time.Now().Add(time.Hour).Round(time.Second)}

	if err := SaveToken(path, token); err != nil {
		t.Fatalf("failed to save token: %v", err)
	}
	loaded, err := LoadToken(path)
	if err != nil {
		t.Fatalf("failed to load token: %v", err)
	}
	if loaded.AccessToken != "abc" || loaded.RefreshToken != "def" {
		t.Errorf("token round trip lost fields: %+v", loaded)
	}

	if _, err := LoadToken(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing token file")
	}
}
