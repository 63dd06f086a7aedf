package google

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/oauth2"
)

const (
	appCacheDir     = "gapidemo"
	tokenFilePrefix = "google-"
	tokenFileSuffix = ".token"
)

var accountNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// TokenStore keeps one OAuth token per account as JSON files in a directory.
type TokenStore struct {
	dir string
}

// NewTokenStore creates a store rooted at dir. An empty dir selects DefaultTokenDir.
func NewTokenStore(dir string) *TokenStore {
	if dir == "" {
		dir = DefaultTokenDir()
	}
	return &TokenStore{dir: dir}
}

// DefaultTokenDir returns the per-user cache directory for tokens.
func DefaultTokenDir() string {
	return filepath.Join(userCacheDir(), appCacheDir)
}

// Dir returns the directory the store writes to.
func (s *TokenStore) Dir() string {
	return s.dir
}

// Path returns the token file path for account.
func (s *TokenStore) Path(account string) string {
	return filepath.Join(s.dir, tokenFilePrefix+account+tokenFileSuffix)
}

// Load reads the token for account. It returns ErrNoToken when none is saved.
func (s *TokenStore) Load(account string) (*oauth2.Token, error) {
	if err := validateAccountName(account); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path(account))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w for account %q", ErrNoToken, account)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid token file for account %q: %w", account, err)
	}
	return &tok, nil
}

// Save writes the token for account with owner-only permissions.
func (s *TokenStore) Save(account string, tok *oauth2.Token) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	if tok == nil {
		return fmt.Errorf("token is required")
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(s.Path(account), data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Has reports whether a token file exists for account.
func (s *TokenStore) Has(account string) bool {
	if validateAccountName(account) != nil {
		return false
	}
	_, err := os.Stat(s.Path(account))
	return err == nil
}

// Delete removes the token for account. Deleting a missing token is not an error.
func (s *TokenStore) Delete(account string) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	if err := os.Remove(s.Path(account)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	return nil
}

// Accounts lists the accounts with a saved token, sorted by name.
func (s *TokenStore) Accounts() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list token directory: %w", err)
	}

	var accounts []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, tokenFilePrefix) || !strings.HasSuffix(name, tokenFileSuffix) {
			continue
		}
		account := strings.TrimSuffix(strings.TrimPrefix(name, tokenFilePrefix), tokenFileSuffix)
		if validateAccountName(account) == nil {
			accounts = append(accounts, account)
		}
	}
	sort.Strings(accounts)
	return accounts, nil
}

// validateAccountName ensures the account name is usable as part of a file name.
func validateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q: only letters, digits, hyphens and underscores are allowed", account)
	}
	return nil
}

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
		return os.TempDir()
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
