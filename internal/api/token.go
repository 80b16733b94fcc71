package api

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TokenEnvVar overrides the on-disk token when set, which keeps CI and
// scripted runs out of the credential file entirely.
const TokenEnvVar = "PODEX_TOKEN"

// Token is the stored credential for the Podex backend.
type Token struct {
	AccessToken string    `json:"accessToken"`
	User        string    `json:"user,omitempty"`
	SavedAt     time.Time `json:"savedAt,omitempty"`
}

// TokenManager loads and stores the credential file. All methods are safe
// for concurrent use.
type TokenManager struct {
	path  string
	mu    sync.Mutex
	token *Token
}

// DefaultTokenPath returns ~/.config/podex/token.json.
func DefaultTokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "podex", "token.json"), nil
}

// NewTokenManager reads any existing token at path. A missing or malformed
// file just means the user is signed out.
func NewTokenManager(path string) *TokenManager {
	tm := &TokenManager{path: path}
	_ = tm.load()
	return tm
}

func (tm *TokenManager) load() error {
	data, err := os.ReadFile(tm.path)
	if err != nil {
		return err
	}
	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return err
	}
	tm.mu.Lock()
	tm.token = &token
	tm.mu.Unlock()
	return nil
}

// AccessToken returns the current credential. The environment variable wins
// over the file; false means the user is not signed in.
func (tm *TokenManager) AccessToken() (string, bool) {
	if env := os.Getenv(TokenEnvVar); env != "" {
		return env, true
	}
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if tm.token == nil || tm.token.AccessToken == "" {
		return "", false
	}
	return tm.token.AccessToken, true
}

// SetToken stores a new credential on disk with owner-only permissions.
func (tm *TokenManager) SetToken(accessToken, user string) error {
	token := &Token{AccessToken: accessToken, User: user, SavedAt: time.Now().UTC()}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(tm.path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(tm.path, data, 0600); err != nil {
		return err
	}

	tm.mu.Lock()
	tm.token = token
	tm.mu.Unlock()
	return nil
}

// ClearToken signs the user out, removing the credential file.
func (tm *TokenManager) ClearToken() error {
	tm.mu.Lock()
	tm.token = nil
	tm.mu.Unlock()

	err := os.Remove(tm.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
