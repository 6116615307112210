// Package auth implements the local credential store used by the login
// screen. Passwords are never written in the clear: each user record keeps a
// random salt, a PBKDF2-HMAC-SHA256 derived key and the iteration count used
// to derive it, so the parameters can be raised later without breaking
// existing accounts.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// Iterations is the PBKDF2 work factor for newly created accounts.
	Iterations = 200000
	saltSize   = 16
	keySize    = sha256.Size
)

var (
	ErrEmptyCredentials = errors.New("username and password are required")
	ErrUserExists       = errors.New("user already exists")
	ErrUnknownUser      = errors.New("user not found")
	ErrWrongPassword    = errors.New("incorrect username or password")
)

// Record is the stored shape of one user's credentials.
type Record struct {
	Salt       string `json:"salt"`
	Hash       string `json:"hash"`
	Iterations int    `json:"iters"`
}

// Store persists user records as a JSON file.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore opens a credential store backed by the given file. The parent
// directory is created if needed.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("error creating credential directory: %w", err)
	}
	return &Store{path: path}, nil
}

// DefaultPath returns the per-user location of users.json, following the
// platform convention (e.g. ~/.config/ActivityTracker/users.json on Linux).
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("error resolving user config dir: %w", err)
	}
	return filepath.Join(base, "ActivityTracker", "users.json"), nil
}

// Register creates a new account. Usernames are trimmed; empty fields and
// duplicates are rejected.
func (s *Store) Register(username, password string) error {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return ErrEmptyCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := users[username]; ok {
		return ErrUserExists
	}

	rec, err := hashPassword(password, Iterations)
	if err != nil {
		return err
	}
	users[username] = rec
	return s.save(users)
}

// Authenticate verifies the credential pair against the store.
func (s *Store) Authenticate(username, password string) error {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return ErrEmptyCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	rec, ok := users[username]
	if !ok {
		return ErrUnknownUser
	}
	if !verifyPassword(password, rec) {
		return ErrWrongPassword
	}
	return nil
}

func (s *Store) load() (map[string]Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading credential store: %w", err)
	}

	users := map[string]Record{}
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("error parsing credential store: %w", err)
	}
	return users, nil
}

// save writes the store atomically: temp file in the same directory, then
// rename over the old file.
func (s *Store) save(users map[string]Record) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding credential store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "users-*.json")
	if err != nil {
		return fmt.Errorf("error creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("error writing credential store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("error closing credential store: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("error replacing credential store: %w", err)
	}
	return nil
}

func hashPassword(password string, iterations int) (Record, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return Record{}, fmt.Errorf("error generating salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), salt, iterations, keySize, sha256.New)
	return Record{
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Hash:       base64.StdEncoding.EncodeToString(key),
		Iterations: iterations,
	}, nil
}

func verifyPassword(password string, rec Record) bool {
	salt, err := base64.StdEncoding.DecodeString(rec.Salt)
	if err != nil {
		return false
	}
	expected, err := base64.StdEncoding.DecodeString(rec.Hash)
	if err != nil {
		return false
	}
	iterations := rec.Iterations
	if iterations <= 0 {
		iterations = Iterations
	}
	key := pbkdf2.Key([]byte(password), salt, iterations, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(key, expected) == 1
}
