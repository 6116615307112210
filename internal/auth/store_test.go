package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "store", "users.json"))
	require.NoError(t, err)
	return store
}

func TestRegisterAndAuthenticate(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Register("alice", "s3cret"))
	require.NoError(t, store.Authenticate("alice", "s3cret"))
}

func TestWrongPassword(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Register("alice", "s3cret"))
	require.ErrorIs(t, store.Authenticate("alice", "wrong"), ErrWrongPassword)
}

func TestUnknownUser(t *testing.T) {
	store := newTestStore(t)
	require.ErrorIs(t, store.Authenticate("nobody", "pw"), ErrUnknownUser)
}

func TestDuplicateUser(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Register("alice", "one"))
	require.ErrorIs(t, store.Register("alice", "two"), ErrUserExists)
}

func TestEmptyCredentials(t *testing.T) {
	store := newTestStore(t)

	require.ErrorIs(t, store.Register("", "pw"), ErrEmptyCredentials)
	require.ErrorIs(t, store.Register("alice", "   "), ErrEmptyCredentials)
	require.ErrorIs(t, store.Authenticate("", ""), ErrEmptyCredentials)
}

func TestUsernamesAreTrimmed(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Register("  alice ", "s3cret"))
	require.NoError(t, store.Authenticate("alice", "s3cret"))
}

func TestStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")

	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Register("alice", "s3cret"))

	reopened, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, reopened.Authenticate("alice", "s3cret"))
}

func TestPasswordsAreNotStoredInTheClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")

	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Register("alice", "s3cret"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(data), "s3cret")

	var users map[string]Record
	require.NoError(t, json.Unmarshal(data, &users))
	require.Equal(t, Iterations, users["alice"].Iterations)
	require.NotEmpty(t, users["alice"].Salt)
}

func TestTamperedRecordFailsVerification(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")

	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Register("alice", "s3cret"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var users map[string]Record
	require.NoError(t, json.Unmarshal(data, &users))

	rec := users["alice"]
	rec.Hash = "not base64!!!"
	users["alice"] = rec
	data, err = json.Marshal(users)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	require.ErrorIs(t, store.Authenticate("alice", "s3cret"), ErrWrongPassword)
}
