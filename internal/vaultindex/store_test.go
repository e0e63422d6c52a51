package vaultindex

import (
	"testing"
	"time"

	"github.com/slasshy/slasshy/internal/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	dir := t.TempDir()
	return NewStore(dir, 0, keyring.DefaultKDFParams())
}

func TestInitThenUnlock(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Init([]byte("correct horse battery staple")))
	s.Lock()

	require.NoError(t, s.Unlock([]byte("correct horse battery staple")))
	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.EntryCount)
	s.Lock()

	err = s.Unlock([]byte("wrong"))
	assert.ErrorIs(t, err, ErrBadPassphrase)
}

func TestInitTwiceFails(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Init([]byte("passphrase-one")))
	err := s.Init([]byte("passphrase-two"))
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
}

func TestCredentialCRUD(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Init([]byte("correct horse battery staple")))

	entry, err := s.AddCredential("GitHub", CredentialFields{
		Username: "alice",
		Password: "p@ss",
		URL:      "https://github.com",
	})
	require.NoError(t, err)
	require.NotEmpty(t, entry.ID)

	got, err := s.Get(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "p@ss", got.Password)

	newPass := "new"
	_, err = s.Update(entry.ID, UpdatePatch{Password: &newPass})
	require.NoError(t, err)

	got, err = s.Get(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Password)

	require.NoError(t, s.Delete(entry.ID))
	_, err = s.Get(entry.ID)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestAddTwiceDistinctIDsAndCount(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Init([]byte("hunter2hunter2")))

	e1, err := s.AddCredential("Dup", CredentialFields{Password: "a"})
	require.NoError(t, err)
	e2, err := s.AddCredential("Dup", CredentialFields{Password: "b"})
	require.NoError(t, err)
	assert.NotEqual(t, e1.ID, e2.ID)

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.EntryCount)
}

func TestOtherVaultCannotReadEntry(t *testing.T) {
	s1 := newTestStore(t)
	require.NoError(t, s1.Init([]byte("passphrase-a")))
	e, err := s1.AddNote("secret", "sensitive content")
	require.NoError(t, err)
	s1.Lock()

	s2 := newTestStore(t)
	require.NoError(t, s2.Init([]byte("passphrase-b")))
	_, err = s2.Get(e.ID)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestListAndSearch(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Init([]byte("search-me-search-me")))
	_, err := s.AddNote("Groceries", "milk, eggs")
	require.NoError(t, err)
	_, err = s.AddNote("Taxes 2025", "w2 forms")
	require.NoError(t, err)

	all, err := s.List()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := s.Search("tax")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Taxes 2025", found[0].Title)
}

func TestToggleFavorite(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Init([]byte("favorite-pw-favorite")))
	e, err := s.AddNote("Pin", "1234")
	require.NoError(t, err)

	ie, err := s.ToggleFavorite(e.ID)
	require.NoError(t, err)
	assert.True(t, ie.Favorite)

	ie, err = s.ToggleFavorite(e.ID)
	require.NoError(t, err)
	assert.False(t, ie.Favorite)
}

func TestOperationsRequireUnlock(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Init([]byte("some-passphrase-here")))
	s.Lock()

	_, err := s.AddNote("x", "y")
	assert.ErrorIs(t, err, ErrLocked)
}

func TestDuressUnlockSwapsIndex(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Init([]byte("real-passphrase-1234")))
	_, err := s.AddNote("Real Secret", "do not disclose")
	require.NoError(t, err)

	require.NoError(t, s.ConfigureDuress([]byte("duress-passphrase-5678"), []string{"Grocery list", "Dentist appointment"}))
	s.Lock()

	require.NoError(t, s.Unlock([]byte("duress-passphrase-5678")))
	assert.True(t, s.IsDuress())
	assert.True(t, s.IsUnlocked())

	summaries, err := s.List()
	require.NoError(t, err)
	titles := make([]string, 0, len(summaries))
	for _, sm := range summaries {
		titles = append(titles, sm.Title)
	}
	assert.Contains(t, titles, "Grocery list")
	assert.NotContains(t, titles, "Real Secret")
	s.Lock()

	require.NoError(t, s.Unlock([]byte("real-passphrase-1234")))
	assert.False(t, s.IsDuress())
}

func TestRotateMasterReencryptsUnderNewPassphrase(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Init([]byte("original-passphrase-999")))
	credEntry, err := s.AddCredential("Bank", CredentialFields{Username: "bob", Password: "secretpw"})
	require.NoError(t, err)
	noteEntry, err := s.AddNote("Diary", "dear diary")
	require.NoError(t, err)

	require.NoError(t, s.RotateMaster([]byte("brand-new-passphrase-000")))

	got, err := s.Get(credEntry.ID)
	require.NoError(t, err)
	assert.Equal(t, "secretpw", got.Password)

	note, err := s.GetNote(noteEntry.ID)
	require.NoError(t, err)
	assert.Equal(t, "dear diary", note.Content)

	s.Lock()
	err = s.Unlock([]byte("original-passphrase-999"))
	assert.ErrorIs(t, err, ErrBadPassphrase)

	require.NoError(t, s.Unlock([]byte("brand-new-passphrase-000")))
	got, err = s.Get(credEntry.ID)
	require.NoError(t, err)
	assert.Equal(t, "secretpw", got.Password)
}

func TestAutoLockExpiresKeys(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, 30*time.Millisecond, keyring.DefaultKDFParams())
	require.NoError(t, s.Init([]byte("short-lived-unlock-window")))

	time.Sleep(80 * time.Millisecond)
	_, err := s.AddNote("late", "too late")
	assert.Error(t, err)
}
