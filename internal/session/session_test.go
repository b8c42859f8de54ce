package session

import (
	"testing"

	"github.com/go-git/go-billy/v6/memfs"
	"github.com/go-git/go-billy/v6/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	fs := memfs.New()
	store := NewStore(fs)

	t.Run("load without saved session", func(t *testing.T) {
		_, err := store.Load()
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("save then load", func(t *testing.T) {
		want := Session{Token: "abc", Username: "mouad", Role: "ROLE_USER_ROLE"}
		require.NoError(t, store.Save(want))

		got, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, want, got)

		_, err = fs.Stat(sessionFile + ".tmp")
		assert.Error(t, err, "temporary file should be renamed away")
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, store.Delete())
		require.NoError(t, store.Delete())
		_, err := store.Load()
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("tokenless file counts as no session", func(t *testing.T) {
		require.NoError(t, util.WriteFile(fs, sessionFile, []byte("username: ghost\n"), 0o600))
		_, err := store.Load()
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("garbage is an error", func(t *testing.T) {
		require.NoError(t, util.WriteFile(fs, sessionFile, []byte(":\n  - ["), 0o600))
		_, err := store.Load()
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoSession)
	})
}

func TestManager_Lifecycle(t *testing.T) {
	store := NewStore(memfs.New())
	require.NoError(t, store.Save(Session{Token: "persisted", Username: "ana", Role: "ROLE_ADMIN_ROLE"}))

	m := NewManager(store)
	assert.False(t, m.Current().Authenticated(), "nothing loaded before Init")

	require.NoError(t, m.Init())
	assert.Equal(t, "persisted", m.Token())
	assert.True(t, m.Current().IsAdmin())

	require.NoError(t, m.Set(Session{Token: "fresh", Username: "ana", Role: "ROLE_USER_ROLE"}))
	reloaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "fresh", reloaded.Token)
	assert.False(t, m.Current().IsAdmin())

	require.NoError(t, m.Clear())
	assert.Empty(t, m.Token())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManager_InitWithoutSession(t *testing.T) {
	m := NewManager(NewStore(memfs.New()))
	require.NoError(t, m.Init())
	assert.False(t, m.Current().Authenticated())
}

func TestStatic(t *testing.T) {
	p := Static(Session{Token: "t", Username: "u"})
	assert.Equal(t, "t", p.Token())
	assert.Equal(t, "u", p.Current().Username)
}
