package storage

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *ClientDB {
	t.Helper()
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSessionRoundTrip(t *testing.T) {
	db := openTestDB(t)

	_, err := db.LoadSession()
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, db.SaveSession("tok-1"))
	token, err := db.LoadSession()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	// Saving again replaces the previous session.
	require.NoError(t, db.SaveSession("tok-2"))
	token, err = db.LoadSession()
	require.NoError(t, err)
	assert.Equal(t, "tok-2", token)

	require.NoError(t, db.ClearSession())
	_, err = db.LoadSession()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionSealedAtRest(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.SaveSession("super-secret-token"))

	var sealed []byte
	require.NoError(t, db.db.QueryRow(`SELECT sealed FROM session WHERE id = 1`).Scan(&sealed))
	assert.NotContains(t, string(sealed), "super-secret-token")
}

func TestSessionSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, db.SaveSession("tok-1"))
	require.NoError(t, db.Close())

	db, err = Open(dir)
	require.NoError(t, err)
	defer db.Close()

	token, err := db.LoadSession()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
}

func TestPreferences(t *testing.T) {
	db := openTestDB(t)

	val, err := db.Preference("language")
	require.NoError(t, err)
	assert.Empty(t, val)

	require.NoError(t, db.SetPreference("language", "fr"))
	require.NoError(t, db.SetPreference("language", "en"))

	val, err = db.Preference("language")
	require.NoError(t, err)
	assert.Equal(t, "en", val)
}

func TestDiagnosticsRingKeepsNewestTen(t *testing.T) {
	db := openTestDB(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 15; i++ {
		require.NoError(t, db.AppendDiagnostic(Diagnostic{
			At:      base.Add(time.Duration(i) * time.Minute),
			Kind:    "generic",
			Message: fmt.Sprintf("failure %d", i),
		}))
	}

	diags, err := db.Diagnostics()
	require.NoError(t, err)
	require.Len(t, diags, 10)

	// Newest first, oldest five dropped.
	assert.Equal(t, "failure 14", diags[0].Message)
	assert.Equal(t, "failure 5", diags[9].Message)
}

func TestDiagnosticsClear(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.AppendDiagnostic(Diagnostic{Kind: "connectivity", Message: "socket dropped"}))

	diags, err := db.Diagnostics()
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.NotEmpty(t, diags[0].ID)
	assert.False(t, diags[0].At.IsZero())

	require.NoError(t, db.ClearDiagnostics())
	diags, err = db.Diagnostics()
	require.NoError(t, err)
	assert.Empty(t, diags)
}
