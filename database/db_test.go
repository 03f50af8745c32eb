package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"corpus-prep/dictionary"
	apperrors "corpus-prep/errors"
)

// openTestStore connects to TEST_DATABASE_URL or skips.
func openTestStore(t *testing.T) *PostgresStore {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := NewPostgresStore(ctx, url, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.EnsureSchema(ctx))
	t.Cleanup(func() {
		store.DB.Exec(`DELETE FROM dictionary_entries WHERE term LIKE 'TESTE%'`)
		store.Close()
	})
	return store
}

func TestDictionaryRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	d := dictionary.FromEntries(dictionary.KindAcronym, []dictionary.Entry{
		{Term: "TESTEA", Replacement: "Teste A"},
		{Term: "TESTEB"},
	})
	require.NoError(t, store.UpsertEntries(ctx, d, false))

	d.Set("TESTEA", "Outro")
	require.NoError(t, store.UpsertEntries(ctx, d, false))

	loaded, err := store.LoadDictionary(ctx, dictionary.KindAcronym)
	require.NoError(t, err)
	repl, ok := loaded.Lookup("TESTEA")
	assert.True(t, ok)
	assert.Equal(t, "Outro", repl)

	require.NoError(t, store.DeleteEntry(ctx, dictionary.KindAcronym, "TESTEB"))
	err = store.DeleteEntry(ctx, dictionary.KindAcronym, "TESTEB")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRecordRun(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run := &Run{Stage: "detect", SourceFile: "respostas.csv", TextColumn: "texto", RowCount: 3, Acronyms: []string{"ONU"}}
	require.NoError(t, store.RecordRun(ctx, run))
	assert.NotEqual(t, "", run.ID.String())
	t.Cleanup(func() { store.DB.Exec(`DELETE FROM corpus_runs WHERE id = $1`, run.ID) })

	runs, err := store.RecentRuns(ctx, 50)
	require.NoError(t, err)
	found := false
	for _, r := range runs {
		if r.ID == run.ID {
			found = true
			assert.Equal(t, []string{"ONU"}, r.Acronyms)
			assert.Empty(t, r.Entities)
		}
	}
	assert.True(t, found)
}

func TestNonNil(t *testing.T) {
	assert.Equal(t, []string{}, nonNil(nil))
	assert.Equal(t, []string{"a"}, nonNil([]string{"a"}))
}
