package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pictureCatalog/internal/models"
)

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadSeedFile(t *testing.T) {
	path := writeSeedFile(t, `[
		{"name": "Alice", "dav_url": "http://dav/alice/", "aliases": ["al"]},
		{"name": "Bob", "dav_url": "http://dav/bob/"}
	]`)

	seeds, err := LoadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, seeds, 2)
	assert.Equal(t, "Alice", seeds[0].Name)
	assert.Equal(t, []string{"al"}, seeds[0].Aliases)
	assert.Empty(t, seeds[1].Aliases)
}

func TestLoadSeedFileErrors(t *testing.T) {
	_, err := LoadSeedFile(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)

	path := writeSeedFile(t, `{"not": "a list"}`)
	_, err = LoadSeedFile(path)
	assert.Error(t, err)
}

func TestValidateSeedPerson(t *testing.T) {
	valid := models.SeedPerson{Name: "Alice", DavURL: "https://dav/alice/", Aliases: []string{"al"}}
	assert.NoError(t, ValidateSeedPerson(valid))

	tests := []struct {
		label string
		seed  models.SeedPerson
	}{
		{"empty name", models.SeedPerson{DavURL: "http://dav/x/"}},
		{"empty dav_url", models.SeedPerson{Name: "Alice"}},
		{"non-http dav_url", models.SeedPerson{Name: "Alice", DavURL: "file:///pics"}},
		{"empty alias", models.SeedPerson{Name: "Alice", DavURL: "http://dav/x/", Aliases: []string{""}}},
	}
	for _, tt := range tests {
		assert.Error(t, ValidateSeedPerson(tt.seed), tt.label)
	}
}

func TestSeedPersonsIdempotent(t *testing.T) {
	app := newTestApp(t)
	seeds := []models.SeedPerson{
		{Name: "Alice", DavURL: "http://dav/alice/", Aliases: []string{"al"}},
		{Name: "Bob", DavURL: "http://dav/bob/"},
	}

	require.NoError(t, app.SeedPersons(seeds))
	seeds[0].Aliases = []string{"ali"}
	require.NoError(t, app.SeedPersons(seeds))

	persons, err := app.Store.ListPersons()
	require.NoError(t, err)
	require.Len(t, persons, 2)
	assert.True(t, persons[0].Aliases.Has("ali"))
	assert.False(t, persons[0].Aliases.Has("al"))
}

func TestSeedPersonsRejectsInvalidEntry(t *testing.T) {
	app := newTestApp(t)
	seeds := []models.SeedPerson{
		{Name: "Alice", DavURL: "not a url"},
	}
	assert.Error(t, app.SeedPersons(seeds))
}
