package main

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pictureCatalog/internal/models"
	"pictureCatalog/internal/utils"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	store := newTestStore(t)
	dav := newTestDavClient("", "")
	return &App{
		Config:       &Config{},
		Store:        store,
		Dav:          dav,
		Engine:       NewSyncEngine(store, dav),
		ResolveCache: utils.NewResolveCache(time.Minute),
	}
}

func getPic(t *testing.T, app *App, name string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", "/api/pic?name="+name, nil)
	rec := httptest.NewRecorder()
	app.handleGetPic(rec, req)
	return rec
}

func TestHandleGetPic(t *testing.T) {
	app := newTestApp(t)
	dav := newFakeDav(t, "/pics/a.jpg")

	require.NoError(t, app.Store.UpsertPerson("Alice", dav.dirURL(), models.NewAliasSet("al")))
	require.NoError(t, app.Engine.SyncPerson("Alice"))

	rec := getPic(t, app, "al")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PicResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Alice", resp.Name)
	assert.Equal(t, dav.imageURL("a.jpg"), resp.URL)
	assert.Equal(t, ".jpg", resp.Ext)
	assert.Equal(t, "image/jpeg", resp.ContentType)

	data, err := base64.StdEncoding.DecodeString(resp.Base64)
	require.NoError(t, err)
	assert.Equal(t, fakeImageBytes, string(data))
}

func TestHandleGetPicMissingName(t *testing.T) {
	app := newTestApp(t)

	rec := getPic(t, app, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetPicUnknownPerson(t *testing.T) {
	app := newTestApp(t)

	rec := getPic(t, app, "nobody")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetPicEmptyCatalog(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.Store.UpsertPerson("Alice", "http://dav/alice/", nil))

	// Known person, never synced: still a 404, just for the image.
	rec := getPic(t, app, "Alice")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp utils.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Image not found", resp.Message)
}

func TestHandleGetPicRemoteDown(t *testing.T) {
	app := newTestApp(t)
	dav := newFakeDav(t, "/pics/a.jpg")

	require.NoError(t, app.Store.UpsertPerson("Alice", dav.dirURL(), nil))
	require.NoError(t, app.Engine.SyncPerson("Alice"))
	dav.ts.Close()

	rec := getPic(t, app, "Alice")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestResolveCachesNegativeResults(t *testing.T) {
	app := newTestApp(t)

	_, found, err := app.Resolve("Ghost")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, app.Store.UpsertPerson("Ghost", "http://dav/ghost/", nil))

	// The miss is cached until the name is invalidated.
	_, found, err = app.Resolve("Ghost")
	require.NoError(t, err)
	assert.False(t, found)

	app.ResolveCache.InvalidatePerson("Ghost")
	person, found, err := app.Resolve("Ghost")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Ghost", person.Name)
}

func TestHandleHealth(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	app.handleHealth(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp["status"])
}
