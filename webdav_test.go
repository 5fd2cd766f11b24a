package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pictureCatalog/internal/models"
)

func newTestDavClient(user, pass string) *DavClient {
	return NewDavClient(&Config{DavUser: user, DavPass: pass, Timeout: 5})
}

func multistatusBody(hrefs ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	b.WriteString(`<D:multistatus xmlns:D="DAV:">` + "\n")
	for _, href := range hrefs {
		fmt.Fprintf(&b, "<D:response><D:href>%s</D:href></D:response>\n", href)
	}
	b.WriteString(`</D:multistatus>`)
	return b.String()
}

func TestListDirectory(t *testing.T) {
	var gotMethod, gotDepth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotDepth = r.Header.Get("Depth")
		w.WriteHeader(http.StatusMultiStatus)
		fmt.Fprint(w, multistatusBody(
			"/nsy/dir/",
			"/nsy/dir/x.jpg",
			"/nsy/dir/y.PNG",
			"/nsy/dir/notes.txt",
			"/nsy/dir/subdir/",
		))
	}))
	defer srv.Close()

	client := newTestDavClient("", "")
	urls, err := client.List(srv.URL + "/nsy/dir/")
	require.NoError(t, err)

	assert.Equal(t, "PROPFIND", gotMethod)
	assert.Equal(t, "1", gotDepth)
	assert.Equal(t, []string{
		srv.URL + "/nsy/dir/x.jpg",
		srv.URL + "/nsy/dir/y.PNG",
	}, urls)
}

func TestListDirectorySelfWithoutTrailingSlash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMultiStatus)
		fmt.Fprint(w, multistatusBody("/nsy/dir", "/nsy/dir/a.gif"))
	}))
	defer srv.Close()

	client := newTestDavClient("", "")
	urls, err := client.List(srv.URL + "/nsy/dir/")
	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/nsy/dir/a.gif"}, urls)
}

func TestListDirectoryEncodesEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMultiStatus)
		fmt.Fprint(w, multistatusBody("/dir/", "/dir/2021-09-25 20-10.jpg"))
	}))
	defer srv.Close()

	client := newTestDavClient("", "")
	urls, err := client.List(srv.URL + "/dir/")
	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/dir/2021-09-25%2020-10.jpg"}, urls)
}

func TestListDirectoryEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMultiStatus)
		fmt.Fprint(w, multistatusBody("/dir/"))
	}))
	defer srv.Close()

	client := newTestDavClient("", "")
	urls, err := client.List(srv.URL + "/dir/")
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestListDirectoryBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestDavClient("", "")
	_, err := client.List(srv.URL + "/dir/")
	assert.ErrorIs(t, err, models.ErrRemoteProtocol)
}

func TestListDirectoryUnparseable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMultiStatus)
		fmt.Fprint(w, "this is not xml at all")
	}))
	defer srv.Close()

	client := newTestDavClient("", "")
	_, err := client.List(srv.URL + "/dir/")
	assert.ErrorIs(t, err, models.ErrRemoteProtocol)
}

func TestListDirectoryUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := newTestDavClient("", "")
	_, err := client.List(srv.URL + "/dir/")
	assert.ErrorIs(t, err, models.ErrRemoteUnavailable)
}

func TestListAttachesBasicAuth(t *testing.T) {
	var gotUser, gotPass string
	var gotAuthSet bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, gotAuthSet = r.BasicAuth()
		w.WriteHeader(http.StatusMultiStatus)
		fmt.Fprint(w, multistatusBody("/dir/"))
	}))
	defer srv.Close()

	client := newTestDavClient("alice", "secret")
	_, err := client.List(srv.URL + "/dir/")
	require.NoError(t, err)
	assert.True(t, gotAuthSet)
	assert.Equal(t, "alice", gotUser)
	assert.Equal(t, "secret", gotPass)
}

func TestListSingleFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestDavClient("", "")
	urls, err := client.List(srv.URL + "/pics/solo.jpg")
	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/pics/solo.jpg"}, urls)
}

func TestListSingleFileHeadNotAllowed(t *testing.T) {
	var gotRange string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		gotRange = r.Header.Get("Range")
		w.WriteHeader(http.StatusPartialContent)
		w.Write([]byte{0xff})
	}))
	defer srv.Close()

	client := newTestDavClient("", "")
	urls, err := client.List(srv.URL + "/pics/solo.png")
	require.NoError(t, err)
	assert.Equal(t, "bytes=0-0", gotRange)
	assert.Len(t, urls, 1)
}

func TestListSingleFileMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestDavClient("", "")
	_, err := client.List(srv.URL + "/pics/gone.jpg")
	assert.ErrorIs(t, err, models.ErrRemoteProtocol)
}

func TestListEmptyLocation(t *testing.T) {
	client := newTestDavClient("", "")
	urls, err := client.List("   ")
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestFetch(t *testing.T) {
	payload := []byte("fake image bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(payload)
	}))
	defer srv.Close()

	client := newTestDavClient("", "")
	data, contentType, err := client.Fetch(srv.URL + "/pics/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.Equal(t, "image/jpeg", contentType)
}

func TestFetchMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestDavClient("", "")
	_, _, err := client.Fetch(srv.URL + "/pics/a.jpg")
	assert.ErrorIs(t, err, models.ErrRemoteProtocol)
}
