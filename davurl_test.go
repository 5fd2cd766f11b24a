package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain url untouched",
			in:   "http://host:5005/nsy/a/b.jpg",
			want: "http://host:5005/nsy/a/b.jpg",
		},
		{
			name: "spaces encoded",
			in:   "http://host/nsy/2021-09-25 20-10-img_1513.jpg",
			want: "http://host/nsy/2021-09-25%2020-10-img_1513.jpg",
		},
		{
			name: "existing escapes preserved",
			in:   "http://host/nsy/2021-04-18%2021-15-img_1305.jpg",
			want: "http://host/nsy/2021-04-18%2021-15-img_1305.jpg",
		},
		{
			name: "query and fragment untouched",
			in:   "http://host/a b/c.jpg?x=1 2#frag ment",
			want: "http://host/a%20b/c.jpg?x=1 2#frag ment",
		},
		{
			name: "separators kept",
			in:   "http://host/a:b@c/d.jpg",
			want: "http://host/a:b@c/d.jpg",
		},
		{
			name: "no path",
			in:   "http://host",
			want: "http://host",
		},
		{
			name: "bare path without scheme",
			in:   "/nsy/a b.jpg",
			want: "/nsy/a%20b.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeURL(tt.in))
		})
	}
}

func TestEncodeURLIdempotent(t *testing.T) {
	inputs := []string{
		"http://host/nsy/2021-09-25 20-10-img_1513.jpg",
		"http://host/ünïcode dir/ファイル.png",
		"http://host/already%20encoded/x.jpg",
		"/relative dir/pic.webp",
	}
	for _, in := range inputs {
		once := EncodeURL(in)
		twice := EncodeURL(once)
		assert.Equal(t, once, twice, "double encoding for %q", in)
	}
}

func TestResolveHref(t *testing.T) {
	base := "http://host:5005/nsy/dir/"

	assert.Equal(t, "http://other/x.jpg", ResolveHref(base, "http://other/x.jpg"))
	assert.Equal(t, "https://other/x.jpg", ResolveHref(base, "https://other/x.jpg"))
	assert.Equal(t, "http://host:5005/nsy/dir/a.jpg", ResolveHref(base, "/nsy/dir/a.jpg"))
	assert.Equal(t, "http://host:5005/nsy/dir/a.jpg", ResolveHref(base, "a.jpg"))
	// Joining onto a base without a trailing slash still treats it as a directory
	assert.Equal(t, "http://host:5005/nsy/dir/a.jpg", ResolveHref("http://host:5005/nsy/dir", "a.jpg"))
}

func TestExtOf(t *testing.T) {
	assert.Equal(t, ".jpg", ExtOf("http://host/a/b.jpg"))
	assert.Equal(t, ".png", ExtOf("http://host/a/B.PNG"))
	assert.Equal(t, ".jpeg", ExtOf("http://host/a/b.JPEG?x=1"))
	assert.Equal(t, "", ExtOf("http://host/a/b"))
	assert.Equal(t, "", ExtOf("http://host/a/dir/"))
}

func TestIsImageURL(t *testing.T) {
	assert.True(t, IsImageURL("http://host/a.jpg"))
	assert.True(t, IsImageURL("http://host/a.WEBP"))
	assert.True(t, IsImageURL("http://host/a.Gif"))
	assert.False(t, IsImageURL("http://host/notes.txt"))
	assert.False(t, IsImageURL("http://host/subdir/"))
	assert.False(t, IsImageURL("http://host/archive.jpg.zip"))
}
