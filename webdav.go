package main

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pictureCatalog/internal/models"
)

// propfindBody asks the server for the minimal set of properties a listing
// needs. Depth is restricted to 1, so the enumeration never recurses.
const propfindBody = `<?xml version="1.0" encoding="utf-8"?>
<D:propfind xmlns:D="DAV:">
  <D:prop>
    <D:displayname/><D:getcontenttype/><D:resourcetype/>
  </D:prop>
</D:propfind>`

// maxImageBytes caps how much of a remote picture Fetch will read.
const maxImageBytes = 32 << 20

// DavClient speaks the WebDAV listing protocol. Credentials, when present,
// are attached to every outbound request as basic auth. The client is
// read-only: its only side effects are the network calls themselves.
type DavClient struct {
	client   *http.Client
	username string
	password string
}

// NewDavClient builds a client from the immutable process configuration.
func NewDavClient(config *Config) *DavClient {
	return &DavClient{
		client:   &http.Client{Timeout: time.Duration(config.Timeout) * time.Second},
		username: config.DavUser,
		password: config.DavPass,
	}
}

func (c *DavClient) do(req *http.Request) (*http.Response, error) {
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrRemoteUnavailable, err)
	}
	return resp, nil
}

// List enumerates the pictures at a remote location and returns their
// normalized absolute URLs. A location whose extension is on the allow-list
// is treated as a single file and probed for existence; anything else is
// treated as a directory and listed one level deep. Listing failures are
// surfaced as ErrRemoteUnavailable / ErrRemoteProtocol so the caller can
// tell an empty directory apart from a failed enumeration.
func (c *DavClient) List(location string) ([]string, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, nil
	}
	if IsImageURL(location) {
		return c.listSingleFile(location)
	}
	return c.listDirectory(location)
}

func (c *DavClient) listSingleFile(location string) ([]string, error) {
	encoded := EncodeURL(location)

	resp, err := c.probe(http.MethodHead, encoded, "")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusMethodNotAllowed {
		// Some servers refuse HEAD; fall back to a one-byte ranged fetch
		resp, err = c.probe(http.MethodGet, encoded, "bytes=0-0")
		if err != nil {
			return nil, err
		}
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: existence probe returned %d for %s",
			models.ErrRemoteProtocol, resp.StatusCode, encoded)
	}
	return []string{encoded}, nil
}

// probe issues a lightweight request and fully drains the response so the
// underlying connection can be reused.
func (c *DavClient) probe(method, encodedURL, rangeHeader string) (*http.Response, error) {
	req, err := http.NewRequest(method, encodedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrRemoteProtocol, err)
	}
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp, nil
}

func (c *DavClient) listDirectory(location string) ([]string, error) {
	encoded := EncodeURL(location)

	req, err := http.NewRequest("PROPFIND", encoded, strings.NewReader(propfindBody))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrRemoteProtocol, err)
	}
	req.Header.Set("Depth", "1")
	req.Header.Set("Content-Type", "application/xml; charset=utf-8")

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: PROPFIND returned %d for %s",
			models.ErrRemoteProtocol, resp.StatusCode, encoded)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PROPFIND response: %v", models.ErrRemoteUnavailable, err)
	}

	var status multiStatus
	if err := xml.Unmarshal(raw, &status); err != nil {
		return nil, fmt.Errorf("%w: unparseable multistatus response: %v", models.ErrRemoteProtocol, err)
	}

	self := strings.TrimRight(encoded, "/")
	var urls []string
	for _, entry := range status.Responses {
		href := strings.TrimSpace(entry.Href)
		if href == "" {
			continue
		}
		abs := ResolveHref(location, href)
		if strings.TrimRight(EncodeURL(abs), "/") == self {
			// The listing includes the directory itself; skip it
			continue
		}
		if !IsImageURL(abs) {
			continue
		}
		urls = append(urls, EncodeURL(abs))
	}
	return urls, nil
}

// Fetch downloads a picture through the authenticated client and returns its
// bytes and content type. Used by the lookup front end to build the base64
// payload handed to chat adapters.
func (c *DavClient) Fetch(rawURL string) ([]byte, string, error) {
	req, err := http.NewRequest(http.MethodGet, EncodeURL(rawURL), nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", models.ErrRemoteProtocol, err)
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, "", fmt.Errorf("%w: fetch returned %d for %s",
			models.ErrRemoteProtocol, resp.StatusCode, rawURL)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: reading image body: %v", models.ErrRemoteUnavailable, err)
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("image at %s exceeds %d byte limit", rawURL, maxImageBytes)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

type multiStatus struct {
	XMLName   xml.Name      `xml:"DAV: multistatus"`
	Responses []davResponse `xml:"DAV: response"`
}

type davResponse struct {
	Href string `xml:"DAV: href"`
}
