package models

import (
	"encoding/json"
	"sort"
	"time"
)

// Person represents a named bucket of remote pictures. The sync path never
// deletes persons, it only flips Enabled off.
type Person struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Aliases AliasSet `json:"aliases"`
	DavURL  string   `json:"dav_url"`
	Enabled bool     `json:"enabled"`
}

// Image represents one catalog-tracked picture belonging to a person.
// Inactive rows are retained for history, never removed by sync.
type Image struct {
	ID        int64     `json:"id"`
	PersonID  int64     `json:"person_id"`
	URL       string    `json:"url"`
	Ext       string    `json:"ext"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// PersonStats is the denormalized per-person counter row that makes random
// sampling cheap. MinID/MaxID are zero when the person has no active images.
type PersonStats struct {
	PersonID  int64     `json:"person_id"`
	ImgCount  int       `json:"img_count"`
	MinID     int64     `json:"min_id"`
	MaxID     int64     `json:"max_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SeedPerson is one entry of the startup seed list.
type SeedPerson struct {
	Name    string   `json:"name"`
	DavURL  string   `json:"dav_url"`
	Aliases []string `json:"aliases"`
}

// AliasSet is the set of trigger words for a person. Membership is exact,
// case-sensitive string equality. The set is serialized as a JSON array of
// strings only at the storage boundary.
type AliasSet map[string]struct{}

// NewAliasSet builds a set from a list of alias strings, dropping duplicates
// and empty entries.
func NewAliasSet(aliases ...string) AliasSet {
	set := make(AliasSet, len(aliases))
	for _, a := range aliases {
		if a == "" {
			continue
		}
		set[a] = struct{}{}
	}
	return set
}

// Has reports whether the exact string is a member of the set.
func (s AliasSet) Has(alias string) bool {
	_, ok := s[alias]
	return ok
}

// List returns the aliases as a sorted slice.
func (s AliasSet) List() []string {
	out := make([]string, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted JSON array of strings.
func (s AliasSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}

// UnmarshalJSON decodes a JSON array of strings into the set.
func (s *AliasSet) UnmarshalJSON(data []byte) error {
	var aliases []string
	if err := json.Unmarshal(data, &aliases); err != nil {
		return err
	}
	*s = NewAliasSet(aliases...)
	return nil
}
