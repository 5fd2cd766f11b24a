package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"pictureCatalog/internal/models"
)

// CatalogStore owns the persisted catalog: person rows, their image rows and
// the per-person sampling stats. The sync engine is the only writer of image
// and stats rows; person rows are also written by the seed step.
type CatalogStore struct {
	DB *sql.DB
}

// OpenCatalogStore opens (creating if needed) the SQLite catalog at the
// given path and ensures the schema exists.
func OpenCatalogStore(path string) (*CatalogStore, error) {
	dsn := path + "?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %v", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping catalog database: %v", err)
	}

	store := &CatalogStore{DB: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database handle.
func (s *CatalogStore) Close() error {
	return s.DB.Close()
}

func (s *CatalogStore) initSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS person (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			alias_json TEXT NOT NULL DEFAULT '[]',
			dav_url TEXT NOT NULL,
			enabled INTEGER NOT NULL DEFAULT 1
		);

		CREATE TABLE IF NOT EXISTS image (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			person_id INTEGER NOT NULL,
			url TEXT NOT NULL,
			ext TEXT,
			active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (person_id, url),
			FOREIGN KEY (person_id) REFERENCES person(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_image_person_active_id
		ON image (person_id, active, id);

		CREATE TABLE IF NOT EXISTS person_stats (
			person_id INTEGER PRIMARY KEY,
			img_count INTEGER NOT NULL DEFAULT 0,
			min_id INTEGER,
			max_id INTEGER,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (person_id) REFERENCES person(id) ON DELETE CASCADE
		);
	`
	if _, err := s.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to initialize catalog schema: %v", err)
	}
	return nil
}

// UpsertPerson inserts a person or overwrites an existing one's aliases and
// location, forcing it enabled. Unrelated rows are untouched, so the seed
// step stays idempotent.
func (s *CatalogStore) UpsertPerson(name, davURL string, aliases models.AliasSet) error {
	if aliases == nil {
		aliases = models.AliasSet{}
	}
	aliasJSON, err := json.Marshal(aliases)
	if err != nil {
		return fmt.Errorf("failed to encode aliases for %s: %v", name, err)
	}

	_, err = s.DB.Exec(`
		INSERT INTO person (name, alias_json, dav_url, enabled)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(name) DO UPDATE SET
			alias_json = excluded.alias_json,
			dav_url = excluded.dav_url,
			enabled = 1
	`, name, string(aliasJSON), davURL)
	return wrapStoreErr("upsert person", err)
}

// GetPersonByName returns the person with the exact display name, enabled or
// not. Absence is models.ErrPersonNotFound.
func (s *CatalogStore) GetPersonByName(name string) (models.Person, error) {
	row := s.DB.QueryRow(`
		SELECT id, name, alias_json, dav_url, enabled FROM person WHERE name = ?
	`, name)

	person, err := scanPerson(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Person{}, fmt.Errorf("%w: %s", models.ErrPersonNotFound, name)
	}
	if err != nil {
		return models.Person{}, fmt.Errorf("failed to query person %s: %v", name, err)
	}
	return person, nil
}

// ResolveByNameOrAlias maps trimmed free text to an enabled person, matching
// the display name first and each enabled person's alias set second. The
// second return value is false when nothing matched; that is an expected
// state, not an error.
func (s *CatalogStore) ResolveByNameOrAlias(text string) (models.Person, bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Person{}, false, nil
	}

	row := s.DB.QueryRow(`
		SELECT id, name, alias_json, dav_url, enabled
		FROM person WHERE name = ? AND enabled = 1
	`, text)
	person, err := scanPerson(row.Scan)
	if err == nil {
		return person, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Person{}, false, fmt.Errorf("failed to resolve name %q: %v", text, err)
	}

	rows, err := s.DB.Query(`
		SELECT id, name, alias_json, dav_url, enabled FROM person WHERE enabled = 1
	`)
	if err != nil {
		return models.Person{}, false, fmt.Errorf("failed to scan aliases for %q: %v", text, err)
	}
	defer rows.Close()

	for rows.Next() {
		person, err := scanPerson(rows.Scan)
		if err != nil {
			return models.Person{}, false, fmt.Errorf("failed to scan person row: %v", err)
		}
		if person.Aliases.Has(text) {
			return person, true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return models.Person{}, false, fmt.Errorf("failed to iterate persons: %v", err)
	}
	return models.Person{}, false, nil
}

// ListEnabledNames returns the names of every enabled person, ordered by id.
func (s *CatalogStore) ListEnabledNames() ([]string, error) {
	rows, err := s.DB.Query(`SELECT name FROM person WHERE enabled = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list enabled persons: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan person name: %v", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate person names: %v", err)
	}
	return names, nil
}

// ListPersons returns every person row, ordered by id.
func (s *CatalogStore) ListPersons() ([]models.Person, error) {
	rows, err := s.DB.Query(`SELECT id, name, alias_json, dav_url, enabled FROM person ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list persons: %v", err)
	}
	defer rows.Close()

	var persons []models.Person
	for rows.Next() {
		person, err := scanPerson(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person row: %v", err)
		}
		persons = append(persons, person)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate persons: %v", err)
	}
	return persons, nil
}

// GetStats returns the stats row for a person. The second return value is
// false when no stats row exists yet (the person has never been synced).
func (s *CatalogStore) GetStats(personID int64) (models.PersonStats, bool, error) {
	var (
		stats        models.PersonStats
		minID, maxID sql.NullInt64
	)
	err := s.DB.QueryRow(`
		SELECT person_id, img_count, min_id, max_id, updated_at
		FROM person_stats WHERE person_id = ?
	`, personID).Scan(&stats.PersonID, &stats.ImgCount, &minID, &maxID, &stats.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PersonStats{}, false, nil
	}
	if err != nil {
		return models.PersonStats{}, false, fmt.Errorf("failed to query person stats: %v", err)
	}
	stats.MinID = minID.Int64
	stats.MaxID = maxID.Int64
	return stats, true, nil
}

// SampleActiveImage draws a uniformly random active image for the person.
// The count read and the offset scan run inside one transaction, so the
// sample always matches the rows actually active in that snapshot. An empty
// or unknown person yields ok=false, not an error. The offset scan is
// O(count), a deliberate trade-off at this catalog's scale.
func (s *CatalogStore) SampleActiveImage(personID int64) (models.Image, bool, error) {
	tx, err := s.DB.Begin()
	if err != nil {
		return models.Image{}, false, fmt.Errorf("failed to begin sample transaction: %v", err)
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRow(`SELECT img_count FROM person_stats WHERE person_id = ?`, personID).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Image{}, false, nil
	}
	if err != nil {
		return models.Image{}, false, fmt.Errorf("failed to read image count: %v", err)
	}
	if count <= 0 {
		return models.Image{}, false, nil
	}

	k := rand.Intn(count)
	var (
		image  models.Image
		active int
	)
	err = tx.QueryRow(`
		SELECT id, person_id, url, ext, active, created_at
		FROM image WHERE person_id = ? AND active = 1
		ORDER BY id LIMIT 1 OFFSET ?
	`, personID, k).Scan(&image.ID, &image.PersonID, &image.URL, &image.Ext, &active, &image.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Image{}, false, nil
	}
	if err != nil {
		return models.Image{}, false, fmt.Errorf("failed to sample image: %v", err)
	}
	image.Active = active != 0

	if err := tx.Commit(); err != nil {
		return models.Image{}, false, fmt.Errorf("failed to commit sample transaction: %v", err)
	}
	return image, true, nil
}

// The three statements below form the per-person reconciliation unit. They
// only ever run together inside one transaction (see SyncEngine).

func deactivateImages(tx *sql.Tx, personID int64) error {
	_, err := tx.Exec(`UPDATE image SET active = 0 WHERE person_id = ?`, personID)
	return wrapStoreErr("deactivate images", err)
}

func upsertImage(tx *sql.Tx, personID int64, url, ext string) error {
	_, err := tx.Exec(`
		INSERT INTO image (person_id, url, ext, active)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(person_id, url) DO UPDATE SET active = 1, ext = excluded.ext
	`, personID, url, ext)
	return wrapStoreErr("upsert image", err)
}

func refreshStats(tx *sql.Tx, personID int64) error {
	_, err := tx.Exec(`
		INSERT INTO person_stats (person_id, img_count, min_id, max_id)
		SELECT ?, COUNT(*), MIN(id), MAX(id)
		FROM image WHERE person_id = ? AND active = 1
		ON CONFLICT(person_id) DO UPDATE SET
			img_count = excluded.img_count,
			min_id = excluded.min_id,
			max_id = excluded.max_id,
			updated_at = CURRENT_TIMESTAMP
	`, personID, personID)
	return wrapStoreErr("refresh person stats", err)
}

func scanPerson(scan func(dest ...interface{}) error) (models.Person, error) {
	var (
		person    models.Person
		aliasJSON string
		enabled   int
	)
	if err := scan(&person.ID, &person.Name, &aliasJSON, &person.DavURL, &enabled); err != nil {
		return models.Person{}, err
	}
	person.Enabled = enabled != 0

	// alias_json only crosses into the domain as an AliasSet
	if err := json.Unmarshal([]byte(aliasJSON), &person.Aliases); err != nil {
		return models.Person{}, fmt.Errorf("corrupt alias_json for person %s: %v", person.Name, err)
	}
	return person, nil
}

// wrapStoreErr maps constraint violations onto ErrStoreIntegrity and gives
// everything else uniform context.
func wrapStoreErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%w: %s: %v", models.ErrStoreIntegrity, op, err)
	}
	return fmt.Errorf("failed to %s: %v", op, err)
}
