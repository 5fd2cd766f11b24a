package main

import (
	"encoding/json"
	"fmt"
	"os"

	"pictureCatalog/internal/models"
)

// LoadSeedFile reads a JSON file of (name, dav_url, aliases) triples.
func LoadSeedFile(path string) ([]models.SeedPerson, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %v", path, err)
	}

	var seeds []models.SeedPerson
	if err := json.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %v", path, err)
	}
	return seeds, nil
}

// ValidateSeedPerson checks a single seed entry before it reaches the store
func ValidateSeedPerson(seed models.SeedPerson) error {
	v := NewValidator()
	v.ValidateRequired(seed.Name, "name").
		ValidateLength(seed.Name, "name", 1, 255).
		ValidateRequired(seed.DavURL, "dav_url").
		ValidateLength(seed.DavURL, "dav_url", 1, 2048).
		ValidateHTTPURL(seed.DavURL, "dav_url")
	for _, alias := range seed.Aliases {
		v.ValidateLength(alias, "alias", 1, 255)
	}
	if v.HasErrors() {
		return &ValidationError{Message: v.ErrorString()}
	}
	return nil
}

// SeedPersons idempotently upserts the seed list: an existing person's
// aliases and location are overwritten and it is re-enabled; rows not in the
// list are left alone. The sync engine itself never creates persons.
func (app *App) SeedPersons(seeds []models.SeedPerson) error {
	for _, seed := range seeds {
		if err := ValidateSeedPerson(seed); err != nil {
			return fmt.Errorf("invalid seed entry %q: %v", seed.Name, err)
		}
		if err := app.Store.UpsertPerson(seed.Name, seed.DavURL, models.NewAliasSet(seed.Aliases...)); err != nil {
			return err
		}
		app.ResolveCache.InvalidatePerson(seed.Name)
	}

	if len(seeds) > 0 {
		AppLogger.WithField("count", len(seeds)).Info("Seed persons upserted")
	}
	return nil
}
