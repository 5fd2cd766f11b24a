package main

import (
	"encoding/json"
	"net/http"

	"pictureCatalog/internal/models"
	"pictureCatalog/internal/utils"
)

// UpsertPersonRequest mirrors the seed-file entry shape, so the API and the
// seed step share one validation path.
type UpsertPersonRequest struct {
	Name    string   `json:"name"`
	DavURL  string   `json:"dav_url"`
	Aliases []string `json:"aliases"`
}

// PersonSummary is the operator view of one person: the row itself plus its
// current sampling stats (zero-valued until the first sync).
type PersonSummary struct {
	models.Person
	ImgCount  int    `json:"img_count"`
	LastSync  string `json:"last_sync,omitempty"`
	HasSynced bool   `json:"has_synced"`
}

func (app *App) handleListPersons(w http.ResponseWriter, r *http.Request) {
	persons, err := app.Store.ListPersons()
	if err != nil {
		AppLogger.WithError(err).Error("Failed to list persons")
		utils.DatabaseError(w)
		return
	}

	summaries := make([]PersonSummary, 0, len(persons))
	for _, person := range persons {
		summary := PersonSummary{Person: person}
		stats, ok, err := app.Store.GetStats(person.ID)
		if err != nil {
			AppLogger.WithError(err).WithField("person", person.Name).Error("Failed to read person stats")
			utils.DatabaseError(w)
			return
		}
		if ok {
			summary.ImgCount = stats.ImgCount
			summary.LastSync = stats.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z")
			summary.HasSynced = true
		}
		summaries = append(summaries, summary)
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	utils.RespondWithJSON(w, http.StatusOK, summaries)
}

func (app *App) handleUpsertPerson(w http.ResponseWriter, r *http.Request) {
	var req UpsertPersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		AppLogger.WithError(err).Error("Failed to decode upsert person request")
		utils.BadRequestError(w, "Invalid request body")
		return
	}

	seed := models.SeedPerson{Name: req.Name, DavURL: req.DavURL, Aliases: req.Aliases}
	if err := ValidateSeedPerson(seed); err != nil {
		utils.ValidationError(w, err.Error())
		return
	}

	if err := app.Store.UpsertPerson(seed.Name, seed.DavURL, models.NewAliasSet(seed.Aliases...)); err != nil {
		AppLogger.WithError(err).WithField("person", seed.Name).Error("Failed to upsert person")
		utils.DatabaseError(w)
		return
	}
	app.ResolveCache.InvalidatePerson(seed.Name)

	utils.RespondWithSuccess(w, nil, "Person saved")
}
