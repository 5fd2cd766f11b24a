package main

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"pictureCatalog/internal/models"
	"pictureCatalog/internal/utils"
)

// SyncRunResponse reports the outcome of an on-demand full sync run.
type SyncRunResponse struct {
	Synced   int      `json:"synced"`
	Failed   int      `json:"failed"`
	Failures []string `json:"failures,omitempty"`
}

func (app *App) handleSyncAll(w http.ResponseWriter, r *http.Request) {
	names, err := app.Store.ListEnabledNames()
	if err != nil {
		AppLogger.WithError(err).Error("Failed to enumerate persons for sync")
		utils.DatabaseError(w)
		return
	}

	failures := app.Engine.SyncAll()
	app.ResolveCache.Clear()

	resp := SyncRunResponse{
		Synced: len(names) - len(failures),
		Failed: len(failures),
	}
	for _, failure := range failures {
		resp.Failures = append(resp.Failures, failure.Error())
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

func (app *App) handleSyncPerson(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	err := app.Engine.SyncPerson(name)
	switch {
	case err == nil:
		app.ResolveCache.InvalidatePerson(name)
		utils.RespondWithSuccess(w, nil, "Sync completed")
	case errors.Is(err, models.ErrPersonNotFound):
		utils.NotFoundError(w, "Person")
	case errors.Is(err, models.ErrRemoteUnavailable), errors.Is(err, models.ErrRemoteProtocol):
		AppLogger.WithError(err).WithField("person", name).Error("Remote listing failed")
		utils.BadGatewayError(w, "Remote listing failed, catalog left unchanged")
	default:
		AppLogger.WithError(err).WithField("person", name).Error("Person sync failed")
		utils.InternalServerError(w, "Sync failed")
	}
}
