package main

import (
	"encoding/base64"
	"net/http"
	"strings"

	"pictureCatalog/internal/models"
	"pictureCatalog/internal/utils"
)

// PicResponse is the payload handed back to chat adapters: the sampled
// image, downloaded through the authenticated client and base64-encoded so
// the caller never needs the WebDAV credentials.
type PicResponse struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Ext         string `json:"ext"`
	ContentType string `json:"content_type,omitempty"`
	Base64      string `json:"base64"`
}

// Resolve maps free text (display name or alias) to a person, trimming
// surrounding whitespace first. Results, including negative ones, pass
// through the short-lived resolve cache. No fuzzy matching.
func (app *App) Resolve(text string) (models.Person, bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Person{}, false, nil
	}

	if person, found, cached := app.ResolveCache.Get(text); cached {
		return person, found, nil
	}

	person, found, err := app.Store.ResolveByNameOrAlias(text)
	if err != nil {
		return models.Person{}, false, err
	}
	app.ResolveCache.Set(text, person, found)
	return person, found, nil
}

func (app *App) handleGetPic(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if strings.TrimSpace(name) == "" {
		utils.BadRequestError(w, "name query parameter is required")
		return
	}

	person, found, err := app.Resolve(name)
	if err != nil {
		AppLogger.WithError(err).WithField("name", name).Error("Name resolution failed")
		utils.DatabaseError(w)
		return
	}
	if !found {
		utils.NotFoundError(w, "Person")
		return
	}

	image, ok, err := app.Store.SampleActiveImage(person.ID)
	if err != nil {
		AppLogger.WithError(err).WithField("person", person.Name).Error("Image sampling failed")
		utils.DatabaseError(w)
		return
	}
	if !ok {
		// Empty catalog for this person is an expected state
		utils.NotFoundError(w, "Image")
		return
	}

	data, contentType, err := app.Dav.Fetch(image.URL)
	if err != nil {
		AppLogger.WithError(err).WithFields(map[string]interface{}{
			"person": person.Name,
			"url":    image.URL,
		}).Error("Image fetch failed")
		utils.BadGatewayError(w, "Failed to fetch image from remote storage")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, PicResponse{
		Name:        person.Name,
		URL:         image.URL,
		Ext:         image.Ext,
		ContentType: contentType,
		Base64:      base64.StdEncoding.EncodeToString(data),
	})
}

func (app *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := app.Store.DB.Ping(); err != nil {
		utils.RespondWithError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
