package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"pictureCatalog/internal/utils"
)

// App wires the catalog components together. Config is immutable after
// startup; every component gets what it needs at construction time.
type App struct {
	Config       *Config
	Store        *CatalogStore
	Dav          *DavClient
	Engine       *SyncEngine
	ResolveCache *utils.ResolveCache
}

func main() {
	config, err := LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	InitializeLogger(config)

	store, err := OpenCatalogStore(config.DBPath)
	if err != nil {
		log.Fatal("Failed to open catalog:", err)
	}
	defer store.Close()

	dav := NewDavClient(config)

	app := &App{
		Config:       config,
		Store:        store,
		Dav:          dav,
		Engine:       NewSyncEngine(store, dav),
		ResolveCache: utils.NewResolveCache(time.Minute),
	}

	if config.SeedPath != "" {
		seeds, err := LoadSeedFile(config.SeedPath)
		if err != nil {
			log.Fatal("Failed to load seed file:", err)
		}
		if err := app.SeedPersons(seeds); err != nil {
			log.Fatal("Failed to seed persons:", err)
		}
	}

	if config.SyncInterval > 0 {
		go app.runSyncScheduler(time.Duration(config.SyncInterval) * time.Minute)
	}

	r := mux.NewRouter()

	r.Use(app.RecoveryMiddleware)
	r.Use(app.LoggingMiddleware)
	r.Use(app.RateLimitMiddleware())

	r.HandleFunc("/healthz", app.handleHealth).Methods("GET")
	r.HandleFunc("/api/pic", app.handleGetPic).Methods("GET")
	r.HandleFunc("/api/persons", app.handleListPersons).Methods("GET")
	r.HandleFunc("/api/persons", app.handleUpsertPerson).Methods("POST")
	r.HandleFunc("/api/sync", app.handleSyncAll).Methods("POST")
	r.HandleFunc("/api/sync/{name}", app.handleSyncPerson).Methods("POST")

	fmt.Printf("Server starting on :%s\n", config.Port)
	log.Fatal(http.ListenAndServe(":"+config.Port, r))
}

// runSyncScheduler drives periodic full sync runs. Each run's per-person
// failures are already logged and collected by the engine; a failing person
// never stops the ticker.
func (app *App) runSyncScheduler(interval time.Duration) {
	AppLogger.WithField("interval", interval.String()).Info("Background sync scheduler started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	app.Engine.SyncAll()
	app.ResolveCache.Clear()
	for range ticker.C {
		app.Engine.SyncAll()
		app.ResolveCache.Clear()
	}
}
