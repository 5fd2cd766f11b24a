package main

import (
	"database/sql"
	"fmt"
	"sync"
)

// SyncEngine reconciles remote listings into the catalog. It is the only
// writer of image and person_stats rows. Syncs of different persons may run
// concurrently; two syncs of the same person are serialized through a
// per-person lock so their deactivate/reactivate passes cannot interleave.
type SyncEngine struct {
	store *CatalogStore
	dav   *DavClient

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// SyncFailure records one person's failed sync inside a SyncAll run.
type SyncFailure struct {
	Name string `json:"name"`
	Err  error  `json:"-"`
}

func (f SyncFailure) Error() string {
	return fmt.Sprintf("sync %s: %v", f.Name, f.Err)
}

// NewSyncEngine wires the engine to its store and listing client.
func NewSyncEngine(store *CatalogStore, dav *DavClient) *SyncEngine {
	return &SyncEngine{
		store: store,
		dav:   dav,
		locks: make(map[string]*sync.Mutex),
	}
}

func (e *SyncEngine) personLock(name string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[name] = lock
	}
	return lock
}

// SyncPerson refreshes the catalog for one person by exact name.
// A disabled person is a successful no-op. The remote listing happens before
// any write: if it fails, the error propagates and the person's prior rows
// and stats are left completely untouched. The deactivate → reactivate →
// stats sequence then runs as a single transaction, so a crash between steps
// can never leave active flags and img_count out of sync.
func (e *SyncEngine) SyncPerson(name string) error {
	lock := e.personLock(name)
	lock.Lock()
	defer lock.Unlock()

	person, err := e.store.GetPersonByName(name)
	if err != nil {
		return err
	}
	if !person.Enabled {
		AppLogger.WithField("person", name).Debug("Skipping sync for disabled person")
		return nil
	}

	urls, err := e.dav.List(person.DavURL)
	if err != nil {
		return fmt.Errorf("listing %s: %w", person.DavURL, err)
	}

	err = e.store.WithTransaction(func(tx *sql.Tx) error {
		if err := deactivateImages(tx, person.ID); err != nil {
			return err
		}
		for _, url := range urls {
			if err := upsertImage(tx, person.ID, url, ExtOf(url)); err != nil {
				return err
			}
		}
		return refreshStats(tx, person.ID)
	})
	if err != nil {
		return err
	}

	AppLogger.WithFields(map[string]interface{}{
		"person": name,
		"listed": len(urls),
	}).Info("Person synced")
	return nil
}

// SyncAll syncs every enabled person in turn. A failure of one person is
// recorded and does not stop the remaining ones; the run itself never fails.
func (e *SyncEngine) SyncAll() []SyncFailure {
	names, err := e.store.ListEnabledNames()
	if err != nil {
		AppLogger.WithError(err).Error("Failed to enumerate persons for sync")
		return []SyncFailure{{Name: "*", Err: err}}
	}

	var failures []SyncFailure
	for _, name := range names {
		if err := e.SyncPerson(name); err != nil {
			AppLogger.WithError(err).WithField("person", name).Error("Person sync failed")
			failures = append(failures, SyncFailure{Name: name, Err: err})
		}
	}

	AppLogger.WithFields(map[string]interface{}{
		"persons": len(names),
		"failed":  len(failures),
	}).Info("Sync run finished")
	return failures
}
