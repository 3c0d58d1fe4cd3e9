package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/abelbrown/facetline/internal/store"
)

// dataDir returns ~/.facetline/, creating it if needed.
func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("failed to get home directory: %v", err)
	}
	dir := filepath.Join(home, ".facetline")
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("failed to create data directory: %v", err)
	}
	return dir
}

// dbPath returns the path to catalog.db.
func dbPath() string {
	return filepath.Join(dataDir(), "catalog.db")
}

// openDB opens the store or fatals.
func openDB() *store.Store {
	st, err := store.Open(dbPath())
	if err != nil {
		log.Fatalf("failed to open catalog: %v", err)
	}
	return st
}
