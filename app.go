package main

import (
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// App carries the process-wide state: configuration, database handle and
// logger. Handlers are methods on App so nothing reaches for globals.
type App struct {
	cfg *Config
	db  *gorm.DB
	log zerolog.Logger
}

func newApp(cfg *Config, db *gorm.DB, log zerolog.Logger) *App {
	return &App{cfg: cfg, db: db, log: log}
}
