package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

func main() {
	// Auto-load ./.env if present (no external dependency) before reading vars
	loadDotEnv()

	cfg, err := loadConfig(os.Getenv("ECONO_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := setupLogger(cfg.Server.Mode == "debug")

	db, err := openDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	if err := autoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	// Support a lightweight migrate command: `./econoplan migrate`
	// It runs AutoMigrate and exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		log.Info().Msg("migration completed")
		return
	}

	if err := os.MkdirAll(cfg.Upload.BaseDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Upload.BaseDir).Msg("create upload dir")
	}

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())

	app := newApp(cfg, db, log)
	app.setupRoutes(r)

	log.Info().Str("addr", cfg.Server.Addr).Msg("server listening")
	if err := r.Run(cfg.Server.Addr); err != nil {
		log.Fatal().Err(err).Msg("run server")
	}
}

// loadDotEnv loads key=value pairs from a local .env file into the environment
// without overwriting variables that are already set. Lines starting with # are ignored.
func loadDotEnv() {
	path := ".env"
	if _, err := os.Stat(path); err != nil {
		return // no .env file
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// split on first '='
		if eq := strings.IndexByte(line, '='); eq > 0 {
			key := strings.TrimSpace(line[:eq])
			val := strings.TrimSpace(line[eq+1:])
			if _, exists := os.LookupEnv(key); !exists {
				_ = os.Setenv(key, val)
			}
		}
	}
}
