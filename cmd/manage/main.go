package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/blackmichael/timepheus/internal/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var dbPath string
	flag.StringVar(&dbPath, "db", envOrDefault("DATABASE_PATH", "timepheus.db"), "Path to the SQLite database file")
	flag.Parse()

	if flag.NArg() == 0 {
		return fmt.Errorf("usage: manage [-db path] <command>\ncommands:\n  init    create the database schema")
	}

	switch cmd := flag.Arg(0); cmd {
	case "init":
		return initDatabase(dbPath)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func initDatabase(path string) error {
	fmt.Println("Initializing database...")
	store, err := sqlite.NewStore(path)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitSchema(context.Background()); err != nil {
		return err
	}
	fmt.Println("Database initialized at", path)
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
