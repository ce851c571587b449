package config

import (
	"os"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := func() (*Config, error) {
		wd, _ := os.Getwd()
		tmp := t.TempDir()
		os.Chdir(tmp)
		defer os.Chdir(wd)
		return Load("")
	}()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Server.Port != 8484 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if cfg.Database.Path != "./data/retriever.db" {
		t.Fatalf("db path = %q", cfg.Database.Path)
	}
	if cfg.Jobs.CompletionCron != "* * * * *" {
		t.Fatalf("completion cron = %q", cfg.Jobs.CompletionCron)
	}
	if cfg.Jobs.PreventOverlap {
		t.Fatal("overlap guard must default off")
	}
	if cfg.Hunt.SearchAllSources {
		t.Fatal("search-all must default off")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("RETRIEVER_SERVER_PORT", "9000")

	wd, _ := os.Getwd()
	os.Chdir(t.TempDir())
	defer os.Chdir(wd)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Fatalf("port = %d, want env override", cfg.Server.Port)
	}
}

func TestAddress(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8080}
	if got := s.Address(); got != "127.0.0.1:8080" {
		t.Fatalf("Address = %q", got)
	}
}
