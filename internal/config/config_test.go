package config

import "testing"

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 0},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingAddrsIsNotAnError(t *testing.T) {
	// Missing store addresses must load fine and surface as a runtime
	// not-configured state, never as a boot failure.
	cfg := Config{HTTP: HTTPConfig{Port: 8080}}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Configured() {
		t.Error("expected Configured()=false without addrs")
	}
}

func TestValidate_BadAlpha(t *testing.T) {
	cfg := Config{
		HTTP:   HTTPConfig{Port: 8080},
		Search: SearchConfig{DefaultAlpha: 1.5},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for alpha outside [0,1]")
	}
}

func TestValidate_EmbeddingKeyWithoutModel(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 8080},
		Embedding: EmbeddingConfig{APIKey: "test-key"},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for api key without model")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 15 {
		t.Errorf("expected WriteTimeoutSec=15, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Index.HNSWM != 32 {
		t.Errorf("expected HNSWM=32, got %d", cfg.Index.HNSWM)
	}
	if cfg.Index.HNSWEFConstruct != 400 {
		t.Errorf("expected HNSWEFConstruct=400, got %d", cfg.Index.HNSWEFConstruct)
	}
	if cfg.Storage.KeyPrefix != "ticketsearch:" {
		t.Errorf("expected KeyPrefix='ticketsearch:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Search.DefaultLimit != 10 || cfg.Search.MaxLimit != 100 {
		t.Errorf("unexpected search limits: %+v", cfg.Search)
	}
	if cfg.Search.DefaultAlpha != 0.5 {
		t.Errorf("expected DefaultAlpha=0.5, got %f", cfg.Search.DefaultAlpha)
	}
	if cfg.Embedding.Dimensions != 1536 {
		t.Errorf("expected Dimensions=1536, got %d", cfg.Embedding.Dimensions)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Index:   IndexConfig{HNSWM: 16, HNSWEFConstruct: 200},
		Storage: StorageConfig{KeyPrefix: "tracker:"},
		Search:  SearchConfig{DefaultLimit: 5, MaxLimit: 50, DefaultAlpha: 0.7},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 || cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("timeouts overridden: %+v", cfg.HTTP)
	}
	if cfg.Index.HNSWM != 16 || cfg.Index.HNSWEFConstruct != 200 {
		t.Errorf("index overridden: %+v", cfg.Index)
	}
	if cfg.Storage.KeyPrefix != "tracker:" {
		t.Errorf("prefix overridden: %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Search.DefaultAlpha != 0.7 {
		t.Errorf("alpha overridden: %f", cfg.Search.DefaultAlpha)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TS_TEST_PASSWORD", "s3cret")

	in := []byte("password: ${TS_TEST_PASSWORD}\nport: ${TS_TEST_PORT:-8080}\n")
	out := string(expandEnvVars(in))

	want := "password: s3cret\nport: 8080\n"
	if out != want {
		t.Errorf("expanded = %q, want %q", out, want)
	}
}
