package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Defaults.BuyerPersona != "Diplomatic" {
		t.Errorf("buyer persona = %s, want Diplomatic", cfg.Defaults.BuyerPersona)
	}
	if cfg.Defaults.SellerPersona != "Analytical" {
		t.Errorf("seller persona = %s, want Analytical", cfg.Defaults.SellerPersona)
	}
	if cfg.Defaults.MaxRounds != 15 {
		t.Errorf("max rounds = %d, want 15", cfg.Defaults.MaxRounds)
	}
	if cfg.Defaults.MinRounds != 4 {
		t.Errorf("min rounds = %d, want 4", cfg.Defaults.MinRounds)
	}
	if cfg.Defaults.MaxDuration != 3*time.Minute {
		t.Errorf("max duration = %s, want 3m", cfg.Defaults.MaxDuration)
	}
	if _, ok := cfg.Providers["ollama"]; !ok {
		t.Error("ollama provider missing from defaults")
	}
}

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Defaults.MaxRounds != 15 {
		t.Errorf("max rounds = %d, want default 15", cfg.Defaults.MaxRounds)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `defaults:
  buyer_persona: Aggressive
  max_rounds: 10
products:
  - name: Saffron
    category: Spices
    quantity: 5
    quality_grade: A
    origin: Pampore
    base_market_price: 95000
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Defaults.BuyerPersona != "Aggressive" {
		t.Errorf("buyer persona = %s, want Aggressive", cfg.Defaults.BuyerPersona)
	}
	if cfg.Defaults.MaxRounds != 10 {
		t.Errorf("max rounds = %d, want 10", cfg.Defaults.MaxRounds)
	}
	// Untouched fields keep their defaults.
	if cfg.Defaults.SellerPersona != "Analytical" {
		t.Errorf("seller persona = %s, want default Analytical", cfg.Defaults.SellerPersona)
	}
	if len(cfg.Products) != 1 || cfg.Products[0].Name != "Saffron" {
		t.Errorf("products = %+v, want Saffron", cfg.Products)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := Default()
	cfg.Defaults.MaxRounds = 8
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.Defaults.MaxRounds != 8 {
		t.Errorf("max rounds = %d, want 8", loaded.Defaults.MaxRounds)
	}
}

func TestCreateRegistry(t *testing.T) {
	cfg := Default()
	registry, err := cfg.CreateRegistry()
	if err != nil {
		t.Fatalf("CreateRegistry failed: %v", err)
	}

	if _, err := registry.Get("ollama"); err != nil {
		t.Errorf("ollama not registered: %v", err)
	}
	if _, err := registry.Get("mock"); err != nil {
		t.Errorf("mock not registered: %v", err)
	}
}

func TestCreateRegistryDefaultModel(t *testing.T) {
	cfg := Default()
	cfg.Defaults.Model = "mistral"
	p := cfg.Providers["ollama"]
	p.Model = ""
	cfg.Providers["ollama"] = p

	registry, err := cfg.CreateRegistry()
	if err != nil {
		t.Fatalf("CreateRegistry failed: %v", err)
	}

	prov, err := registry.Get("ollama")
	if err != nil {
		t.Fatalf("ollama not registered: %v", err)
	}
	if prov.DisplayName() != "Ollama (mistral)" {
		t.Errorf("display name = %q, want the configured default model", prov.DisplayName())
	}
}

func TestCreateRegistrySkipsDisabled(t *testing.T) {
	cfg := Default()
	p := cfg.Providers["ollama"]
	p.Enabled = false
	cfg.Providers["ollama"] = p

	registry, err := cfg.CreateRegistry()
	if err != nil {
		t.Fatalf("CreateRegistry failed: %v", err)
	}
	if _, err := registry.Get("ollama"); err == nil {
		t.Error("disabled provider should not be registered")
	}
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	data := `# comment
OLLAMA_HOST=http://localhost:11500
QUOTED="hello world"
INLINE=value # trailing comment

MALFORMED
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	env, err := LoadEnv(path)
	if err != nil {
		t.Fatalf("LoadEnv failed: %v", err)
	}
	if env["OLLAMA_HOST"] != "http://localhost:11500" {
		t.Errorf("OLLAMA_HOST = %q", env["OLLAMA_HOST"])
	}
	if env["QUOTED"] != "hello world" {
		t.Errorf("QUOTED = %q", env["QUOTED"])
	}
	if env["INLINE"] != "value" {
		t.Errorf("INLINE = %q", env["INLINE"])
	}
	if _, ok := env["MALFORMED"]; ok {
		t.Error("malformed line should be skipped")
	}
}
