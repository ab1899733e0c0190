package config

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

// chdirTemp runs the test in an empty directory so no stray .env is read.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

// TestDefaults checks every default value.
func TestDefaults(t *testing.T) {
	c := Default()
	if c.Server.Port != 8080 || c.Server.AllowRemoteSources || c.Storage.Type != "memory" || c.Render.Supersample != 2 || c.Render.JPEGQuality != 95 {
		t.Errorf("defaults = %+v", c)
	}
}

// TestLoadFileAndEnv checks that env overrides the file and defaults fill gaps.
func TestLoadFileAndEnv(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "memoria.yaml")
	err := os.WriteFile(path, []byte(`
server:
  port: 9000
storage:
  type: filesystem
render:
  jpegQuality: 300
`), 0644)
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvPort, "9100")
	t.Setenv(EnvStoragePath, "/srv/assets")
	t.Setenv(EnvRemote, "true")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Server.Port != 9100 {
		t.Errorf("port = %d, want env override 9100", c.Server.Port)
	}
	if c.Storage.Type != "filesystem" || c.Storage.Path != "/srv/assets" {
		t.Errorf("storage = %+v", c.Storage)
	}
	if c.Render.JPEGQuality != 95 {
		t.Errorf("out-of-range quality not defaulted: %d", c.Render.JPEGQuality)
	}
	if !c.Server.AllowRemoteSources {
		t.Error("remote sources not enabled from env")
	}
}

// TestLoadDotEnv checks that a .env file in the working directory is read.
func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("STORAGE_TYPE=filesystem\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvStorageType, "")
	os.Unsetenv(EnvStorageType)

	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if c.Storage.Type != "filesystem" || c.Storage.Path != "./data/assets" {
		t.Errorf("storage = %+v", c.Storage)
	}
}

// TestLoadErrors checks a bad env port and a bad file.
func TestLoadErrors(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv(EnvPort, "eighty")
	if _, err := Load(""); err == nil {
		t.Error("bad port accepted")
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing file accepted")
	}
	t.Setenv(EnvPort, "")
	t.Setenv(EnvRemote, "sometimes")
	if _, err := Load(""); err == nil {
		t.Error("bad remote-sources flag accepted")
	}
}

// TestSampleParses checks that the init sample is valid YAML for Config.
func TestSampleParses(t *testing.T) {
	var c Config
	if err := yaml.Unmarshal([]byte(Sample()), &c); err != nil {
		t.Fatal(err)
	}
	if c.Server.Port != 8080 {
		t.Errorf("sample port = %d", c.Server.Port)
	}
}
