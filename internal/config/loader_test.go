package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"

	"github.com/vnykmshr/skitter/internal/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	if loader == nil {
		t.Fatal("Expected NewLoader() to return non-nil Loader")
	}
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"skitter.json", FormatJSON},
		{"CONFIG.JSON", FormatJSON},
		{"skitter.yaml", FormatYAML},
		{"skitter.yml", FormatYAML},
		{"skitter.conf", FormatYAML},
	}

	for _, tt := range tests {
		if got := FormatFor(tt.path); got != tt.want {
			t.Errorf("FormatFor(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestLoadFromFile_YAML(t *testing.T) {
	configPath := writeFile(t, t.TempDir(), "skitter.yaml", `
root_url: http://example.com
thread_pool_size: 4
max_connections: 20
allowed_server_errors_percentage: 25
connect_timeout_ms: 1000
read_timeout_ms: 2000
request_timeout_ms: 3000
handshake_timeout_ms: 4000
user_agent: TestAgent/1.0
rate: 5.5
max_duration: 2m
allow_private_ips: true
output_file: report.json
markdown_file: report.md
metrics_file: crawl.prom
verbose: true
`)

	config, err := NewLoader().LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() returned error: %v", err)
	}

	want := domain.Config{
		RootURL:                       "http://example.com",
		ThreadPoolSize:                4,
		MaxConnections:                20,
		AllowedServerErrorsPercentage: 25,
		ConnectTimeoutMs:              1000,
		ReadTimeoutMs:                 2000,
		RequestTimeoutMs:              3000,
		HandshakeTimeoutMs:            4000,
		UserAgent:                     "TestAgent/1.0",
		Rate:                          5.5,
		MaxDuration:                   "2m",
		AllowPrivateIPs:               true,
		OutputFile:                    "report.json",
		MarkdownFile:                  "report.md",
		MetricsFile:                   "crawl.prom",
		Verbose:                       true,
	}
	if *config != want {
		t.Errorf("LoadFromFile() = %+v, want %+v", *config, want)
	}
}

func TestLoadFromFile_JSON(t *testing.T) {
	configPath := writeFile(t, t.TempDir(), "skitter.json", `{
		"root_url": "http://example.com",
		"max_connections": 3,
		"user_agent": "JSONAgent/1.0"
	}`)

	config, err := NewLoader().LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() returned error: %v", err)
	}

	if config.RootURL != "http://example.com" {
		t.Errorf("Expected RootURL 'http://example.com', got '%s'", config.RootURL)
	}
	if config.MaxConnections != 3 {
		t.Errorf("Expected MaxConnections 3, got %d", config.MaxConnections)
	}
	if config.UserAgent != "JSONAgent/1.0" {
		t.Errorf("Expected UserAgent 'JSONAgent/1.0', got '%s'", config.UserAgent)
	}
}

func TestLoadFromFile_MissingKeysKeepDefaults(t *testing.T) {
	configPath := writeFile(t, t.TempDir(), "partial.yaml", "root_url: http://example.com\n")

	config, err := NewLoader().LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() returned error: %v", err)
	}

	defaults := domain.DefaultConfig()
	if config.AllowedServerErrorsPercentage != defaults.AllowedServerErrorsPercentage {
		t.Errorf("Expected default allowed percentage %d, got %d",
			defaults.AllowedServerErrorsPercentage, config.AllowedServerErrorsPercentage)
	}
	if config.RequestTimeoutMs != defaults.RequestTimeoutMs {
		t.Errorf("Expected default request timeout %d, got %d", defaults.RequestTimeoutMs, config.RequestTimeoutMs)
	}
}

func TestLoadFromFile_ExplicitZeroAllowedPercentage(t *testing.T) {
	configPath := writeFile(t, t.TempDir(), "strict.yaml", "root_url: http://example.com\nallowed_server_errors_percentage: 0\n")

	config, err := NewLoader().LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() returned error: %v", err)
	}
	config = NewLoader().MergeWithDefaults(config)

	if config.AllowedServerErrorsPercentage != 0 {
		t.Errorf("Expected explicit 0 to survive loading, got %d", config.AllowedServerErrorsPercentage)
	}
}

func TestLoadFromFile_NonExistentFile(t *testing.T) {
	_, err := NewLoader().LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Expected error for non-existent file, got nil")
	}
}

func TestLoadFromFile_InvalidContent(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"invalid JSON", "invalid.json", `{"root_url": "http://example.com", "max_connections": "many"}`},
		{"invalid YAML", "invalid.yaml", "root_url: [unterminated\n"},
		{"wrong YAML type", "typed.yaml", "max_connections: lots\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeFile(t, t.TempDir(), tt.file, tt.content)
			if _, err := NewLoader().LoadFromFile(configPath); err == nil {
				t.Errorf("Expected error for %s, got nil", tt.name)
			}
		})
	}
}

func TestSaveToFile_Success(t *testing.T) {
	for _, name := range []string{"saved.yaml", "saved.json"} {
		t.Run(name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), name)

			config := domain.DefaultConfig()
			config.RootURL = "http://test.com"
			config.MaxConnections = 15
			config.AllowedServerErrorsPercentage = 0
			config.Rate = 7.5
			config.MaxDuration = "10m"

			loader := NewLoader()
			if err := loader.SaveToFile(&config, configPath); err != nil {
				t.Fatalf("SaveToFile() returned error: %v", err)
			}

			info, err := os.Stat(configPath)
			if err != nil {
				t.Fatalf("SaveToFile() did not create file: %v", err)
			}
			if info.Mode().Perm() != 0o600 {
				t.Errorf("Expected permissions 0600, got %v", info.Mode().Perm())
			}

			loaded, err := loader.LoadFromFile(configPath)
			if err != nil {
				t.Fatalf("Failed to load saved config: %v", err)
			}
			if *loaded != config {
				t.Errorf("Saved config mismatch: expected %+v, got %+v", config, *loaded)
			}
		})
	}
}

func TestMergeWithDefaults_EmptyConfig(t *testing.T) {
	merged := NewLoader().MergeWithDefaults(&domain.Config{})
	defaults := domain.DefaultConfig()

	if merged.MaxConnections != defaults.MaxConnections {
		t.Errorf("Expected merged MaxConnections %d, got %d", defaults.MaxConnections, merged.MaxConnections)
	}
	if merged.ConnectTimeoutMs != defaults.ConnectTimeoutMs {
		t.Errorf("Expected merged ConnectTimeoutMs %d, got %d", defaults.ConnectTimeoutMs, merged.ConnectTimeoutMs)
	}
	if merged.HandshakeTimeoutMs != defaults.HandshakeTimeoutMs {
		t.Errorf("Expected merged HandshakeTimeoutMs %d, got %d", defaults.HandshakeTimeoutMs, merged.HandshakeTimeoutMs)
	}
	if merged.UserAgent != defaults.UserAgent {
		t.Errorf("Expected merged UserAgent '%s', got '%s'", defaults.UserAgent, merged.UserAgent)
	}
	if merged.AllowedServerErrorsPercentage != 0 {
		t.Errorf("Expected allowed percentage to stay 0, got %d", merged.AllowedServerErrorsPercentage)
	}
}

func TestMergeWithDefaults_PartialConfig(t *testing.T) {
	config := &domain.Config{
		RootURL:        "http://custom.com",
		MaxConnections: 20,
		ReadTimeoutMs:  1234,
	}

	merged := NewLoader().MergeWithDefaults(config)

	if merged.RootURL != "http://custom.com" {
		t.Errorf("Expected merged RootURL 'http://custom.com', got '%s'", merged.RootURL)
	}
	if merged.MaxConnections != 20 {
		t.Errorf("Expected merged MaxConnections 20, got %d", merged.MaxConnections)
	}
	if merged.ReadTimeoutMs != 1234 {
		t.Errorf("Expected merged ReadTimeoutMs 1234, got %d", merged.ReadTimeoutMs)
	}

	defaults := domain.DefaultConfig()
	if merged.RequestTimeoutMs != defaults.RequestTimeoutMs {
		t.Errorf("Expected merged RequestTimeoutMs %d (default), got %d", defaults.RequestTimeoutMs, merged.RequestTimeoutMs)
	}
}

func TestLoadFromFile_EnvVarSubstitution(t *testing.T) {
	t.Setenv("TEST_ROOT_URL", "http://env-test.com")
	t.Setenv("TEST_AGENT", "EnvAgent/2.0")

	configPath := writeFile(t, t.TempDir(), "env.yaml", `
root_url: ${TEST_ROOT_URL}
user_agent: "${TEST_AGENT}"
`)

	config, err := NewLoader().LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() returned error: %v", err)
	}

	if config.RootURL != "http://env-test.com" {
		t.Errorf("Expected RootURL 'http://env-test.com', got '%s'", config.RootURL)
	}
	if config.UserAgent != "EnvAgent/2.0" {
		t.Errorf("Expected UserAgent 'EnvAgent/2.0', got '%s'", config.UserAgent)
	}
}

func TestLoadFromFile_EnvVarWithDefault(t *testing.T) {
	configPath := writeFile(t, t.TempDir(), "default.json", `{
		"root_url": "${MISSING_VAR:-http://default.com}"
	}`)

	config, err := NewLoader().LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() returned error: %v", err)
	}

	if config.RootURL != "http://default.com" {
		t.Errorf("Expected RootURL 'http://default.com' (default), got '%s'", config.RootURL)
	}
}

func TestLoadFromFile_MissingRequiredEnvVar(t *testing.T) {
	configPath := writeFile(t, t.TempDir(), "missing.yaml", "root_url: ${REQUIRED_VAR_THAT_DOES_NOT_EXIST}\n")

	_, err := NewLoader().LoadFromFile(configPath)
	if !errors.Is(err, ErrMissingEnvVar) {
		t.Errorf("Expected ErrMissingEnvVar, got %v", err)
	}
}

func TestSubstituteEnvVars_MultipleVars(t *testing.T) {
	t.Setenv("VAR_A", "valueA")
	t.Setenv("VAR_B", "valueB")

	input := `{"a": "${VAR_A}", "b": "${VAR_B}"}`
	result, err := substituteEnvVars(input)
	if err != nil {
		t.Fatalf("substituteEnvVars() returned error: %v", err)
	}

	expected := `{"a": "valueA", "b": "valueB"}`
	if result != expected {
		t.Errorf("Expected '%s', got '%s'", expected, result)
	}
}

func TestSubstituteEnvVars_EmptyDefault(t *testing.T) {
	result, err := substituteEnvVars(`agent: "${UNSET_AGENT_VAR:-}"`)
	if err != nil {
		t.Fatalf("substituteEnvVars() returned error: %v", err)
	}
	if result != `agent: ""` {
		t.Errorf("Expected empty substitution, got '%s'", result)
	}
}

func TestSubstituteEnvVars_NoVars(t *testing.T) {
	input := `root_url: http://example.com`
	result, err := substituteEnvVars(input)
	if err != nil {
		t.Fatalf("substituteEnvVars() returned error: %v", err)
	}

	if result != input {
		t.Errorf("Expected unchanged input, got '%s'", result)
	}
}

func withConfigHome(t *testing.T, dir string) {
	t.Helper()
	original := xdg.ConfigHome
	xdg.ConfigHome = dir
	t.Cleanup(func() { xdg.ConfigHome = original })
}

func TestFindConfigFile_Explicit(t *testing.T) {
	path := writeFile(t, t.TempDir(), "custom.yaml", "root_url: http://example.com\n")

	got, err := FindConfigFile(path)
	if err != nil {
		t.Fatalf("FindConfigFile() error = %v", err)
	}
	if got != path {
		t.Errorf("Expected %s, got %s", path, got)
	}

	if _, err := FindConfigFile(filepath.Join(t.TempDir(), "absent.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected ErrNotExist for a missing explicit file, got %v", err)
	}
}

func TestFindConfigFile_WorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	withConfigHome(t, t.TempDir())

	writeFile(t, dir, "skitter.json", `{}`)
	writeFile(t, dir, "skitter.yaml", "{}\n")

	got, err := FindConfigFile("")
	if err != nil {
		t.Fatalf("FindConfigFile() error = %v", err)
	}
	if got != "skitter.yaml" {
		t.Errorf("Expected skitter.yaml to win, got %s", got)
	}
}

func TestFindConfigFile_UserConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	home := t.TempDir()
	withConfigHome(t, home)

	want := writeFile(t, home, filepath.Join("skitter", "config.yaml"), "{}\n")

	got, err := FindConfigFile("")
	if err != nil {
		t.Fatalf("FindConfigFile() error = %v", err)
	}
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestFindConfigFile_NotFound(t *testing.T) {
	t.Chdir(t.TempDir())
	withConfigHome(t, t.TempDir())

	if _, err := FindConfigFile(""); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}
}

func TestSampleConfig_RoundTrip(t *testing.T) {
	t.Setenv("SKITTER_ROOT_URL", "http://sample.example")
	path := filepath.Join(t.TempDir(), "skitter.yaml")

	loader := NewLoader()
	if err := loader.SaveToFile(SampleConfig(), path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded, err := loader.LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if loaded.RootURL != "http://sample.example" {
		t.Errorf("Expected substituted root URL, got %q", loaded.RootURL)
	}
	if loaded.MaxConnections != domain.DefaultMaxConnections {
		t.Errorf("Expected default max connections, got %d", loaded.MaxConnections)
	}
}
