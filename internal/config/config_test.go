package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{
		Backend:       BackendSheets,
		SpreadsheetID: "sheet123",
		Identity:      IdentityConfig{Verifier: VerifierTokenInfo},
	}
	ApplyDefaults(cfg)
	return cfg
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "tracker_config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	return configPath
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, Validate(validConfig()))
}

func TestValidate_MissingBackend(t *testing.T) {
	cfg := validConfig()
	cfg.Backend = ""

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_UnknownBackend(t *testing.T) {
	cfg := validConfig()
	cfg.Backend = "mysql"

	assert.Error(t, Validate(cfg))
}

func TestValidate_SheetsRequiresSpreadsheetID(t *testing.T) {
	cfg := validConfig()
	cfg.SpreadsheetID = ""

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "SpreadsheetID")
}

func TestValidate_XLSXRequiresWorkbookPath(t *testing.T) {
	cfg := validConfig()
	cfg.Backend = BackendXLSX
	cfg.SpreadsheetID = ""

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "WorkbookPath")

	cfg.WorkbookPath = "tracker.xlsx"
	assert.NoError(t, Validate(cfg))
}

func TestValidate_ServiceAccountRequiresKeyFile(t *testing.T) {
	cfg := validConfig()
	cfg.Credentials = CredentialsServiceAccount

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ServiceAccountKeyFile")
}

func TestValidate_PostgresRequiresDatabaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.UserDirectory = DirectoryPostgres

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DatabaseURL")
}

func TestValidate_IDTokenRequiresAudience(t *testing.T) {
	cfg := validConfig()
	cfg.Identity.Verifier = VerifierIDToken

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Audience")

	cfg.Identity.Audience = "client-id.apps.googleusercontent.com"
	assert.NoError(t, Validate(cfg))
}

func TestValidate_InvalidTokenInfoURL(t *testing.T) {
	cfg := validConfig()
	cfg.Identity.TokenInfoURL = "not a url"

	assert.Error(t, Validate(cfg))
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{Backend: BackendSheets}
	ApplyDefaults(cfg)

	assert.Equal(t, CredentialsOAuth, cfg.Credentials)
	assert.Equal(t, DirectoryTable, cfg.UserDirectory)
	assert.Equal(t, "Attendance_Responses", cfg.MasterAttendanceTable)
	assert.Equal(t, "Supervision_Responses", cfg.MasterSupervisionTable)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, time.Minute, cfg.Server.SweepInterval)
	assert.Equal(t, VerifierTokenInfo, cfg.Identity.Verifier)

	memory := &Config{Backend: BackendMemory}
	ApplyDefaults(memory)
	assert.Equal(t, "", memory.Credentials)
}

func TestLoadFromPath_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
backend: sheets
spreadsheetID: "sheet123"
credentials: serviceAccount
serviceAccountKeyFile: key.json
masterAttendanceTable: "All Attendance"
server:
  addr: "127.0.0.1:9000"
  allowedOrigins:
    - "https://volunteers.example.org"
  sweepInterval: 30s
cache:
  maxValueBytes: 50000
identity:
  verifier: idtoken
  audience: "client-id"
`)

	cfg, err := LoadFromPath(configPath)
	require.NoError(t, err)

	assert.Equal(t, BackendSheets, cfg.Backend)
	assert.Equal(t, "sheet123", cfg.SpreadsheetID)
	assert.Equal(t, CredentialsServiceAccount, cfg.Credentials)
	assert.Equal(t, "key.json", cfg.ServiceAccountKeyFile)
	assert.Equal(t, "All Attendance", cfg.MasterAttendanceTable)
	assert.Equal(t, "Supervision_Responses", cfg.MasterSupervisionTable)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, []string{"https://volunteers.example.org"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.Server.SweepInterval)
	assert.Equal(t, 50000, cfg.Cache.MaxValueBytes)
	assert.Equal(t, "client-id", cfg.Identity.Audience)
}

func TestLoadFromPath_MinimalConfig(t *testing.T) {
	configPath := writeConfig(t, "backend: memory\n")

	cfg, err := LoadFromPath(configPath)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadFromPath_MissingRequiredField(t *testing.T) {
	configPath := writeConfig(t, "backend: sheets\n")

	_, err := LoadFromPath(configPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadFromPath_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "backend: [unterminated\n")

	_, err := LoadFromPath(configPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadFromPath_FileNotFound(t *testing.T) {
	_, err := LoadFromPath("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadWithEnv_CurrentDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tracker_config.test.yaml"), []byte("backend: memory\n"), 0644))
	origWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origWD) })

	cfg, err := LoadWithEnv("test")
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Backend)

	_, err = LoadWithEnv("prod")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "tracker_config.prod.yaml not found")
}
