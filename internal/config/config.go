/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables (and a .env file next to the working directory) are read-only
// overrides applied at load time. The remote store password never touches the file; it
// lives in the OS keychain.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type GeneralConfig struct {
	TelemetryOptIn  bool     `yaml:"telemetry_opt_in"`
	DefaultPreset   string   `yaml:"default_preset"`
	AutosaveSeconds int      `yaml:"autosave_seconds"`
	RecentFiles     []string `yaml:"recent_files,omitempty"`
	MetricsFile     string   `yaml:"metrics_file"`
}

type EditorConfig struct {
	UndoMaxBytes     int64 `yaml:"undo_max_bytes"`
	UndoMaxPerDesign int   `yaml:"undo_max_per_design"`
	UndoCoalesceMs   int   `yaml:"undo_coalesce_ms"`
	// SnapThreshold enables smart guides while dragging, in canvas pixels. 0 is off.
	SnapThreshold float64 `yaml:"snap_threshold"`
}

type RemoteConfig struct {
	DSN            string  `yaml:"dsn"`
	Owner          string  `yaml:"owner"`
	TimeoutMs      int     `yaml:"timeout_ms"`
	SavesPerSecond float64 `yaml:"saves_per_second"`
	SaveBurst      int     `yaml:"save_burst"`
	// Password is not stored on disk; it lives in the OS keychain.
}

type ExportConfig struct {
	Format string  `yaml:"format"` // png | svg | pdf
	Scale  float64 `yaml:"scale"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Editor        EditorConfig  `yaml:"editor"`
	Remote        RemoteConfig  `yaml:"remote"`
	Export        ExportConfig  `yaml:"export"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false, DefaultPreset: "", AutosaveSeconds: 30},
		Editor:        EditorConfig{UndoMaxBytes: 32 << 20, UndoMaxPerDesign: 200, UndoCoalesceMs: 400},
		Remote:        RemoteConfig{TimeoutMs: 15000, SavesPerSecond: 2, SaveBurst: 4},
		Export:        ExportConfig{Format: "png", Scale: 1},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath     = "ADN_CONFIG"
	EnvDotEnv         = "ADN_DOTENV"
	EnvRemoteDSN      = "ADN_REMOTE_DSN"
	EnvRemoteOwner    = "ADN_REMOTE_OWNER"
	EnvRemoteTimeout  = "ADN_REMOTE_TIMEOUT_MS"
	EnvRemotePassword = "ADN_REMOTE_PASSWORD"
	EnvTelemetryOptIn = "ADN_TELEMETRY_OPT_IN"
	EnvDefaultPreset  = "ADN_DEFAULT_PRESET"
	EnvExportFormat   = "ADN_EXPORT_FORMAT"
	EnvMetricsFile    = "ADN_METRICS_FILE"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "ADN_LOG_LEVEL"
	EnvLogFormat = "ADN_LOG_FORMAT"
	EnvLogSource = "ADN_LOG_SOURCE"
	EnvLogFile   = "ADN_LOG_FILE"
)

// ConfigPath returns the per-user config file path. ADN_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "AdNate")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "AdNate")
	default:
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "adnate")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "adnate")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, loads a .env file and merges
// environment overrides. The remote store password comes from ADN_REMOTE_PASSWORD or the
// keychain and is returned separately.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	if err := loadDotEnv(); err != nil {
		return cfg, "", err
	}
	applyEnvOverrides(&cfg)
	if pw := os.Getenv(EnvRemotePassword); pw != "" {
		return cfg, pw, nil
	}
	pw, _ := tokenStore.Get(keyringService, keyringPassword)
	return cfg, pw, nil
}

// Save writes the user config YAML and persists the password into the OS keychain (if non-empty).
func Save(cfg AppConfig, password string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if password != "" {
		if err := tokenStore.Set(keyringService, keyringPassword, password); err != nil {
			return err
		}
	}
	return nil
}

// loadDotEnv reads ADN_DOTENV or ./.env. Variables already present in the process environment
// are not overwritten.
func loadDotEnv() error {
	p := strings.TrimSpace(os.Getenv(EnvDotEnv))
	if p == "" {
		p = ".env"
	}
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return godotenv.Load(p)
}

// AddRecent puts path at the front of the recent files list, keeping at most 10 entries.
func (c *AppConfig) AddRecent(path string) {
	out := []string{path}
	for _, p := range c.General.RecentFiles {
		if p != path && len(out) < 10 {
			out = append(out, p)
		}
	}
	c.General.RecentFiles = out
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	if src.General.DefaultPreset != "" {
		dst.General.DefaultPreset = src.General.DefaultPreset
	}
	if src.General.AutosaveSeconds != 0 {
		dst.General.AutosaveSeconds = src.General.AutosaveSeconds
	}
	if len(src.General.RecentFiles) > 0 {
		dst.General.RecentFiles = append([]string(nil), src.General.RecentFiles...)
	}
	if src.General.MetricsFile != "" {
		dst.General.MetricsFile = src.General.MetricsFile
	}
	if src.Editor.UndoMaxBytes > 0 {
		dst.Editor.UndoMaxBytes = src.Editor.UndoMaxBytes
	}
	if src.Editor.UndoMaxPerDesign > 0 {
		dst.Editor.UndoMaxPerDesign = src.Editor.UndoMaxPerDesign
	}
	if src.Editor.UndoCoalesceMs > 0 {
		dst.Editor.UndoCoalesceMs = src.Editor.UndoCoalesceMs
	}
	if src.Editor.SnapThreshold > 0 {
		dst.Editor.SnapThreshold = src.Editor.SnapThreshold
	}
	if src.Remote.DSN != "" {
		dst.Remote.DSN = src.Remote.DSN
	}
	if src.Remote.Owner != "" {
		dst.Remote.Owner = src.Remote.Owner
	}
	if src.Remote.TimeoutMs != 0 {
		dst.Remote.TimeoutMs = src.Remote.TimeoutMs
	}
	if src.Remote.SavesPerSecond > 0 {
		dst.Remote.SavesPerSecond = src.Remote.SavesPerSecond
	}
	if src.Remote.SaveBurst > 0 {
		dst.Remote.SaveBurst = src.Remote.SaveBurst
	}
	if f := strings.ToLower(strings.TrimSpace(src.Export.Format)); f != "" {
		dst.Export.Format = f
	}
	if src.Export.Scale > 0 {
		dst.Export.Scale = src.Export.Scale
	}
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvRemoteDSN)); v != "" {
		cfg.Remote.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRemoteOwner)); v != "" {
		cfg.Remote.Owner = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRemoteTimeout)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Remote.TimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvDefaultPreset)); v != "" {
		cfg.General.DefaultPreset = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvMetricsFile)); v != "" {
		cfg.General.MetricsFile = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvExportFormat)); v != "" {
		cfg.Export.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	names := map[string]string{
		"remote.dsn":               EnvRemoteDSN,
		"remote.owner":             EnvRemoteOwner,
		"remote.timeout_ms":        EnvRemoteTimeout,
		"general.telemetry_opt_in": EnvTelemetryOptIn,
		"general.default_preset":   EnvDefaultPreset,
		"general.metrics_file":     EnvMetricsFile,
		"export.format":            EnvExportFormat,
		"logging.level":            EnvLogLevel,
		"logging.format":           EnvLogFormat,
		"logging.source":           EnvLogSource,
		"logging.file":             EnvLogFile,
	}
	env, ok := names[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}

// EffectiveTimeout returns the remote store timeout, falling back to the default.
func (r RemoteConfig) EffectiveTimeout() time.Duration {
	if r.TimeoutMs <= 0 {
		return time.Duration(Defaults().Remote.TimeoutMs) * time.Millisecond
	}
	return time.Duration(r.TimeoutMs) * time.Millisecond
}

// CoalesceWindow returns the undo coalescing interval.
func (e EditorConfig) CoalesceWindow() time.Duration {
	return time.Duration(e.UndoCoalesceMs) * time.Millisecond
}
