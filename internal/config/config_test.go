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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zalando/go-keyring"
)

// isolate points the config file and .env lookup into a temp dir and mocks the keychain.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(EnvConfigPath, filepath.Join(dir, "config.yaml"))
	t.Setenv(EnvDotEnv, filepath.Join(dir, ".env"))
	t.Setenv(EnvRemotePassword, "")
	keyring.MockInit()
	return dir
}

func TestEnvOverridesRemoteDSN(t *testing.T) {
	isolate(t)
	t.Setenv(EnvRemoteDSN, "postgres://adnate@db.test:5432/adnate")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got, want := cfg.Remote.DSN, "postgres://adnate@db.test:5432/adnate"; got != want {
		t.Fatalf("Remote.DSN = %q, want %q", got, want)
	}
	if env, ok := EnvOverrideFor("remote.dsn"); !ok || env != EnvRemoteDSN {
		t.Fatalf("EnvOverrideFor(remote.dsn) = %q, %v", env, ok)
	}
}

func TestEnvOverridesTelemetry(t *testing.T) {
	isolate(t)
	t.Setenv(EnvTelemetryOptIn, "true")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.General.TelemetryOptIn {
		t.Fatalf("General.TelemetryOptIn expected true from env override")
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "debug"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "/tmp/adn.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "/tmp/adn.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestMergeKeepsDefaultsForZeroFields(t *testing.T) {
	dst := Defaults()
	var src AppConfig
	src.Export.Format = "SVG"
	mergeInto(&dst, &src)
	if dst.Export.Format != "svg" || dst.Export.Scale != 1 {
		t.Fatalf("export merge mismatch: %#v", dst.Export)
	}
	if dst.Editor.UndoMaxPerDesign != 200 || dst.Remote.SaveBurst != 4 {
		t.Fatalf("zero fields should keep defaults: %#v %#v", dst.Editor, dst.Remote)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "/var/tmp/adn.log")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "/var/tmp/adn.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestSaveAndLoadRoundTripWithKeychain(t *testing.T) {
	isolate(t)
	cfg := Defaults()
	cfg.Remote.Owner = "user-1"
	cfg.AddRecent("/a.adn.json")
	cfg.AddRecent("/b.adn.json")
	cfg.AddRecent("/a.adn.json")
	if err := Save(cfg, "s3cret"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, pw, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if pw != "s3cret" {
		t.Fatalf("password from keychain = %q", pw)
	}
	if got.Remote.Owner != "user-1" {
		t.Fatalf("owner = %q", got.Remote.Owner)
	}
	if len(got.General.RecentFiles) != 2 || got.General.RecentFiles[0] != "/a.adn.json" {
		t.Fatalf("recent files = %v", got.General.RecentFiles)
	}
	if err := ForgetPassword(); err != nil {
		t.Fatalf("ForgetPassword: %v", err)
	}
	if err := ForgetPassword(); err != nil {
		t.Fatalf("second ForgetPassword should ignore missing entry: %v", err)
	}
	if _, pw, _ := Load(); pw != "" {
		t.Fatalf("password should be gone, got %q", pw)
	}
}

func TestDotEnvProvidesOverrides(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("ADN_REMOTE_OWNER=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvRemoteOwner, "")
	_ = os.Unsetenv(EnvRemoteOwner)
	t.Cleanup(func() { _ = os.Unsetenv(EnvRemoteOwner) })
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Remote.Owner != "from-dotenv" {
		t.Fatalf("owner = %q, want from-dotenv", cfg.Remote.Owner)
	}
}

func TestEffectiveTimeoutFallsBack(t *testing.T) {
	if got := (RemoteConfig{}).EffectiveTimeout(); got != 15*time.Second {
		t.Fatalf("EffectiveTimeout = %v", got)
	}
	if got := (RemoteConfig{TimeoutMs: 250}).EffectiveTimeout(); got != 250*time.Millisecond {
		t.Fatalf("EffectiveTimeout = %v", got)
	}
}
