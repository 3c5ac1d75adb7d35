/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a crash report plus an autosave of the
// design that was open.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"adnate/internal/design"
	applog "adnate/internal/log"
	"adnate/internal/storage"
	"adnate/internal/telemetry"
	"adnate/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Session describes the open design. Current is called from the panicking
// goroutine, so it must not depend on state the panic may have left locked.
type Session struct {
	// Path is the design file, empty for a design never saved.
	Path    string
	Current func() design.Design
}

var (
	mu      sync.Mutex
	current *Session
)

// Track registers the session Recover autosaves. Passing nil clears it.
func Track(s *Session) {
	mu.Lock()
	current = s
	mu.Unlock()
}

func tracked() *Session {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// Recover captures a panic, logs it with the stack, writes a crash report
// and autosaves the tracked design, then exits with code 2.
//
// Usage: defer crash.Recover()
func Recover() {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	s := tracked()
	reportPath, err := writeReport(s, r, stack)
	if err != nil {
		l.Error("write crash report failed", slog.Any("err", err))
	}
	if path, err := autosave(s); err != nil {
		l.Error("crash autosave failed", slog.Any("err", err))
	} else if path != "" {
		l.Info("crash autosave written", slog.String("path", path))
		_, _ = fmt.Fprintf(os.Stderr, "Your design was autosaved to: %s\n", path)
	}

	_, _ = fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath)
	_, _ = fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

// autosave snapshots the tracked design. A panic inside Current is
// swallowed; the crash report has already been written.
func autosave(s *Session) (path string, err error) {
	if s == nil || s.Current == nil {
		return "", nil
	}
	defer func() {
		if r := recover(); r != nil {
			path, err = "", fmt.Errorf("snapshot design: %v", r)
		}
	}()
	return storage.AutosaveCrash(s.Path, s.Current(), time.Now())
}

func reportDir(s *Session) string {
	if s != nil && s.Path != "" {
		dir := filepath.Join(filepath.Dir(s.Path), storage.BackupsDirName)
		if err := os.MkdirAll(dir, 0o755); err == nil {
			return dir
		}
	}
	return os.TempDir()
}

func writeReport(s *Session, panicVal any, stack []byte) (string, error) {
	stamp := time.Now().Format("20060102-150405.000")
	path := filepath.Join(reportDir(s), fmt.Sprintf("crash-%s.log", stamp))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "AdNate Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if s != nil && s.Path != "" {
		_, _ = fmt.Fprintf(&buf, "Design: %s\n", s.Path)
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}
	// Reports carry no design content, only the path and the stack.
	telemetry.UploadCrash(buf.Bytes())
	return path, nil
}
