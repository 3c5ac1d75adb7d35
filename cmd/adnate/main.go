/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"adnate/internal/config"
	"adnate/internal/crash"
	applog "adnate/internal/log"
	"adnate/internal/telemetry"
	"adnate/internal/version"
)

// errUsage marks a bad command line. It exits with status 2.
var errUsage = errors.New("usage")

func usage(w io.Writer) {
	fmt.Fprintln(w, "AdNate design editor")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  adnate version|-v|--version                    Show version")
	fmt.Fprintln(w, "  adnate new <file> [-name N] [-size WxH|-preset P] Create a design file")
	fmt.Fprintln(w, "  adnate info <file>                             Print a design summary")
	fmt.Fprintln(w, "  adnate add <file> -type T [-x -y -w -h ...]    Add an element")
	fmt.Fprintln(w, "  adnate import <file> <elements.json>           Replace the elements with an exported document")
	fmt.Fprintln(w, "  adnate export <file> [-o out] [-format F] [-scale S] [-preset web|print|social]")
	fmt.Fprintln(w, "  adnate resize <file> -size WxH|-preset P [-scale-elements]")
	fmt.Fprintln(w, "  adnate snapshot <file> [-m description]        Record a version")
	fmt.Fprintln(w, "  adnate versions <file>                         List recorded versions")
	fmt.Fprintln(w, "  adnate rollback <file> <version-id>            Restore a recorded version")
	fmt.Fprintln(w, "  adnate list <dir> [-name N] [-text T]          List the designs in a folder")
	fmt.Fprintln(w, "  adnate bundle <file> <out.zip>                 Pack the design with its local images")
	fmt.Fprintln(w, "  adnate unbundle <bundle.zip> <dir>             Unpack a bundle into a folder")
	fmt.Fprintln(w, "  adnate push <file>                             Upload to the remote store")
	fmt.Fprintln(w, "  adnate pull <id> <file>                        Download from the remote store")
	fmt.Fprintln(w, "  adnate ui [<file>]                             Launch desktop UI (build with -tags fyne)")
}

// app carries what every command needs.
type app struct {
	cfg      config.AppConfig
	password string
	out      io.Writer
	log      *slog.Logger
}

func main() {
	defer crash.Recover()

	cfg, password, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		cfg = config.Defaults()
	}
	applog.Init(logOptions(cfg.Logging))
	if cfg.General.TelemetryOptIn {
		tc := telemetry.FromEnv()
		tc.OptIn = true
		telemetry.SetDefault(telemetry.New(tc))
	}

	a := &app{cfg: cfg, password: password, out: os.Stdout, log: applog.WithComponent("cli")}
	code := a.run(context.Background(), os.Args[1:])

	if err := telemetry.WriteMetrics(cfg.General.MetricsFile); err != nil {
		a.log.Warn("write metrics", slog.Any("err", err))
	}
	telemetry.Default().Close()
	os.Exit(code)
}

func logOptions(lc config.LoggingConfig) applog.Options {
	opts := applog.FromEnv()
	if lc.Level != "" {
		opts.Level = lc.Level
	}
	if lc.Format != "" {
		opts.Format = lc.Format
	}
	if lc.File != "" {
		opts.File = lc.File
	}
	opts.AddSource = opts.AddSource || lc.Source
	return opts
}

// run dispatches one command line and returns the process exit code.
func (a *app) run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		usage(a.out)
		return 2
	}
	a.log.Debug("start", slog.String("cmd", args[0]), slog.Int("args", len(args)))
	var err error
	switch args[0] {
	case "version", "--version", "-v":
		fmt.Fprintln(a.out, "AdNate design editor")
		fmt.Fprintln(a.out, version.String())
		return 0
	case "help", "-h", "--help":
		usage(a.out)
		return 0
	case "new":
		err = a.cmdNew(args[1:])
	case "info":
		err = a.cmdInfo(args[1:])
	case "add":
		err = a.cmdAdd(args[1:])
	case "import":
		err = a.cmdImport(args[1:])
	case "export":
		err = a.cmdExport(ctx, args[1:])
	case "resize":
		err = a.cmdResize(args[1:])
	case "snapshot":
		err = a.cmdSnapshot(ctx, args[1:])
	case "versions":
		err = a.cmdVersions(ctx, args[1:])
	case "rollback":
		err = a.cmdRollback(ctx, args[1:])
	case "list":
		err = a.cmdList(ctx, args[1:])
	case "bundle":
		err = a.cmdBundle(args[1:])
	case "unbundle":
		err = a.cmdUnbundle(args[1:])
	case "push":
		err = a.cmdPush(ctx, args[1:])
	case "pull":
		err = a.cmdPull(ctx, args[1:])
	case "ui":
		err = a.cmdUI(args[1:])
	default:
		err = fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintln(a.out, "Error:", err)
		usage(a.out)
		return 2
	default:
		a.log.Error(args[0]+" failed", slog.Any("err", err))
		fmt.Fprintln(a.out, "Error:", err)
		return 1
	}
}
