/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/uptrace/bun"
)

// sqlColorEnv enables the colorized SQL console hook when set. "2" also
// prints successful statements, not only failures.
const sqlColorEnv = "BUN_SQL_COLOR"

var bunSqlSilentMode bool

// EnableBunSqlSilent suppresses all SQL hook output. Migrations flip this on
// so table creation noise stays out of application logs.
func EnableBunSqlSilent(b bool) {
	bunSqlSilentMode = b
}

// sqlConsoleHook prints each statement with its duration, one color per
// operation, and failures on a red background. bundebug covers structured
// debugging; this hook exists for human-watchable output.
type sqlConsoleHook struct {
	writer  io.Writer
	verbose bool
}

var _ bun.QueryHook = (*sqlConsoleHook)(nil)

func newSQLConsoleHook(writer io.Writer) *sqlConsoleHook {
	return &sqlConsoleHook{
		writer:  writer,
		verbose: os.Getenv(sqlColorEnv) == "2",
	}
}

func (h *sqlConsoleHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *sqlConsoleHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if bunSqlSilentMode {
		return
	}
	if !h.verbose {
		switch {
		case event.Err == nil,
			errors.Is(event.Err, sql.ErrNoRows),
			errors.Is(event.Err, sql.ErrTxDone):
			return
		}
	}

	now := time.Now()
	args := []interface{}{
		now.Format("2006-01-02 15:04:05.000"),
		color.CyanString("%8s", "[SQL]"),
		fmt.Sprintf("%12s", now.Sub(event.StartTime).Round(time.Microsecond)),
		" ",
		colorizeQuery(event),
	}
	if event.Err != nil {
		args = append(args, "\t", color.New(color.BgRed).Sprintf(" %v ", event.Err))
	}
	_, _ = fmt.Fprintln(h.writer, args...)
}

func colorizeQuery(event *bun.QueryEvent) string {
	switch event.Operation() {
	case "SELECT":
		return color.GreenString(event.Query)
	case "INSERT":
		return color.BlueString(event.Query)
	case "UPDATE":
		return color.YellowString(event.Query)
	case "DELETE":
		return color.MagentaString(event.Query)
	default:
		return color.RedString(event.Query)
	}
}

// slowQueryHook warns through the database logger when a successful query
// exceeds the configured threshold.
type slowQueryHook struct {
	slowTime time.Duration
	logger   Logger
}

var _ bun.QueryHook = (*slowQueryHook)(nil)

func (h *slowQueryHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *slowQueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if bunSqlSilentMode || event.Err != nil || h.logger == nil {
		return
	}
	duration := time.Since(event.StartTime)
	if duration > h.slowTime {
		h.logger.Warn("Database slow query detected ⚠️",
			"duration", duration,
			"slow_threshold", h.slowTime,
			"query", event.Query,
		)
	}
}
