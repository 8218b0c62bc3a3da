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

package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type PathFormat int

type Logger = logrus.Logger

const (
	PathFormatShortRelative PathFormat = iota
	PathFormatFilenameOnly
	PathFormatFullRelative
)

var (
	defaultConsoleLevel = logrus.DebugLevel
	defaultFileLevel    = logrus.TraceLevel
	loggerRegistryMu    sync.RWMutex
	loggerRegistry      = map[string]*logrus.Logger{}
	fileLogEnabled      = EnvDefaultBool("FILE_LOG_ENABLED", false)
	fileLogDir          = "logs"
	fileLogMaxAgeDays   = 0
	fileLogFormat       = EnvDefaultString("FILE_LOG_FORMAT", "text")
	consoleLogFormat    = EnvDefaultString("CONSOLE_LOG_FORMAT", "text")
)

// ConfigureFileLog sets the file log base directory and retention in days.
func ConfigureFileLog(dir string, maxAgeDays int) {
	if dir != "" {
		fileLogDir = dir
	}
	if maxAgeDays >= 0 {
		fileLogMaxAgeDays = maxAgeDays
	}
}

func ConfigureFileLogFormat(format string) {
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		fileLogFormat = "json"
	} else {
		fileLogFormat = "text"
	}
}

func ConfigureConsoleLogFormat(format string) {
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		consoleLogFormat = "json"
	} else {
		consoleLogFormat = "text"
	}
}

type levelWriterHook struct {
	writers   map[logrus.Level]io.Writer
	formatter logrus.Formatter
}

func (h *levelWriterHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *levelWriterHook) Fire(e *logrus.Entry) error {
	if e.Level > defaultFileLevel {
		return nil
	}
	w, ok := h.writers[e.Level]
	if !ok || w == nil {
		return nil
	}
	b, err := h.formatter.Format(e)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

type dailyLevelWriter struct {
	baseDir    string
	level      string
	maxAgeDays int
	mu         sync.Mutex
	curDate    string
	file       *os.File
}

func (w *dailyLevelWriter) ensureOpen(date string) error {
	if w.file != nil && w.curDate == date {
		return nil
	}
	if w.file != nil {
		_ = w.file.Close()
		w.file = nil
	}
	dir := filepath.Join(w.baseDir, date)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(dir, w.level+".log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	w.file = f
	w.curDate = date
	return nil
}

func (w *dailyLevelWriter) cleanup() {
	if w.maxAgeDays < 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -w.maxAgeDays)
	cutoffMidnight := time.Date(cutoff.Year(), cutoff.Month(), cutoff.Day(), 0, 0, 0, 0, time.Local)

	entries, err := os.ReadDir(w.baseDir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		d, err := time.Parse("2006-01-02", e.Name())
		if err != nil {
			continue
		}
		if d.Before(cutoffMidnight) {
			_ = os.RemoveAll(filepath.Join(w.baseDir, e.Name()))
		}
	}
}

func (w *dailyLevelWriter) Write(p []byte) (int, error) {
	nowDate := time.Now().Format("2006-01-02")
	w.mu.Lock()
	oldDate := w.curDate
	if err := w.ensureOpen(nowDate); err != nil {
		w.mu.Unlock()
		return 0, err
	}
	if oldDate != nowDate {
		w.cleanup()
	}
	f := w.file
	w.mu.Unlock()
	return f.Write(p)
}

// AddDailyRollingFileHook attaches per-level daily log files to the logger.
func AddDailyRollingFileHook(l *logrus.Logger, name, dir string, maxAgeDays int) error {
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	writers := make(map[logrus.Level]io.Writer)
	for _, lvl := range []logrus.Level{
		logrus.TraceLevel, logrus.DebugLevel, logrus.InfoLevel,
		logrus.WarnLevel, logrus.ErrorLevel,
	} {
		writers[lvl] = &dailyLevelWriter{baseDir: dir, level: lvl.String(), maxAgeDays: maxAgeDays}
	}
	writers[logrus.FatalLevel] = writers[logrus.ErrorLevel]
	writers[logrus.PanicLevel] = writers[logrus.ErrorLevel]

	var fileFmt logrus.Formatter
	if fileLogFormat == "json" {
		fileFmt = &JSONLogFormatter{LoggerName: name, PathFmt: PathFormatFullRelative}
	} else {
		fileFmt = &Log4jColorFormatter{
			LoggerName:  name,
			PathFmt:     PathFormatFullRelative,
			ColorCaller: false,
			NameWidth:   10,
		}
	}

	l.AddHook(&levelWriterHook{writers: writers, formatter: fileFmt})
	return nil
}

func ParseLogLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "info", "":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}

func RegisterLogger(name string, l *logrus.Logger) {
	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	loggerRegistry[name] = l
}

func maxLevel(a, b logrus.Level) logrus.Level {
	if a >= b {
		return a
	}
	return b
}

func applyBaseLevelToRegistered() {
	base := maxLevel(defaultConsoleLevel, defaultFileLevel)
	loggerRegistryMu.RLock()
	for _, lg := range loggerRegistry {
		lg.SetLevel(base)
	}
	loggerRegistryMu.RUnlock()
	logrus.SetLevel(base)
}

func SetAllLoggersLevel(lvl logrus.Level) {
	loggerRegistryMu.RLock()
	for _, lg := range loggerRegistry {
		lg.SetLevel(lvl)
	}
	loggerRegistryMu.RUnlock()
	logrus.SetLevel(lvl)
	defaultConsoleLevel = lvl
	defaultFileLevel = lvl
}

func SetLoggerLevel(name string, lvlStr string) bool {
	lvl := ParseLogLevel(lvlStr)
	loggerRegistryMu.RLock()
	lg, ok := loggerRegistry[name]
	loggerRegistryMu.RUnlock()
	if !ok {
		return false
	}
	lg.SetLevel(lvl)
	return true
}

func ConfigureLogLevel(levelStr string) {
	lvl := ParseLogLevel(levelStr)
	defaultConsoleLevel = lvl
	defaultFileLevel = lvl
	applyBaseLevelToRegistered()
}

func ConfigureConsoleLogLevel(levelStr string) {
	defaultConsoleLevel = ParseLogLevel(levelStr)
	applyBaseLevelToRegistered()
}

func ConfigureFileLogLevel(levelStr string) {
	defaultFileLevel = ParseLogLevel(levelStr)
	applyBaseLevelToRegistered()
}

type consoleWriterHook struct {
	formatter logrus.Formatter
}

func (h *consoleWriterHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *consoleWriterHook) Fire(e *logrus.Entry) error {
	if e.Level > defaultConsoleLevel {
		return nil
	}
	b, err := h.formatter.Format(e)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(b)
	return err
}

// NewLogger builds a named logrus logger with console output and optional
// daily file output, then registers it for level management.
func NewLogger(name string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(maxLevel(defaultConsoleLevel, defaultFileLevel))
	l.SetReportCaller(true)
	var consoleFmt logrus.Formatter
	if consoleLogFormat == "json" {
		consoleFmt = &JSONLogFormatter{LoggerName: name, PathFmt: PathFormatFullRelative}
	} else {
		consoleFmt = &Log4jColorFormatter{
			LoggerName:  name,
			PathFmt:     PathFormatShortRelative,
			ColorCaller: true,
			NameWidth:   10,
			CallerWidth: 25,
		}
	}
	l.SetFormatter(consoleFmt)
	l.AddHook(&consoleWriterHook{formatter: l.Formatter})
	if fileLogEnabled {
		_ = AddDailyRollingFileHook(l, name, fileLogDir, fileLogMaxAgeDays)
	}
	RegisterLogger(name, l)
	return l
}

// Log4jColorFormatter renders entries in a log4j-like single line layout.
type Log4jColorFormatter struct {
	LoggerName      string
	TimestampFormat string
	PathFmt         PathFormat
	ColorCaller     bool
	NameWidth       int
	CallerWidth     int
}

func (f *Log4jColorFormatter) tsFormat() string {
	if f.TimestampFormat != "" {
		return f.TimestampFormat
	}
	return "2006-01-02 15:04:05.000"
}

func (f *Log4jColorFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	ts := time.Now().Format(f.tsFormat())
	lvl := padLeft(strings.ToUpper(entry.Level.String()), 7)
	coloredLvl := colorLevel(lvl, entry.Level)
	pid := colorMagenta(fmt.Sprintf("%-6d", os.Getpid()))
	thread := colorMagenta("[main]")
	name := colorCyan(padLeft(limitRunes(f.LoggerName, f.NameWidth), f.NameWidth))

	callerInfo := ""
	if entry.Caller != nil {
		fileLine := f.callerLine(entry.Caller.File, entry.Caller.Line)
		if f.CallerWidth > 0 {
			fileLine = padLeftRunes(fileLine, f.CallerWidth)
		}
		if f.ColorCaller {
			callerInfo = colorFaint(" " + fileLine)
		} else {
			callerInfo = " " + fileLine
		}
	}

	line := fmt.Sprintf("%s %s %s - %s %s%s %s %s\n",
		ts, coloredLvl, pid, thread, name, callerInfo, colorFaint(":"), entry.Message)
	return []byte(line), nil
}

func (f *Log4jColorFormatter) callerLine(file string, line int) string {
	switch f.PathFmt {
	case PathFormatFilenameOnly:
		return fmt.Sprintf("%s:%d", filepath.Base(file), line)
	case PathFormatFullRelative:
		return fmt.Sprintf("%s:%d", moduleRelative(filepath.ToSlash(file)), line)
	default:
		return fmt.Sprintf("%s:%d", shortRelative(file), line)
	}
}

// JSONLogFormatter renders entries as single-line JSON records.
type JSONLogFormatter struct {
	LoggerName      string
	TimestampFormat string
	PathFmt         PathFormat
}

func (f *JSONLogFormatter) tsFormat() string {
	if f.TimestampFormat != "" {
		return f.TimestampFormat
	}
	return "2006-01-02 15:04:05.000"
}

func (f *JSONLogFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	caller := ""
	if entry.Caller != nil {
		switch f.PathFmt {
		case PathFormatFilenameOnly:
			caller = fmt.Sprintf("%s:%d", filepath.Base(entry.Caller.File), entry.Caller.Line)
		case PathFormatFullRelative:
			caller = fmt.Sprintf("%s:%d", moduleRelative(filepath.ToSlash(entry.Caller.File)), entry.Caller.Line)
		default:
			caller = fmt.Sprintf("%s:%d", shortRelative(entry.Caller.File), entry.Caller.Line)
		}
	}

	type jsonLogRecord struct {
		Time    string                 `json:"time"`
		Level   string                 `json:"level"`
		Model   string                 `json:"model"`
		Caller  string                 `json:"caller"`
		Message string                 `json:"message"`
		Fields  map[string]interface{} `json:"fields,omitempty"`
	}

	rec := jsonLogRecord{
		Time:    time.Now().Format(f.tsFormat()),
		Level:   strings.ToLower(entry.Level.String()),
		Model:   f.LoggerName,
		Caller:  caller,
		Message: entry.Message,
	}
	if len(entry.Data) > 0 {
		rec.Fields = make(map[string]interface{}, len(entry.Data))
		for k, v := range entry.Data {
			rec.Fields[k] = v
		}
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func padLeft(s string, width int) string { return fmt.Sprintf("%"+strconv.Itoa(width)+"s", s) }

const (
	ansiReset   = "\x1b[0m"
	ansiFaint   = "\x1b[2m"
	ansiRed     = "\x1b[31m"
	ansiYellow  = "\x1b[33m"
	ansiGreen   = "\x1b[32m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[35m"
	ansiCyan    = "\x1b[36m"
)

func colorWrap(s, code string) string { return code + s + ansiReset }

func colorMagenta(s string) string { return colorWrap(s, ansiMagenta) }

func colorCyan(s string) string { return colorWrap(s, ansiCyan) }

func colorFaint(s string) string { return colorWrap(s, ansiFaint) }

func colorLevel(s string, level logrus.Level) string {
	switch level {
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return colorWrap(s, ansiRed)
	case logrus.WarnLevel:
		return colorWrap(s, ansiYellow)
	case logrus.InfoLevel:
		return colorWrap(s, ansiGreen)
	case logrus.DebugLevel:
		return colorWrap(s, ansiBlue)
	default:
		return colorWrap(s, ansiMagenta)
	}
}

var moduleRootOnce sync.Once
var moduleRoot string

func moduleRelative(p string) string {
	moduleRootOnce.Do(func() {
		moduleRoot = findModuleRootFrom(p)
	})
	if moduleRoot != "" && strings.HasPrefix(p, moduleRoot) {
		return strings.TrimPrefix(strings.TrimPrefix(p, moduleRoot), "/")
	}
	return p
}

func findModuleRootFrom(p string) string {
	dir := filepath.Dir(p)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.ToSlash(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func limitRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func padLeftRunes(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(r)) + s
}

func shortRelative(p string) string {
	rel := moduleRelative(filepath.ToSlash(p))
	parts := strings.Split(rel, "/")
	if len(parts) >= 2 {
		return parts[len(parts)-2] + "/" + parts[len(parts)-1]
	}
	return parts[0]
}

func EnvDefaultString(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, _ := strconv.ParseBool(v)
		return b
	}
	return def
}
