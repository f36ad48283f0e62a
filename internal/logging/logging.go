// Package logging configures zerolog for the deltakit CLI, following the
// rotation/writer layout of the teacher repo's server/config/logging.go.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/deltakit/deltakit/internal/errors"
	"github.com/rs/zerolog"
)

var (
	ErrLogDirectoryCreationFailed = errors.MustNewCode("logging.directory_creation_failed", errors.KindInternal)
	ErrLogFileOpenFailed          = errors.MustNewCode("logging.file_open_failed", errors.KindInternal)
	ErrLogFilePathRequired        = errors.MustNewCode("logging.file_path_required", errors.KindConfigError)
	ErrLogRotationFailed          = errors.MustNewCode("logging.rotation_failed", errors.KindInternal)
	ErrLogBackupRemoveFailed      = errors.MustNewCode("logging.backup_remove_failed", errors.KindInternal)
)

// Config controls where and how deltakit logs.
type Config struct {
	Level      string `yaml:"level"`
	Console    bool   `yaml:"console"`
	Quiet      bool   `yaml:"quiet"`
	JSON       bool   `yaml:"json"`
	FilePath   string `yaml:"file_path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// DefaultConfig mirrors the CLI's defaults: console logging at info level,
// no file sink unless the caller configures one.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Console:    true,
		MaxSizeMB:  100,
		MaxBackups: 3,
		MaxAgeDays: 7,
	}
}

// Manager owns log file rotation, ported from the teacher's LogManager.
type Manager struct {
	cfg        *Config
	currentLog *os.File
}

func NewManager(cfg *Config) *Manager {
	return &Manager{cfg: cfg}
}

// GetWriter opens (creating if needed) the rotated log file for appending.
func (m *Manager) GetWriter() (io.Writer, error) {
	if m.cfg.FilePath == "" {
		return nil, errors.New(ErrLogFilePathRequired, "no log file path specified", nil)
	}

	logDir := filepath.Dir(m.cfg.FilePath)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, errors.New(ErrLogDirectoryCreationFailed, "failed to create log directory", err)
	}

	if err := m.checkRotation(); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(m.cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.New(ErrLogFileOpenFailed, "failed to open log file", err)
	}
	m.currentLog = file
	return file, nil
}

func (m *Manager) checkRotation() error {
	if m.cfg.MaxSizeMB <= 0 {
		return nil
	}
	info, err := os.Stat(m.cfg.FilePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return nil
	}
	maxBytes := int64(m.cfg.MaxSizeMB) * 1024 * 1024
	if info.Size() < maxBytes {
		return nil
	}
	return m.rotate()
}

func (m *Manager) rotate() error {
	if m.currentLog != nil {
		m.currentLog.Close()
		m.currentLog = nil
	}

	timestamp := time.Now().Format("2006-01-02-15-04-05")
	backupPath := fmt.Sprintf("%s.%s", m.cfg.FilePath, timestamp)
	if err := os.Rename(m.cfg.FilePath, backupPath); err != nil {
		return errors.New(ErrLogRotationFailed, "failed to rotate log file", err)
	}
	return m.cleanupOldBackups()
}

func (m *Manager) cleanupOldBackups() error {
	if m.cfg.MaxBackups <= 0 && m.cfg.MaxAgeDays <= 0 {
		return nil
	}
	logDir := filepath.Dir(m.cfg.FilePath)
	logBase := filepath.Base(m.cfg.FilePath)

	entries, err := os.ReadDir(logDir)
	if err != nil {
		return nil
	}

	type backup struct {
		path    string
		modTime time.Time
	}
	var backups []backup
	cutoff := time.Now().AddDate(0, 0, -m.cfg.MaxAgeDays)

	for _, entry := range entries {
		if entry.IsDir() || !isBackupFile(entry.Name(), logBase) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, backup{path: filepath.Join(logDir, entry.Name()), modTime: info.ModTime()})
	}

	for i := 0; i < len(backups)-1; i++ {
		for j := i + 1; j < len(backups); j++ {
			if backups[i].modTime.After(backups[j].modTime) {
				backups[i], backups[j] = backups[j], backups[i]
			}
		}
	}

	if m.cfg.MaxBackups > 0 && len(backups) > m.cfg.MaxBackups {
		for _, b := range backups[:len(backups)-m.cfg.MaxBackups] {
			if err := os.Remove(b.path); err != nil {
				return errors.New(ErrLogBackupRemoveFailed, "failed to remove old backup", err).AddContext("backup_path", b.path)
			}
		}
	}
	if m.cfg.MaxAgeDays > 0 {
		for _, b := range backups {
			if b.modTime.Before(cutoff) {
				os.Remove(b.path)
			}
		}
	}
	return nil
}

func isBackupFile(name, baseName string) bool {
	return len(name) > len(baseName) && name[:len(baseName)] == baseName && name[len(baseName)] == '.'
}

// Setup builds a zerolog.Logger from cfg. In --json mode human log lines are
// routed to stderr so stdout stays pure JSON; --quiet raises the floor to Error.
func Setup(cfg Config) (zerolog.Logger, error) {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.Quiet && level < zerolog.ErrorLevel {
		level = zerolog.ErrorLevel
	}

	var writers []io.Writer
	if cfg.Console {
		consoleOut := os.Stderr
		if !cfg.JSON {
			writers = append(writers, zerolog.ConsoleWriter{Out: consoleOut, TimeFormat: time.RFC3339})
		} else {
			writers = append(writers, consoleOut)
		}
	}
	if cfg.FilePath != "" {
		fileWriter, err := NewManager(&cfg).GetWriter()
		if err != nil {
			return zerolog.Logger{}, err
		}
		writers = append(writers, fileWriter)
	}

	var out io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		out = writers[0]
	default:
		out = zerolog.MultiLevelWriter(writers...)
	}

	logger := zerolog.New(out).Level(level).With().
		Timestamp().
		Str("component", "deltakit").
		Logger()
	return logger, nil
}
