// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging wraps a zap sugared logger with key-based sanitizing of
// personal data. Investigator names are hashed and contact details are
// redacted when redaction is on (the default).
package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a structured logger taking alternating key/value pairs.
type Logger struct {
	SugaredLogger *zap.SugaredLogger
	redact        bool
	salt          string
}

// New builds a logger. mode "prod"/"production" selects JSON output at info
// level; anything else selects console output at debug level. Redaction is
// controlled by LOG_REDACTION_ENABLED and hashing is salted with LOG_HASH_SALT.
func New(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	zl, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return &Logger{
		SugaredLogger: zl.Sugar(),
		redact:        redactionFromEnv(),
		salt:          strings.TrimSpace(os.Getenv("LOG_HASH_SALT")),
	}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// FromZap wraps an existing zap logger with redaction enabled. Tests use it
// with zaptest/observer cores.
func FromZap(zl *zap.Logger) *Logger {
	return &Logger{SugaredLogger: zl.Sugar(), redact: true}
}

// Sync flushes buffered entries.
func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.SugaredLogger.Debugw(msg, l.sanitize(keysAndValues)...)
}

func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.SugaredLogger.Infow(msg, l.sanitize(keysAndValues)...)
}

func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.SugaredLogger.Warnw(msg, l.sanitize(keysAndValues)...)
}

func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.SugaredLogger.Errorw(msg, l.sanitize(keysAndValues)...)
}

// With returns a child logger carrying keysAndValues on every entry.
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{
		SugaredLogger: l.SugaredLogger.With(l.sanitize(keysAndValues)...),
		redact:        l.redact,
		salt:          l.salt,
	}
}

func (l *Logger) sanitize(kv []any) []any {
	if len(kv) == 0 || !l.redact {
		return kv
	}
	out := make([]any, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key := strings.ToLower(strings.TrimSpace(toString(kv[i])))
		out = append(out, kv[i], l.sanitizeValue(key, kv[i+1]))
	}
	return out
}

func (l *Logger) sanitizeValue(key string, val any) any {
	switch {
	case isRedactKey(key):
		return "[REDACTED]"
	case isHashKey(key):
		return l.hash(val)
	default:
		return val
	}
}

func isRedactKey(key string) bool {
	for _, k := range []string{"email", "mailto", "api_key", "apikey", "password", "secret", "dsn"} {
		if strings.Contains(key, k) {
			return true
		}
	}
	return false
}

// isHashKey matches fields that carry an investigator's personal name.
func isHashKey(key string) bool {
	switch key {
	case "name", "full_name", "query", "surname":
		return true
	}
	return false
}

func (l *Logger) hash(val any) string {
	raw := toString(val)
	if raw == "" {
		return ""
	}
	h := sha256.New()
	if l.salt != "" {
		_, _ = h.Write([]byte(l.salt))
	}
	_, _ = h.Write([]byte(raw))
	return "hash:" + hex.EncodeToString(h.Sum(nil))[:12]
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func redactionFromEnv() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_REDACTION_ENABLED"))) {
	case "0", "false", "no", "off":
		return false
	default:
		return true
	}
}
