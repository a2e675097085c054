// Package xlog provides the package-scoped structured logger shared by the
// structural index. It follows the teacher's convention of leveled,
// key/value-pair logging (message first, then alternating key/value pairs)
// rather than printf-style formatting.
package xlog

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu   sync.RWMutex
	base *zap.SugaredLogger
)

func init() {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	base = l.Sugar()
}

// SetBase replaces the package-wide base logger. Hosts embedding the index
// call this once at startup to route logs into their own core.
func SetBase(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = l.Sugar()
}

// Named returns a sub-logger scoped to the given component name, the way
// the teacher tags log lines with a "[component]" prefix.
func Named(name string) *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return base.Named(name)
}

func Info(msg string, kv ...interface{})  { get().Infow(msg, kv...) }
func Warn(msg string, kv ...interface{})  { get().Warnw(msg, kv...) }
func Error(msg string, kv ...interface{}) { get().Errorw(msg, kv...) }
func Debug(msg string, kv ...interface{}) { get().Debugw(msg, kv...) }

func get() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}
