// retry.go wraps store writes with automatic retry for transient SQLite
// errors. WAL mode handles most read/write concurrency, but under load the
// driver can still surface SQLITE_BUSY and SQLITE_LOCKED; the busy_timeout
// pragma covers the connection level, and this covers the rest with
// exponential backoff plus jitter.
package repository

import (
	"math/rand"
	"strings"
	"time"
)

// retryConfig controls retry behavior for transient SQLite errors.
type retryConfig struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

var defaultRetryConfig = retryConfig{
	maxRetries: 3,
	baseDelay:  50 * time.Millisecond,
	maxDelay:   500 * time.Millisecond,
}

// retryOnContention runs fn, retrying transient SQLite errors with the
// default backoff. Non-transient errors return immediately.
func retryOnContention(fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= defaultRetryConfig.maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isTransientSQLiteErr(lastErr) {
			return lastErr
		}
		if attempt < defaultRetryConfig.maxRetries {
			time.Sleep(backoffDelay(defaultRetryConfig, attempt))
		}
	}
	return lastErr
}

// isTransientSQLiteErr detects lock-contention errors worth retrying.
// modernc.org/sqlite embeds the SQLite codes in the error text.
func isTransientSQLiteErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, pattern := range []string{
		"SQLITE_BUSY",
		"SQLITE_LOCKED",
		"database is locked",
		"database table is locked",
		"(5)", // SQLITE_BUSY code
		"(6)", // SQLITE_LOCKED code
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// isUniqueViolation detects unique-constraint failures, used to map the
// stage (program, order) index onto ErrStageConflict.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "(2067)")
}

// backoffDelay is baseDelay * 2^attempt capped at maxDelay, plus jitter in
// [0, baseDelay).
func backoffDelay(cfg retryConfig, attempt int) time.Duration {
	delay := cfg.baseDelay << uint(attempt)
	if delay > cfg.maxDelay {
		delay = cfg.maxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(cfg.baseDelay)))
	return delay + jitter
}
