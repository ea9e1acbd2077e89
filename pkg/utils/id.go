package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"sync/atomic"
	"time"
)

var (
	// Counter for sequential IDs
	idCounter uint64

	prefixPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
)

// GenerateID generates a unique ID
func GenerateID() string {
	count := atomic.AddUint64(&idCounter, 1)
	timestamp := time.Now().UnixNano()
	return fmt.Sprintf("%x-%x", timestamp, count)
}

// GenerateRunID generates a run ID with a timestamp prefix
func GenerateRunID() string {
	timestamp := time.Now().Format("20060102-150405")
	b := make([]byte, 4)
	_, err := rand.Read(b)
	if err != nil {
		count := atomic.AddUint64(&idCounter, 1)
		return fmt.Sprintf("run-%s-%x", timestamp, count)
	}
	return fmt.Sprintf("run-%s-%s", timestamp, hex.EncodeToString(b))
}

// RunFileName returns the name of a per-run artifact derived from the output prefix,
// e.g. RunFileName("YAG", "run.json") == "YAG-run.json".
func RunFileName(prefix, suffix string) string {
	if prefix == "" {
		return suffix
	}
	return prefix + "-" + suffix
}

// ValidPrefix reports whether prefix can name files inside a work directory:
// letters, digits, '.', '_' and '-' only, and not "." or "..".
func ValidPrefix(prefix string) bool {
	return prefix != "." && prefix != ".." && prefixPattern.MatchString(prefix)
}
