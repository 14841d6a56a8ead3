package internal

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"
)

// Version is the application version, overridden at build time.
var Version = "0.3.0"

// GenerateEntryID creates a unique ID for a history entry based on timestamp
// and source text. Format: epochMillis_md5(text)[:8]
func GenerateEntryID(sourceText string) string {
	// Get current timestamp in milliseconds
	now := time.Now()
	epochMillis := now.UnixNano() / 1000000

	// Calculate MD5 hash of the text
	hash := md5.Sum([]byte(sourceText))
	hashStr := hex.EncodeToString(hash[:])[:8] // Use first 8 chars of MD5

	// Combine timestamp and hash
	return fmt.Sprintf("%d_%s", epochMillis, hashStr)
}
