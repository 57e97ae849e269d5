// Package device derives display names and fingerprints from user-agent
// strings. Display names label audit events; fingerprints detect a login
// arriving from an unfamiliar client.
package device

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mssola/useragent"
)

// Service computes device fingerprints. When disabled, fingerprints are empty
// and comparisons always match.
type Service struct {
	enabled bool
}

func NewService(enabled bool) *Service {
	return &Service{enabled: enabled}
}

// ParseUserAgent returns a human-readable "Browser on OS" label.
func ParseUserAgent(raw string) string {
	if raw == "" {
		return "Unknown Device"
	}

	ua := useragent.New(raw)
	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}
	os := ua.OS()
	if os == "" {
		os = "Unknown OS"
	}

	return strings.TrimSpace(fmt.Sprintf("%s on %s", browser, os))
}

// ComputeFingerprint hashes the stable parts of the user agent: browser name,
// major version, and OS. Minor version bumps keep the fingerprint; a browser
// or OS change rotates it.
func (s *Service) ComputeFingerprint(raw string) string {
	if !s.enabled {
		return ""
	}

	ua := useragent.New(raw)
	browser, version := ua.Browser()
	major := version
	if i := strings.IndexByte(version, '.'); i >= 0 {
		major = version[:i]
	}

	material := strings.Join([]string{browser, major, ua.OS()}, "|")
	sum := sha256.Sum256([]byte(material))
	return hex.EncodeToString(sum[:])
}

// CompareFingerprints reports whether the current fingerprint matches the
// stored one, and whether the mismatch counts as drift. A disabled service
// never reports drift.
func (s *Service) CompareFingerprints(stored, current string) (matched, drift bool) {
	if !s.enabled || stored == "" {
		return true, false
	}
	if stored == current {
		return true, false
	}
	return false, true
}
