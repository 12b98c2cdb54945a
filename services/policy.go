package services

import (
	"fmt"
	"strings"
	"time"
)

// ActivityLog is the slice of the RequestStore the eligibility policy
// reads from.
type ActivityLog interface {
	ActivityWindowCount(ip string, window time.Duration, now time.Time) int
	OldestActivityInWindow(ip string, window time.Duration, now time.Time) (time.Time, bool)
	LastActivityTimestamp(trackGuid string) (time.Time, bool)
}

type RateLimitResult struct {
	Allowed       bool
	Window        string // "hour" or "day" when blocked
	Limit         int
	NextAllowedAt time.Time
}

type CooldownResult struct {
	Allowed       bool
	NextAllowedAt time.Time
}

// CheckRateLimit applies the per-IP hour and day windows. The hour check
// takes precedence. An empty IP cannot be attributed and is allowed.
func CheckRateLimit(log ActivityLog, ip string, now time.Time, maxPerHour, maxPerDay int) RateLimitResult {
	if ip == "" {
		return RateLimitResult{Allowed: true}
	}
	if maxPerHour > 0 {
		if count := log.ActivityWindowCount(ip, time.Hour, now); count >= maxPerHour {
			oldest, _ := log.OldestActivityInWindow(ip, time.Hour, now)
			return RateLimitResult{Window: "hour", Limit: maxPerHour, NextAllowedAt: oldest.Add(time.Hour)}
		}
	}
	if maxPerDay > 0 {
		if count := log.ActivityWindowCount(ip, 24*time.Hour, now); count >= maxPerDay {
			oldest, _ := log.OldestActivityInWindow(ip, 24*time.Hour, now)
			return RateLimitResult{Window: "day", Limit: maxPerDay, NextAllowedAt: oldest.Add(24 * time.Hour)}
		}
	}
	return RateLimitResult{Allowed: true}
}

// CheckCooldown blocks a track that saw activity more recently than the
// cooldown duration.
func CheckCooldown(log ActivityLog, trackGuid string, now time.Time, cooldown time.Duration) CooldownResult {
	if cooldown <= 0 {
		return CooldownResult{Allowed: true}
	}
	last, ok := log.LastActivityTimestamp(trackGuid)
	if !ok {
		return CooldownResult{Allowed: true}
	}
	next := last.Add(cooldown)
	if now.Before(next) {
		return CooldownResult{NextAllowedAt: next}
	}
	return CooldownResult{Allowed: true}
}

// ValidateSubmission checks the listener-supplied fields and returns the
// message to store. Over-length messages are truncated, not rejected.
func ValidateSubmission(requestedBy, message string, maxMessageLength int) (string, error) {
	if strings.TrimSpace(requestedBy) == "" {
		return "", fmt.Errorf("requestedBy is required")
	}
	return TruncateMessage(message, maxMessageLength), nil
}

// TruncateMessage caps a message at maxLen characters.
func TruncateMessage(message string, maxLen int) string {
	if maxLen <= 0 {
		return message
	}
	runes := []rune(message)
	if len(runes) <= maxLen {
		return message
	}
	return string(runes[:maxLen])
}
