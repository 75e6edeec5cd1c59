// Package utils provides utility functions for the application.
package utils

import (
	"time"
)

// UTCNow returns the current time in UTC
func UTCNow() time.Time {
	return time.Now().UTC()
}

// UTCNowPtr returns a pointer to the current time in UTC
func UTCNowPtr() *time.Time {
	now := UTCNow()
	return &now
}

// UTCNowISO returns the current UTC time in the ISO-8601 layout used by the health probe
func UTCNowISO() string {
	return UTCNow().Format("2006-01-02T15:04:05.000Z07:00")
}
