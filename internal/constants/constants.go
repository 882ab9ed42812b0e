package constants

import "time"

// Reason is the machine-readable outcome of a reminder operation
type Reason string

// PermissionState mirrors the platform notification permission
type PermissionState string

const (
	AppName             = "dayglow"
	DefaultKeyringUser  = "api-token"
	DatabaseKeyringUser = "database"
	DefaultStorePath    = "~/.config/dayglow/dayglow.db"
	DefaultAPIURL       = "http://localhost:8080/api"
	DefaultWorker       = "/notification-worker.js"
	Version             = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// FallbackTimezone is used when the platform cannot resolve a locale timezone
	FallbackTimezone = "UTC"

	// Agent constants
	AgentLockfileName      = "dayglow-agent.lock"
	AgentIdentifier        = "com.julianstephens.dayglow"
	AgentExecutablePrefix  = "dayglow-agent"
	NotificationDurationMs = 5000
	HTTPTimeout            = 30 * time.Second

	// Backend endpoints, relative to the API base URL
	SubscribePath   = "/notifications/subscribe"
	UnsubscribePath = "/notifications/unsubscribe"

	// Permission states
	PermissionDefault PermissionState = "default"
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"

	// Reminder outcome reasons
	ReasonUnsupported     Reason = "unsupported"
	ReasonInsecure        Reason = "insecure"
	ReasonDenied          Reason = "denied"
	ReasonUnavailable     Reason = "unavailable"
	ReasonSubscribeFailed Reason = "subscribe-failed"
	ReasonBackendFailed   Reason = "backend-failed"
	ReasonDisabled        Reason = "disabled"
	ReasonPermission      Reason = "permission"
)
