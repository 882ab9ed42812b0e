package push

import "github.com/julianstephens/dayglow/internal/constants"

// Result is the outcome of a reminder operation. Failures are values, not
// errors: Reason says what went wrong and Message says it for humans.
type Result struct {
	OK      bool             `json:"ok"`
	Reason  constants.Reason `json:"reason,omitempty"`
	Message string           `json:"message,omitempty"`
}

func success(message string) Result {
	return Result{OK: true, Message: message}
}

func fail(reason constants.Reason, message string) Result {
	return Result{Reason: reason, Message: message}
}

// State is the reminder's position in the permission/subscription lifecycle.
type State string

const (
	StateUnsupported      State = "unsupported"
	StateInsecure         State = "insecure"
	StatePermissionPrompt State = "permission-default"
	StatePermissionDenied State = "permission-denied"
	StateNotSubscribed    State = "granted-unsubscribed"
	StateSubscribed       State = "subscribed"
)

const (
	msgUnsupported    = "Notifications are not supported here."
	msgInsecure       = "Notifications require a secure connection."
	msgNotGranted     = "Notification permission has not been granted."
	msgBlocked        = "Notifications are blocked. Allow them in your settings to get reminders."
	msgDismissed      = "The notification prompt was dismissed."
	msgDeniedByUser   = "Notification permission was denied."
	msgInvalidTime    = "Reminder time must be HH:MM."
	msgNotConfigured  = "Push notifications are not configured."
	msgReminderOff    = "Daily reminder turned off."
	msgRestoreOff     = "Daily reminder is not enabled."
	msgRestoreNoGrant = "Notification permission is not granted."
)
