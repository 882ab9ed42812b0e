package constants

// KeyPrefix namespaces every persisted key owned by dayglow.
const KeyPrefix = "dayglow."

const (
	KeyTheme                = KeyPrefix + "theme"
	KeyUser                 = KeyPrefix + "user"
	KeyLastLogDate          = KeyPrefix + "lastLogDate"
	KeyNotificationSettings = KeyPrefix + "notificationSettings"
	KeyGameHighScore        = KeyPrefix + "game.highScore"

	KeyClientID         = KeyPrefix + "clientId"
	KeyPermission       = KeyPrefix + "permission"
	KeyPushRegistration = KeyPrefix + "push.registration"
	KeyPushSubscription = KeyPrefix + "push.subscription"
)

// LegacyKeys maps each canonical key to the un-prefixed keys older builds wrote,
// in lookup priority order.
var LegacyKeys = map[string][]string{
	KeyTheme:                {"theme"},
	KeyUser:                 {"user"},
	KeyLastLogDate:          {"lastLogDate"},
	KeyNotificationSettings: {"notificationSettings"},
	KeyGameHighScore:        {"highScore"},
}

// UserScopedKeys are cleared on logout.
var UserScopedKeys = []string{
	KeyUser,
	KeyLastLogDate,
	KeyNotificationSettings,
	KeyGameHighScore,
}
