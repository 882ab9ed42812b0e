package models

// NotificationSettings is the user's reminder preference record. The UI owns it;
// it is persisted only through the storage package.
type NotificationSettings struct {
	DailyReminder bool    `json:"dailyReminder"`
	ReminderTime  *string `json:"reminderTime" validate:"omitempty,hhmm"`
	Timezone      *string `json:"timezone,omitempty" validate:"omitempty,timezone"`
	EmailUpdates  *bool   `json:"emailUpdates,omitempty"`
}

// Time returns the reminder time, or "" when none is set.
func (s NotificationSettings) Time() string {
	if s.ReminderTime == nil {
		return ""
	}
	return *s.ReminderTime
}

// Active reports whether a daily reminder is switched on with a time to fire at.
func (s NotificationSettings) Active() bool {
	return s.DailyReminder && s.Time() != ""
}

// SettingsEnvelope is the settings shape the backend returns from the
// subscribe and unsubscribe endpoints.
type SettingsEnvelope struct {
	DailyReminder *bool   `json:"dailyReminder" validate:"required"`
	ReminderTime  *string `json:"reminderTime,omitempty"`
	Timezone      *string `json:"timezone,omitempty"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}
