package settings

import (
	"fmt"

	"github.com/julianstephens/dayglow/internal/cli"
	"github.com/julianstephens/dayglow/internal/models"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	EmailUpdates *bool   `help:"Receive email updates."`
	Timezone     *string `help:"IANA timezone for reminders (empty to clear)."`
}

func (c *SettingsCmd) Run(app *cli.Context) error {
	store := app.Settings()
	settings, _ := store.Saved()

	if c.List {
		app.Println(cli.Title("Notification Settings"))
		app.Println(cli.Field("Daily reminder", fmt.Sprintf("%v", settings.DailyReminder)))
		app.Println(cli.Field("Reminder time", orNone(settings.ReminderTime)))
		app.Println(cli.Field("Timezone", orNone(settings.Timezone)))
		email := "unset"
		if settings.EmailUpdates != nil {
			email = fmt.Sprintf("%v", *settings.EmailUpdates)
		}
		app.Println(cli.Field("Email updates", email))
		return nil
	}

	updated := false
	if c.EmailUpdates != nil {
		settings.EmailUpdates = models.BoolPtr(*c.EmailUpdates)
		updated = true
	}
	if c.Timezone != nil {
		if *c.Timezone == "" {
			settings.Timezone = nil
		} else {
			settings.Timezone = models.StringPtr(*c.Timezone)
		}
		updated = true
	}

	if !updated {
		app.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}
	if err := store.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	app.Println(cli.OK("Settings updated successfully."))
	return nil
}

func orNone(s *string) string {
	if s == nil || *s == "" {
		return "none"
	}
	return *s
}
