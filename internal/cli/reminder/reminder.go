package reminder

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/dayglow/internal/cli"
	"github.com/julianstephens/dayglow/internal/constants"
	dgerrors "github.com/julianstephens/dayglow/internal/errors"
	"github.com/julianstephens/dayglow/internal/logger"
	"github.com/julianstephens/dayglow/internal/models"
	"github.com/julianstephens/dayglow/internal/push"
)

const testMessage = "This is a test reminder from dayglow."

type ReminderCmd struct {
	Enable  EnableCmd  `cmd:"" help:"Turn on the daily reminder."`
	Disable DisableCmd `cmd:"" help:"Turn off the daily reminder."`
	Restore RestoreCmd `cmd:"" help:"Re-establish a saved reminder without prompting."`
	Status  StatusCmd  `cmd:"" help:"Show the reminder state." default:"1"`
	Test    TestCmd    `cmd:"" help:"Send a test reminder through the agent."`
}

type EnableCmd struct {
	Time     string `required:"" help:"Reminder time (HH:MM, 24-hour)."`
	NoPrompt bool   `help:"Fail instead of asking for notification permission."`
}

func (c *EnableCmd) Run(app *cli.Context, ctx context.Context) error {
	settings := app.Settings()

	saved, _ := settings.Saved()
	next := saved
	next.DailyReminder = true
	next.ReminderTime = models.StringPtr(c.Time)

	if err := settings.Save(next); err != nil {
		if !errors.Is(err, push.ErrNotPersisted) {
			return fmt.Errorf("invalid reminder settings: %w", err)
		}
		logger.Warn("Reminder setting not saved; it will not be restored on the next run")
	}

	var opts []push.SubscribeOption
	if c.NoPrompt {
		opts = append(opts, push.SkipPermissionPrompt())
	}

	res := app.Orchestrator.Subscribe(ctx, c.Time, opts...)
	if !res.OK {
		next.DailyReminder = false
		if err := settings.Save(next); err != nil {
			logger.Warn("Failed to switch the saved reminder off", "error", err)
		}
		return &dgerrors.ReminderError{Reason: res.Reason, Message: res.Message}
	}

	app.Println(cli.OK(res.Message))
	return nil
}

type DisableCmd struct{}

func (c *DisableCmd) Run(app *cli.Context, ctx context.Context) error {
	res := app.Orchestrator.Unsubscribe(ctx)
	if !res.OK && res.Reason != constants.ReasonUnsupported {
		return &dgerrors.ReminderError{Reason: res.Reason, Message: res.Message}
	}

	settings := app.Settings()
	if saved, ok := settings.Saved(); ok && saved.DailyReminder {
		saved.DailyReminder = false
		if err := settings.Save(saved); err != nil {
			logger.Warn("Failed to switch the saved reminder off", "error", err)
		}
	}

	msg := res.Message
	if msg == "" || !res.OK {
		msg = "Daily reminder turned off."
	}
	app.Println(cli.OK(msg))
	return nil
}

type RestoreCmd struct{}

func (c *RestoreCmd) Run(app *cli.Context, ctx context.Context) error {
	res := app.Orchestrator.Restore(ctx)
	if res.OK {
		app.Println(cli.OK(res.Message))
		return nil
	}

	switch res.Reason {
	case constants.ReasonDisabled, constants.ReasonPermission:
		app.Println(cli.Fail(res.Message))
		return nil
	}
	return &dgerrors.ReminderError{Reason: res.Reason, Message: res.Message}
}

type StatusCmd struct{}

func (c *StatusCmd) Run(app *cli.Context, ctx context.Context) error {
	app.Println(cli.Title("Daily reminder"))
	app.Println(cli.Field("State", cli.StateLabel(app.Orchestrator.State(ctx))))

	saved, ok := app.Settings().Saved()
	switch {
	case !ok:
		app.Println(cli.Field("Saved setting", "none"))
	case saved.DailyReminder:
		app.Println(cli.Field("Saved setting", "on at "+saved.Time()))
	default:
		app.Println(cli.Field("Saved setting", "off"))
	}
	if ok && saved.Timezone != nil {
		app.Println(cli.Field("Timezone", *saved.Timezone))
	}

	if app.HasToken != nil {
		token := "missing"
		if app.HasToken() {
			token = "present"
		}
		app.Println(cli.Field("API token", token))
	}
	return nil
}

type TestCmd struct {
	Message string `help:"Text to send." default:"This is a test reminder from dayglow."`
}

func (c *TestCmd) Run(app *cli.Context, ctx context.Context) error {
	if app.Notifier == nil {
		return errors.New("no notifier available")
	}
	msg := c.Message
	if msg == "" {
		msg = testMessage
	}
	if err := app.Notifier.Notify(ctx, msg); err != nil {
		return fmt.Errorf("failed to send test reminder: %w", err)
	}
	app.Println(cli.OK("Test reminder sent."))
	return nil
}
