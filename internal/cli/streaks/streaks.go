package streaks

import (
	"errors"
	"fmt"

	"github.com/julianstephens/dayglow/internal/cli"
)

type StreakCmd struct {
	Raw int `help:"Streak count reported by the server." default:"0"`
}

func (c *StreakCmd) Run(app *cli.Context) error {
	shown := app.Streaks.DisplayedStreak(c.Raw)

	app.Println(cli.Field("Today", app.Streaks.TodayKey()))
	if last, ok := app.Streaks.LastLogDate(); ok {
		app.Println(cli.Field("Last log", last))
	} else {
		app.Println(cli.Field("Last log", "never"))
	}
	app.Println(cli.Field("Streak", fmt.Sprintf("%d", shown)))

	if !app.Streaks.HasLoggedToday() {
		app.Println(cli.Fail("Not logged today. Run 'dayglow log' to keep your streak."))
	}
	return nil
}

type LogCmd struct{}

func (c *LogCmd) Run(app *cli.Context) error {
	if app.Streaks.HasLoggedToday() {
		app.Println(cli.OK("Already logged " + app.Streaks.TodayKey() + "."))
		return nil
	}
	if !app.Streaks.MarkLoggedToday() {
		return errors.New("failed to record today's log; storage is unavailable")
	}
	app.Println(cli.OK("Logged " + app.Streaks.TodayKey() + "."))
	return nil
}
