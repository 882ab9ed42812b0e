package system

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/dayglow/internal/backup"
	"github.com/julianstephens/dayglow/internal/cli"
	"github.com/julianstephens/dayglow/internal/constants"
	"github.com/julianstephens/dayglow/internal/keyring"
	"github.com/julianstephens/dayglow/internal/logger"
	"github.com/julianstephens/dayglow/internal/storage/sqlite"
)

type LogoutCmd struct {
	KeepToken bool `help:"Keep the API token in the keyring."`
	NoBackup  bool `help:"Skip the database snapshot taken before clearing data."`
}

// Run turns off an active reminder before clearing the user-scoped keys.
// A SQLite store is snapshotted first.
func (c *LogoutCmd) Run(app *cli.Context, ctx context.Context) error {
	if saved, ok := app.Settings().Saved(); ok && saved.DailyReminder {
		if res := app.Orchestrator.Unsubscribe(ctx); !res.OK {
			app.Println(cli.Fail("Could not turn off the reminder: " + res.Message))
		}
	}

	if !c.NoBackup {
		if db, ok := app.Store.Backend().(*sqlite.Store); ok {
			path, err := backup.NewManager(db.Path()).Create()
			if err != nil {
				return fmt.Errorf("failed to back up before logout: %w", err)
			}
			app.Println("Saved a backup to " + path)
		}
	}

	for _, key := range constants.UserScopedKeys {
		if !app.Store.Remove(key) {
			logger.Warn("Failed to clear key on logout", "key", key)
		}
	}

	if !c.KeepToken {
		if err := keyring.DeleteToken(); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			logger.Warn("Failed to delete API token", "error", err)
		}
	}

	app.Println(cli.OK("Logged out."))
	return nil
}
