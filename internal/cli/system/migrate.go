package system

import (
	"fmt"

	"github.com/julianstephens/dayglow/internal/cli"
	"github.com/julianstephens/dayglow/internal/storage"
)

// schemaVersioner is implemented by the SQL-backed stores.
type schemaVersioner interface {
	SchemaVersion() (current, latest int, err error)
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(app *cli.Context) error {
	if sv, ok := app.Store.Backend().(schemaVersioner); ok {
		current, latest, err := sv.SchemaVersion()
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		app.Printf("Schema version %d (latest %d)\n", current, latest)
	}

	count := storage.MigrateLegacyKeys(app.Store)
	if count == 0 {
		app.Println("No legacy keys to migrate. Storage is up to date.")
	} else {
		app.Println(cli.OK(fmt.Sprintf("Migrated %d legacy key(s).", count)))
	}
	return nil
}
