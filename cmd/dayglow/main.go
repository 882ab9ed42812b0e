package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/dayglow/internal/api"
	"github.com/julianstephens/dayglow/internal/cli"
	"github.com/julianstephens/dayglow/internal/cli/reminder"
	"github.com/julianstephens/dayglow/internal/cli/settings"
	"github.com/julianstephens/dayglow/internal/cli/streaks"
	"github.com/julianstephens/dayglow/internal/cli/system"
	"github.com/julianstephens/dayglow/internal/constants"
	dgerrors "github.com/julianstephens/dayglow/internal/errors"
	"github.com/julianstephens/dayglow/internal/keyring"
	"github.com/julianstephens/dayglow/internal/logger"
	"github.com/julianstephens/dayglow/internal/platform/terminal"
	"github.com/julianstephens/dayglow/internal/push"
	"github.com/julianstephens/dayglow/internal/storage"
	"github.com/julianstephens/dayglow/internal/streak"
)

var CLI struct {
	Version   kong.VersionFlag
	Store     string `help:"Store location: SQLite path, *.json file, 'memory', or a PostgreSQL URL without an embedded password. Falls back to the keyring connection string, then ${default_store}." env:"DAYGLOW_STORE"`
	APIURL    string `name:"api-url" help:"Notification backend base URL." env:"DAYGLOW_API_URL" default:"${default_api_url}"`
	VAPIDKey  string `name:"vapid-key" help:"VAPID application server public key (URL-safe base64)." env:"DAYGLOW_VAPID_PUBLIC_KEY"`
	Worker    string `help:"Reminder worker script registered with the agent." env:"DAYGLOW_WORKER_SCRIPT" default:"${default_worker}"`
	Debug     bool   `help:"Log to stderr at debug level."`
	NoRestore bool   `help:"Skip restoring the reminder subscription at startup."`

	Reminder reminder.ReminderCmd `cmd:"" help:"Manage the daily reminder."`
	Streak   streaks.StreakCmd    `cmd:"" help:"Show the displayed streak." default:"1"`
	Log      streaks.LogCmd       `cmd:"" help:"Record today's check-in."`
	Settings settings.SettingsCmd `cmd:"" help:"Show or change notification settings."`
	Token    system.TokenCmd      `cmd:"" help:"Manage the API token."`
	Keyring  system.KeyringCmd    `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Migrate  system.MigrateCmd    `cmd:"" help:"Apply schema migrations and move legacy keys."`
	Logout   system.LogoutCmd     `cmd:"" help:"Turn off reminders and clear user data."`
}

// Commands that manage the reminder or credentials themselves skip the boot restore.
var skipRestore = map[string]bool{
	"reminder": true,
	"token":    true,
	"keyring":  true,
	"migrate":  true,
	"logout":   true,
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Daily check-in streaks and reminder notifications"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":         constants.Version,
			"default_store":   constants.DefaultStorePath,
			"default_api_url": constants.DefaultAPIURL,
			"default_worker":  constants.DefaultWorker,
		},
	)

	configDir, err := os.UserConfigDir()
	if err != nil {
		dgerrors.Fatal(fmt.Errorf("failed to resolve config directory: %w", err))
	}
	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: filepath.Join(configDir, constants.AppName),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}

	store, err := openStore(CLI.Store)
	if err != nil {
		dgerrors.Fatal(err)
	}
	defer store.Close()

	if n := storage.MigrateLegacyKeys(store); n > 0 {
		logger.Info("Migrated legacy keys", "count", n)
	}

	platform := terminal.New(store, CLI.APIURL)
	orchestrator := push.NewOrchestrator(
		platform,
		api.New(CLI.APIURL, store),
		push.NewSettings(store),
		push.Config{VAPIDPublicKey: CLI.VAPIDKey, WorkerScript: CLI.Worker},
	)

	app := &cli.Context{
		Store:        store,
		Orchestrator: orchestrator,
		Streaks:      streak.New(store),
		Notifier:     platform,
		HasToken:     keyring.HasToken,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	kctx.BindTo(ctx, (*context.Context)(nil))

	if !CLI.NoRestore && !skipRestore[topCommand(kctx.Command())] {
		restore(ctx, orchestrator)
	}

	if err := kctx.Run(app); err != nil {
		store.Close()
		dgerrors.Fatal(err)
	}
}

// openStore resolves the store: an explicit --store wins, then a connection
// string saved in the keyring, then the default SQLite path.
func openStore(dsn string) (*storage.Store, error) {
	if dsn != "" {
		return storage.Open(dsn)
	}

	connStr, err := keyring.GetConnectionString()
	switch {
	case err == nil:
		logger.Debug("Using PostgreSQL connection string from keyring")
		return storage.OpenPostgres(connStr)
	case !errors.Is(err, keyring.ErrNotFound):
		logger.Debug("Keyring lookup failed", "error", err)
	}
	return storage.Open(constants.DefaultStorePath)
}

func restore(ctx context.Context, o *push.Orchestrator) {
	ctx, cancel := context.WithTimeout(ctx, constants.HTTPTimeout)
	defer cancel()

	res := o.Restore(ctx)
	switch {
	case res.OK:
		logger.Debug("Reminder subscription restored")
	case res.Reason == constants.ReasonDisabled:
		logger.Debug("Reminder restore skipped", "message", res.Message)
	default:
		logger.Warn("Reminder restore failed", "reason", res.Reason, "message", res.Message)
	}
}

func topCommand(command string) string {
	name, _, _ := strings.Cut(command, " ")
	return name
}
