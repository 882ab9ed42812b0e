package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/dayglow/internal/push"
	"github.com/julianstephens/dayglow/internal/storage"
	"github.com/julianstephens/dayglow/internal/streak"
)

// Notifier delivers a reminder immediately.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Context carries the services every command runs against.
type Context struct {
	Store        *storage.Store
	Orchestrator *push.Orchestrator
	Streaks      *streak.Resolver
	Notifier     Notifier
	// HasToken reports whether an API token is configured.
	HasToken func() bool
	Out      io.Writer
}

// Settings returns the notification settings facade.
func (c *Context) Settings() *push.Settings {
	return c.Orchestrator.Settings()
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Println writes a line to the command output.
func (c *Context) Println(a ...any) {
	fmt.Fprintln(c.out(), a...)
}

// Printf writes formatted text to the command output.
func (c *Context) Printf(format string, a ...any) {
	fmt.Fprintf(c.out(), format, a...)
}
