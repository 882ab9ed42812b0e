// Package terminal provides the push capability provider for the CLI. The
// terminal stands in for the browser's permission prompt and the local
// dayglow-agent stands in for the service worker.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/julianstephens/dayglow/internal/constants"
	"github.com/julianstephens/dayglow/internal/logger"
	"github.com/julianstephens/dayglow/internal/push"
	"github.com/julianstephens/dayglow/internal/storage"
)

// Prompter asks the user to allow reminders. It returns false with no error
// when the user declines.
type Prompter func(ctx context.Context) (bool, error)

// Platform implements push.Platform for an interactive terminal.
type Platform struct {
	kv          storage.KV
	apiURL      string
	interactive func() bool
	prompt      Prompter
	httpClient  *http.Client
}

var _ push.Platform = (*Platform)(nil)

type Option func(*Platform)

// WithPrompter replaces the huh confirmation prompt.
func WithPrompter(p Prompter) Option {
	return func(pl *Platform) {
		pl.prompt = p
	}
}

// WithInteractive overrides terminal detection.
func WithInteractive(fn func() bool) Option {
	return func(pl *Platform) {
		pl.interactive = fn
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(pl *Platform) {
		pl.httpClient = hc
	}
}

// New returns a terminal platform that persists its state in kv and treats
// apiURL as the page origin for secure-context checks.
func New(kv storage.KV, apiURL string, opts ...Option) *Platform {
	p := &Platform{
		kv:          kv,
		apiURL:      apiURL,
		interactive: stdinIsTerminal,
		prompt:      confirmPrompt,
		httpClient:  &http.Client{Timeout: constants.HTTPTimeout},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func confirmPrompt(ctx context.Context) (bool, error) {
	allow := true
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Allow dayglow to send you a daily reminder?").
				Affirmative("Allow").
				Negative("Block").
				Value(&allow),
		),
	).WithTheme(huh.ThemeDracula())
	if err := form.RunWithContext(ctx); err != nil {
		return false, err
	}
	return allow, nil
}

// Capabilities reports notification support when a user can answer the
// prompt, and worker/push support when the agent's config dir resolves.
func (p *Platform) Capabilities() push.Capabilities {
	_, err := AgentConfigDir()
	agentReachable := err == nil
	return push.Capabilities{
		Notifications: p.interactive() || p.Permission() != constants.PermissionDefault,
		ServiceWorker: agentReachable,
		PushManager:   agentReachable,
	}
}

// SecureContext reports whether the API is served over https or from a
// loopback host.
func (p *Platform) SecureContext() bool {
	return IsSecureOrigin(p.apiURL)
}

// IsSecureOrigin applies the browser's potentially-trustworthy origin rule.
func IsSecureOrigin(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme == "https" {
		return true
	}
	if u.Scheme != "http" {
		return false
	}

	host := u.Hostname()
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (p *Platform) Permission() constants.PermissionState {
	value, ok := p.kv.Get(constants.KeyPermission)
	if !ok {
		return constants.PermissionDefault
	}
	switch state := constants.PermissionState(value); state {
	case constants.PermissionGranted, constants.PermissionDenied:
		return state
	default:
		return constants.PermissionDefault
	}
}

// RequestPermission prompts once. An aborted prompt leaves the permission at
// default so a later call may ask again.
func (p *Platform) RequestPermission(ctx context.Context) (constants.PermissionState, error) {
	if !p.interactive() {
		return constants.PermissionDefault, errors.New("cannot prompt without an interactive terminal")
	}

	allow, err := p.prompt(ctx)
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) || errors.Is(err, context.Canceled) {
			logger.Debug("Permission prompt dismissed")
			return constants.PermissionDefault, nil
		}
		return constants.PermissionDefault, err
	}

	state := constants.PermissionDenied
	if allow {
		state = constants.PermissionGranted
	}
	if !p.kv.Set(constants.KeyPermission, string(state)) {
		logger.Warn("Permission decision not persisted", "permission", state)
	}
	return state, nil
}

// ResetPermission forgets the stored decision.
func (p *Platform) ResetPermission() bool {
	return p.kv.Remove(constants.KeyPermission)
}

func (p *Platform) Registration(ctx context.Context) (push.Registration, error) {
	script, ok := p.kv.Get(constants.KeyPushRegistration)
	if !ok || script == "" {
		return nil, nil
	}
	return &registration{platform: p, script: script}, nil
}

// Register records the worker script the agent should run reminders through.
func (p *Platform) Register(ctx context.Context, scriptURL string) error {
	if strings.TrimSpace(scriptURL) == "" {
		return errors.New("worker script is empty")
	}
	if !p.kv.Set(constants.KeyPushRegistration, scriptURL) {
		return fmt.Errorf("failed to record registration for %s", scriptURL)
	}
	return nil
}

// Ready confirms the agent is running and returns the registration.
func (p *Platform) Ready(ctx context.Context) (push.Registration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := locateAgent(); err != nil {
		return nil, err
	}
	return p.Registration(ctx)
}

// Timezone returns the IANA name from TZ or the local zone, or "" when only
// an unnamed local zone is known.
func (p *Platform) Timezone() string {
	if tz := strings.TrimPrefix(os.Getenv("TZ"), ":"); tz != "" {
		if _, err := time.LoadLocation(tz); err == nil {
			return tz
		}
	}
	if name := time.Local.String(); name != "" && name != "Local" {
		return name
	}
	return ""
}

// Notify sends text to the running agent as a test reminder.
func (p *Platform) Notify(ctx context.Context, text string) error {
	a, err := locateAgent()
	if err != nil {
		return err
	}
	return a.notify(ctx, p.httpClient, text)
}

// Forget removes every trace of the local registration and subscription.
func (p *Platform) Forget() {
	p.kv.Remove(constants.KeyPushSubscription)
	p.kv.Remove(constants.KeyPushRegistration)
}
