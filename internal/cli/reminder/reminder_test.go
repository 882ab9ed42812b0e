package reminder

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/julianstephens/dayglow/internal/cli"
	"github.com/julianstephens/dayglow/internal/constants"
	dgerrors "github.com/julianstephens/dayglow/internal/errors"
	"github.com/julianstephens/dayglow/internal/models"
	"github.com/julianstephens/dayglow/internal/push"
	"github.com/julianstephens/dayglow/internal/storage"
	"github.com/julianstephens/dayglow/internal/storage/memory"
	"github.com/julianstephens/dayglow/internal/streak"
)

const testVAPIDKey = "BEl62iUYgUivxIkv69yViEuiBIa-Ib9-SkvMeAtA3LFgDzkrxZJjSgSnfckjBJuBkr3qBUYIHBQFLXYp5Nksh8U"

type stubPlatform struct {
	permission constants.PermissionState
	reg        *stubRegistration
}

func (p *stubPlatform) Capabilities() push.Capabilities {
	return push.Capabilities{Notifications: true, ServiceWorker: true, PushManager: true}
}
func (p *stubPlatform) SecureContext() bool                   { return true }
func (p *stubPlatform) Permission() constants.PermissionState { return p.permission }
func (p *stubPlatform) Timezone() string                      { return "UTC" }

func (p *stubPlatform) RequestPermission(context.Context) (constants.PermissionState, error) {
	p.permission = constants.PermissionGranted
	return p.permission, nil
}

func (p *stubPlatform) Registration(context.Context) (push.Registration, error) {
	if p.reg == nil {
		return nil, nil
	}
	return p.reg, nil
}

func (p *stubPlatform) Register(context.Context, string) error {
	p.reg = &stubRegistration{}
	return nil
}

func (p *stubPlatform) Ready(ctx context.Context) (push.Registration, error) {
	return p.Registration(ctx)
}

type stubRegistration struct {
	sub *stubSubscription
}

func (r *stubRegistration) Subscription(context.Context) (push.Subscription, error) {
	if r.sub == nil {
		return nil, nil
	}
	return r.sub, nil
}

func (r *stubRegistration) Subscribe(context.Context, push.SubscribeOptions) (push.Subscription, error) {
	r.sub = &stubSubscription{reg: r}
	return r.sub, nil
}

type stubSubscription struct {
	reg *stubRegistration
}

func (s *stubSubscription) Descriptor() models.Subscription {
	return models.Subscription(`{"endpoint":"https://push.example.com/1"}`)
}

func (s *stubSubscription) Unsubscribe(context.Context) (bool, error) {
	s.reg.sub = nil
	return true, nil
}

type stubBackend struct {
	err   error
	calls int
}

func (b *stubBackend) Subscribe(context.Context, models.SubscribeRequest) (models.SettingsEnvelope, error) {
	b.calls++
	return models.SettingsEnvelope{DailyReminder: models.BoolPtr(true)}, b.err
}

func (b *stubBackend) Unsubscribe(context.Context) (models.SettingsEnvelope, error) {
	b.calls++
	return models.SettingsEnvelope{DailyReminder: models.BoolPtr(false)}, b.err
}

type stubNotifier struct {
	sent []string
	err  error
}

func (n *stubNotifier) Notify(ctx context.Context, text string) error {
	n.sent = append(n.sent, text)
	return n.err
}

type testEnv struct {
	app      *cli.Context
	platform *stubPlatform
	backend  *stubBackend
	notifier *stubNotifier
	out      *bytes.Buffer
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	kv := storage.New(memory.New())
	env := &testEnv{
		platform: &stubPlatform{permission: constants.PermissionGranted},
		backend:  &stubBackend{},
		notifier: &stubNotifier{},
		out:      &bytes.Buffer{},
	}
	env.app = &cli.Context{
		Store:        kv,
		Orchestrator: push.NewOrchestrator(env.platform, env.backend, push.NewSettings(kv), push.Config{VAPIDPublicKey: testVAPIDKey}),
		Streaks:      streak.New(kv),
		Notifier:     env.notifier,
		HasToken:     func() bool { return true },
		Out:          env.out,
	}
	return env
}

func reasonOf(t *testing.T, err error) constants.Reason {
	t.Helper()
	var re *dgerrors.ReminderError
	if !errors.As(err, &re) {
		t.Fatalf("error = %v, want *ReminderError", err)
	}
	return re.Reason
}

func TestEnableCmd(t *testing.T) {
	env := setup(t)

	cmd := &EnableCmd{Time: "08:30"}
	if err := cmd.Run(env.app, context.Background()); err != nil {
		t.Fatalf("enable failed: %v", err)
	}

	saved, ok := env.app.Settings().Saved()
	if !ok || !saved.DailyReminder || saved.Time() != "08:30" {
		t.Errorf("saved settings = %+v, want reminder on at 08:30", saved)
	}
	if !strings.Contains(env.out.String(), "08:30") {
		t.Errorf("output = %q, want the reminder time", env.out.String())
	}
}

func TestEnableCmdKeepsOtherSettings(t *testing.T) {
	env := setup(t)
	err := env.app.Settings().Save(models.NotificationSettings{
		EmailUpdates: models.BoolPtr(true),
		Timezone:     models.StringPtr("UTC"),
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := (&EnableCmd{Time: "07:00"}).Run(env.app, context.Background()); err != nil {
		t.Fatalf("enable failed: %v", err)
	}
	saved, _ := env.app.Settings().Saved()
	if saved.EmailUpdates == nil || !*saved.EmailUpdates || saved.Timezone == nil {
		t.Errorf("saved settings = %+v, want email updates and timezone kept", saved)
	}
}

func TestEnableCmdFailureSwitchesSettingOff(t *testing.T) {
	env := setup(t)
	env.backend.err = errors.New("server unavailable")

	err := (&EnableCmd{Time: "08:30"}).Run(env.app, context.Background())
	if reason := reasonOf(t, err); reason != constants.ReasonSubscribeFailed {
		t.Errorf("reason = %q, want %q", reason, constants.ReasonSubscribeFailed)
	}

	saved, ok := env.app.Settings().Saved()
	if !ok || saved.DailyReminder || saved.Time() != "08:30" {
		t.Errorf("saved settings = %+v, want reminder off with time kept", saved)
	}
}

func TestEnableCmdInvalidTime(t *testing.T) {
	env := setup(t)

	if err := (&EnableCmd{Time: "8:30pm"}).Run(env.app, context.Background()); err == nil {
		t.Fatal("enable with an invalid time should fail")
	}
	if env.backend.calls != 0 {
		t.Error("backend called for an invalid time")
	}
	if _, ok := env.app.Settings().Saved(); ok {
		t.Error("invalid settings were saved")
	}
}

func TestEnableCmdNoPrompt(t *testing.T) {
	env := setup(t)
	env.platform.permission = constants.PermissionDefault

	err := (&EnableCmd{Time: "08:30", NoPrompt: true}).Run(env.app, context.Background())
	if reason := reasonOf(t, err); reason != constants.ReasonDenied {
		t.Errorf("reason = %q, want %q", reason, constants.ReasonDenied)
	}
	if env.platform.permission != constants.PermissionDefault {
		t.Error("permission was requested with --no-prompt")
	}
}

func TestDisableCmd(t *testing.T) {
	env := setup(t)
	if err := (&EnableCmd{Time: "08:30"}).Run(env.app, context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := (&DisableCmd{}).Run(env.app, context.Background()); err != nil {
		t.Fatalf("disable failed: %v", err)
	}
	saved, _ := env.app.Settings().Saved()
	if saved.DailyReminder {
		t.Error("saved reminder still on after disable")
	}
	if env.platform.reg.sub != nil {
		t.Error("platform subscription still present after disable")
	}
}

func TestDisableCmdBackendFailure(t *testing.T) {
	env := setup(t)
	if err := (&EnableCmd{Time: "08:30"}).Run(env.app, context.Background()); err != nil {
		t.Fatal(err)
	}
	env.backend.err = errors.New("network down")

	err := (&DisableCmd{}).Run(env.app, context.Background())
	if reason := reasonOf(t, err); reason != constants.ReasonBackendFailed {
		t.Errorf("reason = %q, want %q", reason, constants.ReasonBackendFailed)
	}
	saved, _ := env.app.Settings().Saved()
	if !saved.DailyReminder {
		t.Error("saved reminder switched off although the server still has it")
	}
}

func TestRestoreCmd(t *testing.T) {
	env := setup(t)

	if err := (&RestoreCmd{}).Run(env.app, context.Background()); err != nil {
		t.Fatalf("restore with nothing saved should be a no-op, got %v", err)
	}
	if env.backend.calls != 0 {
		t.Error("restore reached the backend with nothing saved")
	}

	err := env.app.Settings().Save(models.NotificationSettings{DailyReminder: true, ReminderTime: models.StringPtr("06:00")})
	if err != nil {
		t.Fatal(err)
	}
	if err := (&RestoreCmd{}).Run(env.app, context.Background()); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if env.backend.calls != 1 {
		t.Errorf("backend calls = %d, want 1", env.backend.calls)
	}
}

func TestRestoreCmdFailure(t *testing.T) {
	env := setup(t)
	_ = env.app.Settings().Save(models.NotificationSettings{DailyReminder: true, ReminderTime: models.StringPtr("06:00")})
	env.backend.err = errors.New("boom")

	if err := (&RestoreCmd{}).Run(env.app, context.Background()); err == nil {
		t.Error("restore should report a backend failure")
	}
}

func TestStatusCmd(t *testing.T) {
	env := setup(t)
	if err := (&EnableCmd{Time: "21:00"}).Run(env.app, context.Background()); err != nil {
		t.Fatal(err)
	}
	env.out.Reset()

	if err := (&StatusCmd{}).Run(env.app, context.Background()); err != nil {
		t.Fatalf("status failed: %v", err)
	}
	out := env.out.String()
	for _, want := range []string{"subscribed", "on at 21:00", "present"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
}

func TestTestCmd(t *testing.T) {
	env := setup(t)

	if err := (&TestCmd{Message: "hello"}).Run(env.app, context.Background()); err != nil {
		t.Fatalf("test failed: %v", err)
	}
	if len(env.notifier.sent) != 1 || env.notifier.sent[0] != "hello" {
		t.Errorf("sent = %v, want [hello]", env.notifier.sent)
	}

	env.notifier.err = errors.New("agent not running")
	if err := (&TestCmd{}).Run(env.app, context.Background()); err == nil {
		t.Error("test should fail when the notifier fails")
	}
	if env.notifier.sent[1] != testMessage {
		t.Errorf("default message = %q, want %q", env.notifier.sent[1], testMessage)
	}

	env.app.Notifier = nil
	if err := (&TestCmd{}).Run(env.app, context.Background()); err == nil {
		t.Error("test should fail without a notifier")
	}
}
