package push

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/dayglow/internal/constants"
	"github.com/julianstephens/dayglow/internal/logger"
	"github.com/julianstephens/dayglow/internal/models"
	"github.com/julianstephens/dayglow/internal/validation"
)

// Config holds the orchestrator's deployment settings.
type Config struct {
	VAPIDPublicKey string
	WorkerScript   string
}

// Orchestrator manages the single daily-reminder push subscription for this
// profile: permission, worker registration, the platform subscription, and
// its server-side record.
//
// Calls are serialized. A call waiting for an earlier one gives up when its
// context is done.
type Orchestrator struct {
	platform Platform
	backend  Backend
	settings *Settings
	cfg      Config
	flight   chan struct{}
}

func NewOrchestrator(platform Platform, backend Backend, settings *Settings, cfg Config) *Orchestrator {
	if cfg.WorkerScript == "" {
		cfg.WorkerScript = constants.DefaultWorker
	}
	return &Orchestrator{
		platform: platform,
		backend:  backend,
		settings: settings,
		cfg:      cfg,
		flight:   make(chan struct{}, 1),
	}
}

// SubscribeOption adjusts a Subscribe call.
type SubscribeOption func(*subscribeConfig)

type subscribeConfig struct {
	skipPermissionPrompt bool
}

// SkipPermissionPrompt fails with ReasonDenied instead of prompting when
// permission is not already granted.
func SkipPermissionPrompt() SubscribeOption {
	return func(c *subscribeConfig) {
		c.skipPermissionPrompt = true
	}
}

func (o *Orchestrator) acquire(ctx context.Context) error {
	select {
	case o.flight <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Orchestrator) release() {
	<-o.flight
}

// gate applies the capability checks every operation starts with.
func (o *Orchestrator) gate() (Result, bool) {
	if !o.platform.Capabilities().Supported() {
		return fail(constants.ReasonUnsupported, msgUnsupported), false
	}
	if !o.platform.SecureContext() {
		return fail(constants.ReasonInsecure, msgInsecure), false
	}
	return Result{}, true
}

// Subscribe turns on the daily reminder at reminderTime (HH:MM): it obtains
// permission, a worker registration and a push subscription, then registers
// the subscription with the backend.
func (o *Orchestrator) Subscribe(ctx context.Context, reminderTime string, opts ...SubscribeOption) Result {
	if err := o.acquire(ctx); err != nil {
		return fail(constants.ReasonSubscribeFailed, err.Error())
	}
	defer o.release()

	var cfg subscribeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return o.subscribe(ctx, reminderTime, cfg)
}

func (o *Orchestrator) subscribe(ctx context.Context, reminderTime string, cfg subscribeConfig) Result {
	if res, ok := o.gate(); !ok {
		return res
	}
	if !validation.ValidateTimeFormat(reminderTime) {
		return fail(constants.ReasonSubscribeFailed, msgInvalidTime)
	}

	if res, ok := o.ensurePermission(ctx, cfg); !ok {
		return res
	}

	reg, err := o.registration(ctx)
	if err != nil {
		logger.Warn("Worker registration failed", "script", o.cfg.WorkerScript, "error", err)
		return fail(constants.ReasonUnavailable, err.Error())
	}

	sub, err := o.ensureSubscription(ctx, reg)
	if err != nil {
		logger.Warn("Push subscription failed", "error", err)
		if errors.Is(err, ErrMissingVAPIDKey) {
			return fail(constants.ReasonSubscribeFailed, msgNotConfigured)
		}
		return fail(constants.ReasonSubscribeFailed, err.Error())
	}

	timezone := o.platform.Timezone()
	if timezone == "" {
		timezone = constants.FallbackTimezone
	}

	_, err = o.backend.Subscribe(ctx, models.SubscribeRequest{
		Subscription: sub.Descriptor(),
		ReminderTime: reminderTime,
		Timezone:     timezone,
	})
	if err != nil {
		logger.Warn("Backend subscribe failed", "error", err)
		return fail(constants.ReasonSubscribeFailed, err.Error())
	}

	logger.Info("Daily reminder subscribed", "time", reminderTime, "timezone", timezone)
	return success(fmt.Sprintf("Daily reminder set for %s (%s).", reminderTime, timezone))
}

func (o *Orchestrator) ensurePermission(ctx context.Context, cfg subscribeConfig) (Result, bool) {
	permission := o.platform.Permission()
	if permission == constants.PermissionGranted {
		return Result{}, true
	}
	if cfg.skipPermissionPrompt {
		return fail(constants.ReasonDenied, msgNotGranted), false
	}
	// The platform will not prompt again once denied
	if permission == constants.PermissionDenied {
		return fail(constants.ReasonDenied, msgBlocked), false
	}

	answer, err := o.platform.RequestPermission(ctx)
	if err != nil {
		logger.Warn("Permission request failed", "error", err)
		return fail(constants.ReasonDenied, fmt.Sprintf("%s %v", msgDismissed, err)), false
	}
	switch answer {
	case constants.PermissionGranted:
		return Result{}, true
	case constants.PermissionDenied:
		return fail(constants.ReasonDenied, msgDeniedByUser), false
	default:
		return fail(constants.ReasonDenied, msgDismissed), false
	}
}

// registration reuses the existing worker registration or registers the
// worker script and waits for it to become ready.
func (o *Orchestrator) registration(ctx context.Context) (Registration, error) {
	reg, err := o.platform.Registration(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to look up worker registration: %w", err)
	}
	if reg != nil {
		return reg, nil
	}

	if err := o.platform.Register(ctx, o.cfg.WorkerScript); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", o.cfg.WorkerScript, err)
	}
	reg, err = o.platform.Ready(ctx)
	if err != nil {
		return nil, fmt.Errorf("worker did not become ready: %w", err)
	}
	if reg == nil {
		return nil, fmt.Errorf("worker did not become ready")
	}
	return reg, nil
}

// ensureSubscription returns the platform's current subscription, creating
// one only when none exists.
func (o *Orchestrator) ensureSubscription(ctx context.Context, reg Registration) (Subscription, error) {
	existing, err := reg.Subscription(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read push subscription: %w", err)
	}
	if existing != nil {
		logger.Debug("Reusing existing push subscription")
		return existing, nil
	}

	key, err := DecodeVAPIDKey(o.cfg.VAPIDPublicKey)
	if err != nil {
		return nil, err
	}

	sub, err := reg.Subscribe(ctx, SubscribeOptions{
		UserVisibleOnly:      true,
		ApplicationServerKey: key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create push subscription: %w", err)
	}
	if sub == nil {
		return nil, fmt.Errorf("failed to create push subscription")
	}
	return sub, nil
}

// Unsubscribe turns the daily reminder off. Cancelling the platform
// subscription is best effort; deleting the server record is not, so a
// backend failure is reported even when the local cancel worked.
func (o *Orchestrator) Unsubscribe(ctx context.Context) Result {
	if err := o.acquire(ctx); err != nil {
		return fail(constants.ReasonBackendFailed, err.Error())
	}
	defer o.release()

	if !o.platform.Capabilities().Supported() {
		return fail(constants.ReasonUnsupported, msgUnsupported)
	}

	o.cancelPlatformSubscription(ctx)

	if _, err := o.backend.Unsubscribe(ctx); err != nil {
		logger.Error("Backend unsubscribe failed", "error", err)
		return fail(constants.ReasonBackendFailed, err.Error())
	}

	logger.Info("Daily reminder unsubscribed")
	return success(msgReminderOff)
}

func (o *Orchestrator) cancelPlatformSubscription(ctx context.Context) {
	reg, err := o.platform.Registration(ctx)
	if err != nil {
		logger.Warn("Failed to look up worker registration", "error", err)
		return
	}
	if reg == nil {
		return
	}

	sub, err := reg.Subscription(ctx)
	if err != nil {
		logger.Warn("Failed to read push subscription", "error", err)
		return
	}
	if sub == nil {
		return
	}

	if _, err := sub.Unsubscribe(ctx); err != nil {
		logger.Warn("Failed to cancel push subscription", "error", err)
	}
}

// Restore re-establishes the subscription at startup when the saved settings
// ask for a reminder and permission was granted earlier. It never prompts.
func (o *Orchestrator) Restore(ctx context.Context) Result {
	if err := o.acquire(ctx); err != nil {
		return fail(constants.ReasonSubscribeFailed, err.Error())
	}
	defer o.release()

	if !o.platform.Capabilities().Supported() {
		return fail(constants.ReasonDisabled, msgUnsupported)
	}

	saved, ok := o.settings.Saved()
	if !ok || !saved.Active() {
		return fail(constants.ReasonDisabled, msgRestoreOff)
	}

	if o.platform.Permission() != constants.PermissionGranted {
		return fail(constants.ReasonPermission, msgRestoreNoGrant)
	}

	return o.subscribe(ctx, saved.Time(), subscribeConfig{skipPermissionPrompt: true})
}

// State reports where the reminder stands without changing anything.
func (o *Orchestrator) State(ctx context.Context) State {
	if !o.platform.Capabilities().Supported() {
		return StateUnsupported
	}
	if !o.platform.SecureContext() {
		return StateInsecure
	}

	switch o.platform.Permission() {
	case constants.PermissionDenied:
		return StatePermissionDenied
	case constants.PermissionGranted:
	default:
		return StatePermissionPrompt
	}

	reg, err := o.platform.Registration(ctx)
	if err != nil || reg == nil {
		return StateNotSubscribed
	}
	sub, err := reg.Subscription(ctx)
	if err != nil || sub == nil {
		return StateNotSubscribed
	}
	return StateSubscribed
}

// Settings returns the settings store the orchestrator restores from.
func (o *Orchestrator) Settings() *Settings {
	return o.settings
}
