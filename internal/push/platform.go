package push

import (
	"context"

	"github.com/julianstephens/dayglow/internal/constants"
	"github.com/julianstephens/dayglow/internal/models"
)

// Capabilities lists the platform features a daily reminder needs.
type Capabilities struct {
	Notifications bool // permission query/request
	ServiceWorker bool // worker registration
	PushManager   bool // push subscriptions
}

// Supported reports whether all three capabilities are present.
func (c Capabilities) Supported() bool {
	return c.Notifications && c.ServiceWorker && c.PushManager
}

// Platform is the capability provider the orchestrator runs against. The
// browser build implements it over the Web APIs; the CLI implements it over
// the terminal and the local reminder agent.
type Platform interface {
	Capabilities() Capabilities
	// SecureContext reports whether push may be used from this context.
	SecureContext() bool
	Permission() constants.PermissionState
	// RequestPermission prompts the user and blocks until they answer. A
	// dismissed prompt returns PermissionDefault.
	RequestPermission(ctx context.Context) (constants.PermissionState, error)
	// Registration returns the existing worker registration, or nil.
	Registration(ctx context.Context) (Registration, error)
	Register(ctx context.Context, scriptURL string) error
	// Ready blocks until a registration is active and returns it.
	Ready(ctx context.Context) (Registration, error)
	// Timezone returns the IANA zone of the user's locale, or "" if unknown.
	Timezone() string
}

// SubscribeOptions mirrors PushSubscriptionOptionsInit.
type SubscribeOptions struct {
	UserVisibleOnly      bool
	ApplicationServerKey []byte
}

// Registration is an active worker registration and its push manager.
type Registration interface {
	// Subscription returns the current push subscription, or nil.
	Subscription(ctx context.Context) (Subscription, error)
	Subscribe(ctx context.Context, opts SubscribeOptions) (Subscription, error)
}

// Subscription is a live platform push subscription.
type Subscription interface {
	Descriptor() models.Subscription
	Unsubscribe(ctx context.Context) (bool, error)
}

// Backend persists the subscription server-side.
type Backend interface {
	Subscribe(ctx context.Context, req models.SubscribeRequest) (models.SettingsEnvelope, error)
	Unsubscribe(ctx context.Context) (models.SettingsEnvelope, error)
}
