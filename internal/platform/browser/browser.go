//go:build js && wasm

// Package browser provides the push capability provider for the wasm build,
// backed by the Notification, ServiceWorker, Push and Intl Web APIs.
package browser

import (
	"context"
	"errors"
	"syscall/js"

	"github.com/julianstephens/dayglow/internal/constants"
	"github.com/julianstephens/dayglow/internal/models"
	"github.com/julianstephens/dayglow/internal/push"
)

type Platform struct {
	global js.Value
}

var _ push.Platform = (*Platform)(nil)

func New() *Platform {
	return &Platform{global: js.Global()}
}

func (p *Platform) serviceWorker() js.Value {
	navigator := p.global.Get("navigator")
	if !present(navigator) {
		return js.Undefined()
	}
	return navigator.Get("serviceWorker")
}

func (p *Platform) Capabilities() push.Capabilities {
	return push.Capabilities{
		Notifications: present(p.global.Get("Notification")),
		ServiceWorker: present(p.serviceWorker()),
		PushManager:   present(p.global.Get("PushManager")),
	}
}

// SecureContext requires a secure, top-level browsing context.
func (p *Platform) SecureContext() bool {
	secure := p.global.Get("isSecureContext")
	if secure.Type() != js.TypeBoolean || !secure.Bool() {
		return false
	}
	top, err := try(func() js.Value { return p.global.Get("top") })
	if err != nil {
		return false
	}
	return top.Equal(p.global.Get("self"))
}

func (p *Platform) Permission() constants.PermissionState {
	n := p.global.Get("Notification")
	if !present(n) {
		return constants.PermissionDefault
	}
	return toPermission(n.Get("permission"))
}

func toPermission(v js.Value) constants.PermissionState {
	if v.Type() != js.TypeString {
		return constants.PermissionDefault
	}
	switch state := constants.PermissionState(v.String()); state {
	case constants.PermissionGranted, constants.PermissionDenied:
		return state
	default:
		return constants.PermissionDefault
	}
}

func (p *Platform) RequestPermission(ctx context.Context) (constants.PermissionState, error) {
	promise, err := try(func() js.Value {
		return p.global.Get("Notification").Call("requestPermission")
	})
	if err != nil {
		return constants.PermissionDefault, err
	}
	v, err := await(ctx, promise)
	if err != nil {
		return constants.PermissionDefault, err
	}
	return toPermission(v), nil
}

func (p *Platform) Registration(ctx context.Context) (push.Registration, error) {
	promise, err := try(func() js.Value { return p.serviceWorker().Call("getRegistration") })
	if err != nil {
		return nil, err
	}
	reg, err := await(ctx, promise)
	if err != nil {
		return nil, err
	}
	if !present(reg) {
		return nil, nil
	}
	return &registration{value: reg}, nil
}

func (p *Platform) Register(ctx context.Context, scriptURL string) error {
	promise, err := try(func() js.Value { return p.serviceWorker().Call("register", scriptURL) })
	if err != nil {
		return err
	}
	_, err = await(ctx, promise)
	return err
}

func (p *Platform) Ready(ctx context.Context) (push.Registration, error) {
	reg, err := await(ctx, p.serviceWorker().Get("ready"))
	if err != nil {
		return nil, err
	}
	if !present(reg) {
		return nil, errors.New("service worker has no active registration")
	}
	return &registration{value: reg}, nil
}

func (p *Platform) Timezone() string {
	tz, err := try(func() js.Value {
		return p.global.Get("Intl").Call("DateTimeFormat").Call("resolvedOptions").Get("timeZone")
	})
	if err != nil || tz.Type() != js.TypeString {
		return ""
	}
	return tz.String()
}

type registration struct {
	value js.Value
}

func (r *registration) pushManager() js.Value {
	return r.value.Get("pushManager")
}

func (r *registration) Subscription(ctx context.Context) (push.Subscription, error) {
	promise, err := try(func() js.Value { return r.pushManager().Call("getSubscription") })
	if err != nil {
		return nil, err
	}
	sub, err := await(ctx, promise)
	if err != nil {
		return nil, err
	}
	if !present(sub) {
		return nil, nil
	}
	return &subscription{value: sub}, nil
}

func (r *registration) Subscribe(ctx context.Context, opts push.SubscribeOptions) (push.Subscription, error) {
	key := js.Global().Get("Uint8Array").New(len(opts.ApplicationServerKey))
	js.CopyBytesToJS(key, opts.ApplicationServerKey)

	options := js.Global().Get("Object").New()
	options.Set("userVisibleOnly", opts.UserVisibleOnly)
	options.Set("applicationServerKey", key)

	promise, err := try(func() js.Value { return r.pushManager().Call("subscribe", options) })
	if err != nil {
		return nil, err
	}
	sub, err := await(ctx, promise)
	if err != nil {
		return nil, err
	}
	if !present(sub) {
		return nil, errors.New("push manager returned no subscription")
	}
	return &subscription{value: sub}, nil
}

type subscription struct {
	value js.Value
}

// Descriptor serializes the subscription through its toJSON method.
func (s *subscription) Descriptor() models.Subscription {
	raw, err := try(func() js.Value { return js.Global().Get("JSON").Call("stringify", s.value) })
	if err != nil || raw.Type() != js.TypeString {
		return nil
	}
	return models.Subscription(raw.String())
}

func (s *subscription) Unsubscribe(ctx context.Context) (bool, error) {
	promise, err := try(func() js.Value { return s.value.Call("unsubscribe") })
	if err != nil {
		return false, err
	}
	ok, err := await(ctx, promise)
	if err != nil {
		return false, err
	}
	return ok.Type() == js.TypeBoolean && ok.Bool(), nil
}
