package push

import (
	"context"
	"errors"
	"sync"

	"github.com/julianstephens/dayglow/internal/constants"
	"github.com/julianstephens/dayglow/internal/models"
	"github.com/julianstephens/dayglow/internal/storage"
	"github.com/julianstephens/dayglow/internal/storage/memory"
)

const testVAPIDKey = "BEl62iUYgUivxIkv69yViEuiBIa-Ib9-SkvMeAtA3LFgDzkrxZJjSgSnfckjBJuBkr3qBUYIHBQFLXYp5Nksh8U"

var errPlatform = errors.New("platform failure")

type fakePlatform struct {
	mu sync.Mutex

	caps       Capabilities
	secure     bool
	permission constants.PermissionState
	answer     constants.PermissionState
	answerErr  error
	timezone   string

	registration *fakeRegistration
	lookupErr    error
	registerErr  error
	readyErr     error

	requestCalls  int
	registerCalls int
	registered    string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		caps:       Capabilities{Notifications: true, ServiceWorker: true, PushManager: true},
		secure:     true,
		permission: constants.PermissionGranted,
		timezone:   "America/Chicago",
	}
}

func (p *fakePlatform) Capabilities() Capabilities { return p.caps }
func (p *fakePlatform) SecureContext() bool        { return p.secure }
func (p *fakePlatform) Timezone() string           { return p.timezone }

func (p *fakePlatform) Permission() constants.PermissionState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.permission
}

func (p *fakePlatform) RequestPermission(ctx context.Context) (constants.PermissionState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requestCalls++
	if p.answerErr != nil {
		return constants.PermissionDefault, p.answerErr
	}
	p.permission = p.answer
	return p.answer, nil
}

func (p *fakePlatform) Registration(ctx context.Context) (Registration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lookupErr != nil {
		return nil, p.lookupErr
	}
	if p.registration == nil {
		return nil, nil
	}
	return p.registration, nil
}

func (p *fakePlatform) Register(ctx context.Context, scriptURL string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registerCalls++
	p.registered = scriptURL
	if p.registerErr != nil {
		return p.registerErr
	}
	p.registration = &fakeRegistration{}
	return nil
}

func (p *fakePlatform) Ready(ctx context.Context) (Registration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.readyErr != nil {
		return nil, p.readyErr
	}
	if p.registration == nil {
		return nil, nil
	}
	return p.registration, nil
}

type fakeRegistration struct {
	mu sync.Mutex

	subscription *fakeSubscription
	getErr       error
	subscribeErr error

	subscribeCalls int
	lastOptions    SubscribeOptions
}

func (r *fakeRegistration) Subscription(ctx context.Context) (Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	if r.subscription == nil {
		return nil, nil
	}
	return r.subscription, nil
}

func (r *fakeRegistration) Subscribe(ctx context.Context, opts SubscribeOptions) (Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribeCalls++
	r.lastOptions = opts
	if r.subscribeErr != nil {
		return nil, r.subscribeErr
	}
	r.subscription = &fakeSubscription{endpoint: "https://push.example.com/new"}
	return r.subscription, nil
}

type fakeSubscription struct {
	endpoint       string
	unsubscribeErr error
	cancelled      bool
}

func (s *fakeSubscription) Descriptor() models.Subscription {
	return models.Subscription(`{"endpoint":"` + s.endpoint + `","keys":{"p256dh":"k","auth":"a"}}`)
}

func (s *fakeSubscription) Unsubscribe(ctx context.Context) (bool, error) {
	if s.unsubscribeErr != nil {
		return false, s.unsubscribeErr
	}
	s.cancelled = true
	return true, nil
}

type fakeBackend struct {
	mu sync.Mutex

	subscribeErr   error
	unsubscribeErr error

	requests         []models.SubscribeRequest
	unsubscribeCalls int

	// block, when set, holds Subscribe until it is closed.
	block   chan struct{}
	entered chan struct{}
}

func (b *fakeBackend) Subscribe(ctx context.Context, req models.SubscribeRequest) (models.SettingsEnvelope, error) {
	if b.entered != nil {
		b.entered <- struct{}{}
	}
	if b.block != nil {
		<-b.block
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, req)
	if b.subscribeErr != nil {
		return models.SettingsEnvelope{}, b.subscribeErr
	}
	return models.SettingsEnvelope{
		DailyReminder: models.BoolPtr(true),
		ReminderTime:  models.StringPtr(req.ReminderTime),
		Timezone:      models.StringPtr(req.Timezone),
	}, nil
}

func (b *fakeBackend) Unsubscribe(ctx context.Context) (models.SettingsEnvelope, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unsubscribeCalls++
	if b.unsubscribeErr != nil {
		return models.SettingsEnvelope{}, b.unsubscribeErr
	}
	return models.SettingsEnvelope{DailyReminder: models.BoolPtr(false)}, nil
}

func (b *fakeBackend) subscribeCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

type harness struct {
	platform *fakePlatform
	backend  *fakeBackend
	kv       *storage.Store
	orch     *Orchestrator
}

func newHarness() *harness {
	h := &harness{
		platform: newFakePlatform(),
		backend:  &fakeBackend{},
		kv:       storage.New(memory.New()),
	}
	h.orch = NewOrchestrator(h.platform, h.backend, NewSettings(h.kv), Config{
		VAPIDPublicKey: testVAPIDKey,
		WorkerScript:   "/notification-worker.js",
	})
	return h
}
