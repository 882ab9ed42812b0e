package terminal

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/julianstephens/dayglow/internal/constants"
	"github.com/julianstephens/dayglow/internal/models"
	"github.com/julianstephens/dayglow/internal/push"
	"github.com/julianstephens/dayglow/internal/storage"
)

const authSecretLen = 16

// ErrInvalidServerKey is returned for an application server key that is not
// an uncompressed P-256 point.
var ErrInvalidServerKey = errors.New("application server key is not a P-256 public key")

type registration struct {
	platform *Platform
	script   string
}

// descriptor is the JSON shape of a PushSubscription.
type descriptor struct {
	Endpoint       string  `json:"endpoint"`
	ExpirationTime *int64  `json:"expirationTime"`
	Keys           keyPair `json:"keys"`
}

type keyPair struct {
	P256DH string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// record is what is persisted: the descriptor plus the private half of the
// p256dh key, which never leaves this machine.
type record struct {
	Descriptor json.RawMessage `json:"descriptor"`
	PrivateKey string          `json:"privateKey"`
}

func (r *registration) Subscription(ctx context.Context) (push.Subscription, error) {
	raw, ok := r.platform.kv.Get(constants.KeyPushSubscription)
	if !ok {
		return nil, nil
	}
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil || len(rec.Descriptor) == 0 {
		// A damaged record is as good as none
		r.platform.kv.Remove(constants.KeyPushSubscription)
		return nil, nil
	}
	return &subscription{kv: r.platform.kv, rec: rec}, nil
}

func (r *registration) Subscribe(ctx context.Context, opts push.SubscribeOptions) (push.Subscription, error) {
	if !opts.UserVisibleOnly {
		return nil, errors.New("only user-visible subscriptions are supported")
	}
	if len(opts.ApplicationServerKey) != 65 || opts.ApplicationServerKey[0] != 0x04 {
		return nil, ErrInvalidServerKey
	}
	if _, err := ecdh.P256().NewPublicKey(opts.ApplicationServerKey); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidServerKey, err)
	}

	a, err := locateAgent()
	if err != nil {
		return nil, err
	}

	rec, err := newRecord(a.baseURL() + "/push/" + uuid.NewString())
	if err != nil {
		return nil, err
	}
	if !storage.SetJSON(r.platform.kv, constants.KeyPushSubscription, rec) {
		return nil, errors.New("failed to persist push subscription")
	}
	return &subscription{kv: r.platform.kv, rec: rec}, nil
}

func newRecord(endpoint string) (record, error) {
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return record{}, fmt.Errorf("failed to generate subscription key: %w", err)
	}
	auth := make([]byte, authSecretLen)
	if _, err := rand.Read(auth); err != nil {
		return record{}, fmt.Errorf("failed to generate auth secret: %w", err)
	}

	desc, err := json.Marshal(descriptor{
		Endpoint: endpoint,
		Keys: keyPair{
			P256DH: base64.RawURLEncoding.EncodeToString(priv.PublicKey().Bytes()),
			Auth:   base64.RawURLEncoding.EncodeToString(auth),
		},
	})
	if err != nil {
		return record{}, err
	}

	return record{
		Descriptor: desc,
		PrivateKey: base64.RawURLEncoding.EncodeToString(priv.Bytes()),
	}, nil
}

type subscription struct {
	kv  storage.KV
	rec record
}

func (s *subscription) Descriptor() models.Subscription {
	return models.Subscription(s.rec.Descriptor)
}

func (s *subscription) Unsubscribe(ctx context.Context) (bool, error) {
	if !s.kv.Remove(constants.KeyPushSubscription) {
		return false, errors.New("failed to remove push subscription")
	}
	return true, nil
}
