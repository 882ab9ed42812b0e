package push

import (
	"errors"

	"github.com/julianstephens/dayglow/internal/constants"
	"github.com/julianstephens/dayglow/internal/models"
	"github.com/julianstephens/dayglow/internal/storage"
	"github.com/julianstephens/dayglow/internal/validation"
)

// ErrNotPersisted is returned when the store rejected a settings write.
var ErrNotPersisted = errors.New("notification settings were not saved")

// Settings reads and writes the saved notification settings.
type Settings struct {
	kv storage.KV
}

func NewSettings(kv storage.KV) *Settings {
	return &Settings{kv: kv}
}

// Save validates and persists settings.
func (s *Settings) Save(settings models.NotificationSettings) error {
	if err := validation.ValidateSettings(settings); err != nil {
		return err
	}
	if !storage.SetJSON(s.kv, constants.KeyNotificationSettings, settings) {
		return ErrNotPersisted
	}
	return nil
}

// Saved returns the persisted settings, migrating them from the legacy key on
// first read. The boolean is false when nothing usable is stored.
func (s *Settings) Saved() (models.NotificationSettings, bool) {
	saved := storage.ResolveLegacyJSON[*models.NotificationSettings](
		s.kv,
		constants.KeyNotificationSettings,
		constants.LegacyKeys[constants.KeyNotificationSettings],
		nil,
	)
	if saved == nil {
		return models.NotificationSettings{}, false
	}
	return *saved, true
}
