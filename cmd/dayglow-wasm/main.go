//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"syscall/js"

	"github.com/julianstephens/dayglow/internal/api"
	"github.com/julianstephens/dayglow/internal/constants"
	"github.com/julianstephens/dayglow/internal/logger"
	"github.com/julianstephens/dayglow/internal/models"
	"github.com/julianstephens/dayglow/internal/platform/browser"
	"github.com/julianstephens/dayglow/internal/push"
	"github.com/julianstephens/dayglow/internal/storage"
	"github.com/julianstephens/dayglow/internal/storage/localstorage"
	"github.com/julianstephens/dayglow/internal/streak"
)

// config is read from globalThis.dayglowConfig before the module starts.
type config struct {
	APIURL         string
	VAPIDPublicKey string
	WorkerScript   string
	Debug          bool
	getToken       js.Value
}

func readConfig() config {
	cfg := config{
		APIURL:       constants.DefaultAPIURL,
		WorkerScript: constants.DefaultWorker,
	}
	v := js.Global().Get("dayglowConfig")
	if v.Type() != js.TypeObject {
		return cfg
	}
	if s := v.Get("apiUrl"); s.Type() == js.TypeString {
		cfg.APIURL = s.String()
	}
	if s := v.Get("vapidPublicKey"); s.Type() == js.TypeString {
		cfg.VAPIDPublicKey = s.String()
	}
	if s := v.Get("workerScript"); s.Type() == js.TypeString && s.String() != "" {
		cfg.WorkerScript = s.String()
	}
	if b := v.Get("debug"); b.Type() == js.TypeBoolean {
		cfg.Debug = b.Bool()
	}
	if fn := v.Get("getToken"); fn.Type() == js.TypeFunction {
		cfg.getToken = fn
	}
	return cfg
}

// tokenSource asks the page for its session token.
func (c config) tokenSource() (string, error) {
	if c.getToken.IsUndefined() {
		return "", api.ErrNoToken
	}
	v := c.getToken.Invoke()
	if v.Type() != js.TypeString || v.String() == "" {
		return "", api.ErrNoToken
	}
	return v.String(), nil
}

func openStore() *storage.Store {
	ls, err := localstorage.New()
	if err != nil {
		logger.Warn("localStorage unavailable, settings will not persist", "error", err)
		return storage.New(nil)
	}
	return storage.New(ls)
}

func main() {
	cfg := readConfig()
	logger.InitWriter(os.Stderr, cfg.Debug)

	kv := openStore()
	if n := storage.MigrateLegacyKeys(kv); n > 0 {
		logger.Info("Migrated legacy keys", "count", n)
	}

	settings := push.NewSettings(kv)
	orch := push.NewOrchestrator(
		browser.New(),
		api.New(cfg.APIURL, kv, api.WithTokenSource(cfg.tokenSource)),
		settings,
		push.Config{VAPIDPublicKey: cfg.VAPIDPublicKey, WorkerScript: cfg.WorkerScript},
	)
	streaks := streak.New(kv)

	exports := map[string]any{
		"subscribeDailyReminder": js.FuncOf(func(this js.Value, args []js.Value) any {
			reminderTime := argString(args, 0)
			var opts []push.SubscribeOption
			if len(args) > 1 && args[1].Type() == js.TypeObject {
				if skip := args[1].Get("skipPermissionPrompt"); skip.Type() == js.TypeBoolean && skip.Bool() {
					opts = append(opts, push.SkipPermissionPrompt())
				}
			}
			return promise(func() any {
				return resultValue(orch.Subscribe(context.Background(), reminderTime, opts...))
			})
		}),
		"unsubscribeDailyReminder": js.FuncOf(func(this js.Value, args []js.Value) any {
			return promise(func() any {
				return resultValue(orch.Unsubscribe(context.Background()))
			})
		}),
		"restoreDailyReminderSubscription": js.FuncOf(func(this js.Value, args []js.Value) any {
			return promise(func() any {
				return resultValue(orch.Restore(context.Background()))
			})
		}),
		"saveNotificationSettings": js.FuncOf(func(this js.Value, args []js.Value) any {
			var s models.NotificationSettings
			if err := fromJS(args, &s); err != nil {
				logger.Warn("Ignoring notification settings", "error", err)
				return nil
			}
			if err := settings.Save(s); err != nil {
				logger.Warn("Notification settings not saved", "error", err)
			}
			return nil
		}),
		"getSavedNotificationSettings": js.FuncOf(func(this js.Value, args []js.Value) any {
			s, ok := settings.Saved()
			if !ok {
				return js.Null()
			}
			return toJS(s)
		}),
		"getReminderState": js.FuncOf(func(this js.Value, args []js.Value) any {
			return promise(func() any {
				return string(orch.State(context.Background()))
			})
		}),
		"getTodayKey": js.FuncOf(func(this js.Value, args []js.Value) any {
			return streaks.TodayKey()
		}),
		"hasLoggedToday": js.FuncOf(func(this js.Value, args []js.Value) any {
			return streaks.HasLoggedToday()
		}),
		"resolveDisplayedStreak": js.FuncOf(func(this js.Value, args []js.Value) any {
			raw := 0
			if len(args) > 0 && args[0].Type() == js.TypeNumber {
				raw = args[0].Int()
			}
			return streaks.DisplayedStreak(raw)
		}),
		"markLoggedToday": js.FuncOf(func(this js.Value, args []js.Value) any {
			return streaks.MarkLoggedToday()
		}),
	}

	js.Global().Set("dayglow", js.ValueOf(exports))
	logger.Debug("dayglow wasm ready", "version", constants.Version)

	select {}
}

func argString(args []js.Value, i int) string {
	if len(args) <= i || args[i].Type() != js.TypeString {
		return ""
	}
	return args[i].String()
}

// promise runs fn off the event loop and resolves with its value.
func promise(fn func() any) js.Value {
	handler := js.FuncOf(func(this js.Value, args []js.Value) any {
		resolve, reject := args[0], args[1]
		go func() {
			defer func() {
				if r := recover(); r != nil {
					reject.Invoke(js.Global().Get("Error").New(fmt.Sprint(r)))
				}
			}()
			resolve.Invoke(fn())
		}()
		return nil
	})
	defer handler.Release()
	return js.Global().Get("Promise").New(handler)
}

func resultValue(res push.Result) js.Value {
	out := map[string]any{"ok": res.OK}
	if res.Reason != "" {
		out["reason"] = string(res.Reason)
	}
	if res.Message != "" {
		out["message"] = res.Message
	}
	return js.ValueOf(out)
}

func fromJS(args []js.Value, dst any) error {
	if len(args) == 0 || args[0].Type() != js.TypeObject {
		return fmt.Errorf("expected an object")
	}
	raw := js.Global().Get("JSON").Call("stringify", args[0]).String()
	return json.Unmarshal([]byte(raw), dst)
}

func toJS(v any) js.Value {
	data, err := json.Marshal(v)
	if err != nil {
		return js.Null()
	}
	return js.Global().Get("JSON").Call("parse", string(data))
}
