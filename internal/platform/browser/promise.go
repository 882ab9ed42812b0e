//go:build js && wasm

package browser

import (
	"context"
	"errors"
	"fmt"
	"syscall/js"
)

type outcome struct {
	value js.Value
	err   error
}

// await blocks until promise settles or ctx is done. The callbacks stay
// registered until the promise settles either way.
func await(ctx context.Context, promise js.Value) (js.Value, error) {
	ch := make(chan outcome, 1)

	onFulfilled := js.FuncOf(func(this js.Value, args []js.Value) any {
		v := js.Undefined()
		if len(args) > 0 {
			v = args[0]
		}
		ch <- outcome{value: v}
		return nil
	})
	onRejected := js.FuncOf(func(this js.Value, args []js.Value) any {
		reason := js.Undefined()
		if len(args) > 0 {
			reason = args[0]
		}
		ch <- outcome{err: jsError(reason)}
		return nil
	})
	release := func() {
		onFulfilled.Release()
		onRejected.Release()
	}

	if _, err := try(func() js.Value { return promise.Call("then", onFulfilled, onRejected) }); err != nil {
		release()
		return js.Undefined(), err
	}

	select {
	case o := <-ch:
		release()
		return o.value, o.err
	case <-ctx.Done():
		go func() {
			<-ch
			release()
		}()
		return js.Undefined(), ctx.Err()
	}
}

// try runs fn, converting a thrown JS exception into an error.
func try(fn func() js.Value) (v js.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if jsErr, ok := r.(js.Error); ok {
				err = jsError(jsErr.Value)
				return
			}
			err = fmt.Errorf("%v", r)
		}
	}()
	return fn(), nil
}

func jsError(reason js.Value) error {
	switch {
	case reason.IsUndefined() || reason.IsNull():
		return errors.New("promise rejected")
	case reason.Type() == js.TypeObject && reason.Get("message").Type() == js.TypeString:
		name := reason.Get("name")
		if name.Type() == js.TypeString && name.String() != "" {
			return fmt.Errorf("%s: %s", name.String(), reason.Get("message").String())
		}
		return errors.New(reason.Get("message").String())
	default:
		return errors.New(reason.Call("toString").String())
	}
}

func present(v js.Value) bool {
	return !v.IsUndefined() && !v.IsNull()
}
