package translation

import (
	"context"
	"fmt"
	"runtime/debug"
)

// Dispatch delivers a worker callback to the caller's goroutine. The GUI
// passes fyne.Do so results land on the UI thread; tests pass a function that
// just calls its argument.
type Dispatch func(func())

// RunLoadWorker loads a model on a background goroutine and reports the
// outcome through onDone. A panic inside the engine surfaces as an error
// instead of killing the process.
func RunLoadWorker(m *Manager, ctx context.Context, path string, dispatch Dispatch, onDone func(error)) {
	go func() {
		err := func() (err error) {
			defer recoverWorker(&err)
			return m.LoadModel(ctx, path)
		}()
		dispatch(func() { onDone(err) })
	}()
}

// RunTranslateWorker runs one translation on a background goroutine.
func RunTranslateWorker(m *Manager, ctx context.Context, req Request, dispatch Dispatch, onDone func(Result, error)) {
	go func() {
		var result Result
		err := func() (err error) {
			defer recoverWorker(&err)
			result, err = m.Translate(ctx, req)
			return err
		}()
		dispatch(func() { onDone(result, err) })
	}()
}

// RunUnloadWorker unloads the model on a background goroutine. Stopping an
// engine process can take seconds, so the GUI must not block on it.
func RunUnloadWorker(m *Manager, dispatch Dispatch, onDone func(error)) {
	go func() {
		err := func() (err error) {
			defer recoverWorker(&err)
			return m.UnloadModel()
		}()
		dispatch(func() { onDone(err) })
	}()
}

func recoverWorker(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("worker panic: %v\n%s", r, debug.Stack())
	}
}
