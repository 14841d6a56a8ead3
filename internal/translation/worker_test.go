package translation

import (
	"context"
	"testing"
	"time"

	"codeberg.org/snonux/polyglot/internal/backend"
)

// syncDispatch runs callbacks inline, standing in for fyne.Do.
func syncDispatch(fn func()) { fn() }

func TestRunLoadWorker(t *testing.T) {
	stub := &stubHandler{kind: backend.KindGGUF}
	m := newTestManager(t, stub)

	done := make(chan error, 1)
	RunLoadWorker(m, context.Background(), "/m.gguf", syncDispatch, func(err error) {
		done <- err
	})

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("load worker error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("load worker did not finish")
	}

	if !m.Info().Loaded {
		t.Error("model not loaded after worker finished")
	}
}

func TestRunTranslateWorker(t *testing.T) {
	stub := &stubHandler{kind: backend.KindGGUF}
	m := newTestManager(t, stub)
	if err := m.LoadModel(context.Background(), "/m.gguf"); err != nil {
		t.Fatalf("LoadModel() error = %v", err)
	}

	type outcome struct {
		result Result
		err    error
	}
	done := make(chan outcome, 1)
	RunTranslateWorker(m, context.Background(), testRequest(), syncDispatch, func(result Result, err error) {
		done <- outcome{result, err}
	})

	select {
	case out := <-done:
		if out.err != nil {
			t.Fatalf("translate worker error = %v", out.err)
		}
		if out.result.Translation != "Bonjour" {
			t.Errorf("Translation = %q", out.result.Translation)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("translate worker did not finish")
	}
}

func TestRunUnloadWorker(t *testing.T) {
	stub := &stubHandler{kind: backend.KindGGUF}
	m := newTestManager(t, stub)
	if err := m.LoadModel(context.Background(), "/m.gguf"); err != nil {
		t.Fatalf("LoadModel() error = %v", err)
	}

	done := make(chan error, 1)
	RunUnloadWorker(m, syncDispatch, func(err error) { done <- err })

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unload worker error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("unload worker did not finish")
	}

	if m.Info().Loaded {
		t.Error("model still loaded after unload worker")
	}
}

func TestWorkerRecoversPanic(t *testing.T) {
	stub := &stubHandler{kind: backend.KindGGUF}
	m := newTestManager(t, stub)
	m.newHandler = func(backend.Kind, *backend.Config) (backend.Handler, error) {
		panic("engine blew up")
	}

	done := make(chan error, 1)
	RunLoadWorker(m, context.Background(), "/m.gguf", syncDispatch, func(err error) {
		done <- err
	})

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("panicking worker should report an error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("panicking worker did not finish")
	}

	// The operation slot must be released despite the panic.
	if m.Busy() {
		t.Error("manager still busy after worker panic")
	}
}
