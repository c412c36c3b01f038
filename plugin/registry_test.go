package plugin

import (
	"context"
	"errors"
	"log/slog"
	"testing"
)

// testPlugin implements Plugin + AfterAuthenticate + AfterReject.
type testPlugin struct {
	authenticateCalled bool
	rejectCalled       bool
	shutdownCalled     bool
}

func (t *testPlugin) Name() string { return "test-plugin" }

func (t *testPlugin) OnAuthenticate(_ context.Context, _ any) error {
	t.authenticateCalled = true
	return nil
}

func (t *testPlugin) OnReject(_ context.Context, _ any) error {
	t.rejectCalled = true
	return nil
}

func (t *testPlugin) OnShutdown(_ context.Context) error {
	t.shutdownCalled = true
	return nil
}

// minimalPlugin only implements Plugin (no hooks).
type minimalPlugin struct{}

func (m *minimalPlugin) Name() string { return "minimal" }

// failingPlugin returns errors from every hook.
type failingPlugin struct{}

func (f *failingPlugin) Name() string { return "failing" }

func (f *failingPlugin) OnAuthenticate(_ context.Context, _ any) error {
	return errors.New("boom")
}

func TestRegistryDispatch(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(slog.Default())

	tp := &testPlugin{}
	reg.Register(tp)
	reg.Register(&minimalPlugin{})

	if len(reg.Plugins()) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(reg.Plugins()))
	}

	reg.EmitAuthenticate(ctx, nil)
	if !tp.authenticateCalled {
		t.Fatal("OnAuthenticate was not called")
	}

	reg.EmitReject(ctx, nil)
	if !tp.rejectCalled {
		t.Fatal("OnReject was not called")
	}

	reg.EmitShutdown(ctx)
	if !tp.shutdownCalled {
		t.Fatal("OnShutdown was not called")
	}
}

func TestRegistryHookErrorsAreSwallowed(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(slog.Default())

	tp := &testPlugin{}
	reg.Register(&failingPlugin{})
	reg.Register(tp)

	// A failing hook must not stop later plugins from running.
	reg.EmitAuthenticate(ctx, nil)
	if !tp.authenticateCalled {
		t.Fatal("OnAuthenticate was not called after failing plugin")
	}
}
