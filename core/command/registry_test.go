package command

import (
	"context"
	"strings"
	"testing"
)

func nopHandler() Handler {
	return HandlerFunc(func(context.Context, Envelope, string) (Result, error) {
		return Result{}, nil
	})
}

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("/echo", nopHandler()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := r.Resolve("/echo"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
}

func TestRegistryCaseSensitive(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("/echo", nopHandler()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := r.Resolve("/Echo"); err == nil {
		t.Fatalf("lookup must be case-sensitive")
	}
}

func TestRegistryDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("/echo", nopHandler()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register("/echo", nopHandler()); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestUnknownCommandListsRegistered(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"/echo", "/cost-report", "/user-stats"} {
		if err := r.Register(name, nopHandler()); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	_, err := r.Resolve("/unknown")
	if err == nil {
		t.Fatalf("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "/echo, /cost-report, /user-stats") {
		t.Errorf("error must list registered commands in registration order: %s", msg)
	}
	if Category(err) != CategoryUnknownCommand {
		t.Errorf("wrong category: %s", Category(err))
	}
}

func TestCommandsReturnsCopy(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("/echo", nopHandler()); err != nil {
		t.Fatalf("register: %v", err)
	}
	cmds := r.Commands()
	cmds[0] = "mutated"
	if r.Commands()[0] != "/echo" {
		t.Errorf("Commands must return a copy")
	}
}
