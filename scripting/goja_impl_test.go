package scripting

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGojaEngine_ContextCancellation(t *testing.T) {
	engine := NewEngine()

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()

	if _, err := engine.Execute(ctx, "while (true) {}"); err == nil || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context deadline error, got %v", err)
	}

	if _, err := engine.Execute(context.Background(), "1 + 1"); err != nil {
		t.Fatalf("engine should recover after cancellation, got %v", err)
	}
}

func TestGojaEngine_ImmediateCancel(t *testing.T) {
	engine := NewEngine()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := engine.Execute(ctx, "42"); err == nil || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled error, got %v", err)
	}
}

type fakeDOM struct {
	name        string
	page, total int
}

func (d *fakeDOM) ReportName() string { return d.name }
func (d *fakeDOM) PageNumber() int    { return d.page }
func (d *fakeDOM) TotalPages() int    { return d.total }

func TestExpandMacros(t *testing.T) {
	engine := NewEngine()
	dom := &fakeDOM{name: "Sales", page: 1, total: 4}
	if err := engine.RegisterDOM(dom); err != nil {
		t.Fatalf("register: %v", err)
	}

	tests := []struct {
		in, want string
	}{
		{"Page [Page#] of [TotalPages#]", "Page 1 of 4"},
		{"[ReportName] report", "Sales report"},
		{"[Page# * 2.5]", "2.5"},
		{"[TotalPages# - Page#]", "3"},
		{"no macros", "no macros"},
		{"[]", "[]"},
		{"[draft] copy", "[draft] copy"},
		{"unterminated [Page#", "unterminated [Page#"},
		{"[[1, 2].length]", "2"},
		{"[undefined]", "[undefined]"},
	}
	for _, tt := range tests {
		if got := Expand(context.Background(), engine, tt.in); got != tt.want {
			t.Errorf("Expand(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	dom.page = 3
	if got := Expand(context.Background(), engine, "[Page#]/[TotalPages#]"); got != "3/4" {
		t.Fatalf("page state not followed: %q", got)
	}
}

func TestExpandWithoutEngine(t *testing.T) {
	if got := Expand(context.Background(), nil, "[Page#]"); got != "[Page#]" {
		t.Fatalf("got %q", got)
	}
}
