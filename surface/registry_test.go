// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"testing"
)

func imageFactory(opts Options) (Output, error) {
	return NewImageOutput(opts), nil
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	r.Register("test", 50, imageFactory, nil)

	entry, ok := r.Get("test")
	if !ok {
		t.Fatal("registered output not found")
	}
	if entry.Name != "test" {
		t.Errorf("Name = %s, want test", entry.Name)
	}
	if entry.Priority != 50 {
		t.Errorf("Priority = %d, want 50", entry.Priority)
	}
	if !entry.Available() {
		t.Error("output should be available (nil Available func)")
	}
}

func TestRegistryUnregister(t *testing.T) {
	r := NewRegistry()
	r.Register("temp", 10, imageFactory, nil)
	r.Unregister("temp")

	if _, ok := r.Get("temp"); ok {
		t.Error("output should not exist after unregister")
	}
}

func TestRegistryOrder(t *testing.T) {
	r := NewRegistry()
	r.Register("low", 10, imageFactory, nil)
	r.Register("high", 100, imageFactory, nil)
	r.Register("mid", 50, imageFactory, nil)
	r.Register("also-mid", 50, imageFactory, nil)
	r.Register("off", 200, imageFactory, func() bool { return false })

	tests := []struct {
		name string
		got  []string
		want []string
	}{
		{"List", r.List(), []string{"off", "high", "also-mid", "mid", "low"}},
		{"Available", r.Available(), []string{"high", "also-mid", "mid", "low"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.got) != len(tt.want) {
				t.Fatalf("%s() = %v, want %v", tt.name, tt.got, tt.want)
			}
			for i := range tt.want {
				if tt.got[i] != tt.want[i] {
					t.Errorf("%s()[%d] = %s, want %s", tt.name, i, tt.got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRegistryNewOutput(t *testing.T) {
	r := NewRegistry()
	if _, err := r.NewOutput(DefaultOptions(4, 4)); !errors.Is(err, ErrNoOutputAvailable) {
		t.Errorf("NewOutput() on empty registry = %v, want ErrNoOutputAvailable", err)
	}

	failing := errors.New("no display")
	r.Register("broken", 100, func(Options) (Output, error) { return nil, failing }, nil)
	r.Register("image", 10, imageFactory, nil)

	out, err := r.NewOutput(DefaultOptions(4, 3))
	if err != nil {
		t.Fatalf("NewOutput() error = %v", err)
	}
	if got := out.Size(); got.X != 4 || got.Y != 3 {
		t.Errorf("Size() = %v, want (4,3)", got)
	}

	r.Unregister("image")
	if _, err := r.NewOutput(DefaultOptions(4, 3)); !errors.Is(err, failing) {
		t.Errorf("NewOutput() error = %v, want %v", err, failing)
	}
}

func TestRegistryNewOutputByName(t *testing.T) {
	r := NewRegistry()
	r.Register("off", 10, imageFactory, func() bool { return false })

	_, err := r.NewOutputByName("missing", DefaultOptions(1, 1))
	var nf *OutputNotFoundError
	if !errors.As(err, &nf) || nf.Name != "missing" {
		t.Errorf("NewOutputByName(missing) error = %v, want OutputNotFoundError", err)
	}

	_, err = r.NewOutputByName("off", DefaultOptions(1, 1))
	var ua *OutputUnavailableError
	if !errors.As(err, &ua) || ua.Name != "off" {
		t.Errorf("NewOutputByName(off) error = %v, want OutputUnavailableError", err)
	}
}

func TestGlobalImageOutput(t *testing.T) {
	found := false
	for _, name := range Available() {
		if name == "image" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Available() = %v, want it to contain image", Available())
	}
	out, err := NewOutputByName("image", DefaultOptions(2, 2))
	if err != nil {
		t.Fatalf("NewOutputByName(image) error = %v", err)
	}
	if _, ok := out.(*ImageOutput); !ok {
		t.Errorf("NewOutputByName(image) = %T, want *ImageOutput", out)
	}
}
