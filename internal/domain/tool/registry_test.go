package tool_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"agent-server/services/agent-api/internal/domain/tool"
)

func calcDescriptor(name string) tool.Descriptor {
	return tool.Descriptor{
		Name:        name,
		Description: "evaluates arithmetic expressions",
		Kind:        tool.KindCalculation,
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	registry := tool.NewRegistry()

	desc := calcDescriptor("calculator")
	if err := registry.Register(desc); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, ok := registry.Get("calculator")
	if !ok {
		t.Fatal("Get() returned ok = false, want true")
	}
	if got.Name != desc.Name || got.Kind != desc.Kind {
		t.Errorf("Get() = %+v, want %+v", got, desc)
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	registry := tool.NewRegistry()

	if err := registry.Register(calcDescriptor("calculator")); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	err := registry.Register(calcDescriptor("calculator"))
	if !errors.Is(err, tool.ErrDuplicateTool) {
		t.Errorf("second Register() error = %v, want ErrDuplicateTool", err)
	}
}

func TestRegistry_Validation(t *testing.T) {
	tests := []struct {
		name string
		desc tool.Descriptor
	}{
		{"empty name", tool.Descriptor{Kind: tool.KindAPI}},
		{"unknown kind", tool.Descriptor{Name: "mystery", Kind: tool.Kind("quantum")}},
	}

	registry := tool.NewRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := registry.Register(tt.desc); err == nil {
				t.Error("Register() error = nil, want validation error")
			}
		})
	}
}

func TestRegistry_ListSorted(t *testing.T) {
	registry := tool.NewRegistry()
	for _, name := range []string{"zulu", "alpha", "mike"} {
		if err := registry.Register(calcDescriptor(name)); err != nil {
			t.Fatalf("Register(%q) error = %v", name, err)
		}
	}

	listed := registry.List()
	want := []string{"alpha", "mike", "zulu"}
	if len(listed) != len(want) {
		t.Fatalf("List() returned %d tools, want %d", len(listed), len(want))
	}
	for i, name := range want {
		if listed[i].Name != name {
			t.Errorf("List()[%d].Name = %q, want %q", i, listed[i].Name, name)
		}
	}
}

func TestRegistry_Remove(t *testing.T) {
	registry := tool.NewRegistry()
	if err := registry.Register(calcDescriptor("calculator")); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if !registry.Remove("calculator") {
		t.Error("Remove() = false, want true")
	}
	if registry.Remove("calculator") {
		t.Error("second Remove() = true, want false")
	}
	if _, ok := registry.Get("calculator"); ok {
		t.Error("Get() after Remove() returned ok = true")
	}
}

func TestRegistry_Scoped(t *testing.T) {
	shared := tool.NewRegistry()
	clientA := shared.Scoped("client-a")
	clientB := shared.Scoped("client-b")

	if err := clientA.Register(calcDescriptor("calculator")); err != nil {
		t.Fatalf("clientA Register() error = %v", err)
	}
	// Same name in a different scope does not collide.
	if err := clientB.Register(calcDescriptor("calculator")); err != nil {
		t.Fatalf("clientB Register() error = %v", err)
	}

	if _, ok := clientB.Get("calculator"); !ok {
		t.Error("clientB Get() returned ok = false")
	}
	if _, ok := shared.Get("calculator"); ok {
		t.Error("unscoped Get() sees scoped tool")
	}
	if got := len(shared.List()); got != 0 {
		t.Errorf("unscoped List() returned %d tools, want 0", got)
	}
	if got := len(clientA.List()); got != 1 {
		t.Errorf("clientA List() returned %d tools, want 1", got)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	shared := tool.NewRegistry()
	scoped := shared.Scoped("client-a")

	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			name := fmt.Sprintf("calc-%d", worker)
			for i := 0; i < 100; i++ {
				if err := shared.Register(calcDescriptor(name)); err != nil {
					t.Errorf("shared Register(%q) error = %v", name, err)
					return
				}
				if err := scoped.Register(calcDescriptor(name)); err != nil {
					t.Errorf("scoped Register(%q) error = %v", name, err)
					return
				}
				shared.Get(name)
				scoped.Get(name)
				shared.List()
				scoped.List()
				shared.Remove(name)
				scoped.Remove(name)
			}
		}(worker)
	}
	wg.Wait()

	if got := len(shared.List()); got != 0 {
		t.Errorf("shared List() returned %d tools after teardown, want 0", got)
	}
	if got := len(scoped.List()); got != 0 {
		t.Errorf("scoped List() returned %d tools after teardown, want 0", got)
	}
}
