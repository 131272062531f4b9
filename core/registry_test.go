package core

import "testing"

// TestRegistry tests the append-only pool registry
// Main test items:
// 1. Pools are returned in registration order
// 2. Pools returns a snapshot the caller may mutate freely
func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if r.Len() != 0 {
		t.Fatalf("fresh registry Len = %d, want 0", r.Len())
	}

	a := &Pool{name: "a"}
	b := &Pool{name: "b"}
	c := &Pool{name: "c"}
	r.add(a)
	r.add(b)
	r.add(c)

	if r.Len() != 3 {
		t.Fatalf("Len = %d, want 3", r.Len())
	}

	pools := r.Pools()
	for i, want := range []*Pool{a, b, c} {
		if pools[i] != want {
			t.Fatalf("Pools()[%d] = %q, want %q", i, pools[i].name, want.name)
		}
	}

	pools[0] = nil
	if got := r.Pools()[0]; got != a {
		t.Fatal("mutating the snapshot leaked into the registry")
	}
}
