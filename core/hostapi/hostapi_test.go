package hostapi

import "testing"

func TestEveryIDHasNameAndSignature(t *testing.T) {
	ids := All()
	if len(ids) != 37 {
		t.Fatalf("expected 37 host imports, got %d", len(ids))
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		name := id.Name()
		if name == "" {
			t.Errorf("id %d has empty name", id)
		}
		if seen[name] {
			t.Errorf("duplicate host import name %q", name)
		}
		seen[name] = true
		if _, ok := id.Sig(); !ok {
			t.Errorf("id %d (%s) has no signature", id, name)
		}
	}
}

func TestLookupRoundTrip(t *testing.T) {
	for _, id := range All() {
		got, ok := Lookup(id.Name())
		if !ok {
			t.Fatalf("Lookup(%q) failed", id.Name())
		}
		if got != id {
			t.Errorf("Lookup(%q) = %d, want %d", id.Name(), got, id)
		}
	}
}

func TestRevertSignature(t *testing.T) {
	sig, ok := Revert.Sig()
	if !ok {
		t.Fatal("revert has no signature")
	}
	if len(sig.Params) != 3 {
		t.Fatalf("revert expected 3 params, got %d", len(sig.Params))
	}
	if sig.Params[0] != I32 {
		t.Errorf("revert error_code should be i32, got %v", sig.Params[0])
	}
	if sig.HasResult {
		t.Error("revert should have no result")
	}
}
