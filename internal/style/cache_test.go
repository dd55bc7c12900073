package style

import "testing"

func TestMatchCache_StoreAndLookup(t *testing.T) {
	c := NewMatchCache()
	rules := []MatchedRule{{Specificity: Specificity{Types: 1}}}

	if _, ok := c.Lookup(1); ok {
		t.Fatalf("expected miss before Store")
	}

	c.Store(1, rules)
	got, ok := c.Lookup(1)
	if !ok || len(got) != 1 {
		t.Fatalf("Lookup(1) = %v, %v; want the stored rules", got, ok)
	}
}

func TestMatchCache_Invalidate(t *testing.T) {
	c := NewMatchCache()
	c.Store(1, []MatchedRule{{}})
	c.Invalidate(1)
	if _, ok := c.Lookup(1); ok {
		t.Fatalf("expected miss after Invalidate")
	}
}

func TestMatchCache_InvalidateAll(t *testing.T) {
	c := NewMatchCache()
	c.Store(1, []MatchedRule{{}})
	c.Store(2, []MatchedRule{{}})
	c.InvalidateAll()
	if _, ok := c.Lookup(1); ok {
		t.Fatalf("expected miss for key 1 after InvalidateAll")
	}
	if _, ok := c.Lookup(2); ok {
		t.Fatalf("expected miss for key 2 after InvalidateAll")
	}
}
