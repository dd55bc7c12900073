package dom

import (
	"testing"

	"github.com/saorsa-labs/saorsa/internal/widget"
)

func TestDom_MountRegistersWholeSubtree(t *testing.T) {
	d := NewDom("root", widget.NewLabel(""))
	child := d.NewNode("box", widget.NewLabel("child"))
	grandchild := d.NewNode("label", widget.NewLabel("grandchild"))
	child.AppendChild(grandchild)

	if err := d.Mount(d.Root(), child); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	if !d.Contains(child.ID) || !d.Contains(grandchild.ID) {
		t.Fatalf("expected child and grandchild to be registered in the dom")
	}
}

func TestDom_MountRejectsDoubleParenting(t *testing.T) {
	d := NewDom("root", widget.NewLabel(""))
	other := d.NewNode("box", widget.NewLabel(""))
	child := d.NewNode("box", widget.NewLabel(""))

	if err := d.Mount(d.Root(), child); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if err := d.Mount(other, child); err == nil {
		t.Fatalf("expected error mounting an already-parented child")
	}
}

func TestDom_RemoveSubtreeRejectsRoot(t *testing.T) {
	d := NewDom("root", widget.NewLabel(""))
	if err := d.RemoveSubtree(d.Root()); err == nil {
		t.Fatalf("expected error removing the root node")
	}
}

func TestDom_RemoveSubtreeDetachesAndForgets(t *testing.T) {
	d := NewDom("root", widget.NewLabel(""))
	child := d.NewNode("box", widget.NewLabel(""))
	if err := d.Mount(d.Root(), child); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if err := d.RemoveSubtree(child); err != nil {
		t.Fatalf("RemoveSubtree: %v", err)
	}
	if d.Contains(child.ID) {
		t.Fatalf("expected child to be forgotten after removal")
	}
	if len(d.Root().Children()) != 0 {
		t.Fatalf("expected root to have no children after removal")
	}
}
