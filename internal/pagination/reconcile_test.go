package pagination

import (
	"strings"
	"testing"

	"github.com/pagemill/pagemill/internal/doc"
)

// trackedSplit plans and applies one engine split over a single page of
// ten runes, cut at offset 5, and returns the resulting snapshot and
// state. Primary join point: 9.
func trackedSplit(t *testing.T) (*doc.Node, State) {
	t.Helper()
	d := doc.NewDoc(doc.NewPage(doc.NewParagraph(strings.Repeat("a", 10))))
	tr, err := NewSplitter(testLogger()).Plan(d, 7)
	if err != nil || tr == nil {
		t.Fatalf("plan: %v, tr=%v", err, tr)
	}
	return tr.Doc(), NewState().Apply(tr)
}

func TestReconcileSkipsInternalEdits(t *testing.T) {
	d, st := trackedSplit(t)
	rc := NewReconciler(testLogger())

	tr := doc.NewTransaction(d)
	if err := tr.DeleteRange(11, 13); err != nil {
		t.Fatalf("delete: unexpected error: %v", err)
	}
	tr.SetMeta(MetaKey, TagSplit)
	if join := rc.Reconcile(tr, st, 11); join != nil {
		t.Error("engine edits must not re-trigger reconciliation")
	}
}

func TestReconcileSkipsInsertOnlyEdits(t *testing.T) {
	d, st := trackedSplit(t)
	rc := NewReconciler(testLogger())

	tr := doc.NewTransaction(d)
	if err := tr.InsertText(4, "zz"); err != nil {
		t.Fatalf("insert: unexpected error: %v", err)
	}
	if join := rc.Reconcile(tr, st, 4); join != nil {
		t.Error("insertions only add content, nothing to undo")
	}
	// The tracked split survives the edit, shifted.
	st = st.Apply(tr)
	if len(st.Splits) != 1 || st.Splits[0].Pos != 11 {
		t.Errorf("expected split tracked at 11, got %+v", st.Splits)
	}
}

func TestReconcileJoinsTrackedSplit(t *testing.T) {
	d, st := trackedSplit(t)
	rc := NewReconciler(testLogger())

	// Shrink the right fragment: the split is no longer needed.
	tr := doc.NewTransaction(d)
	if err := tr.DeleteRange(11, 13); err != nil {
		t.Fatalf("delete: unexpected error: %v", err)
	}
	join := rc.Reconcile(tr, st, 11)
	if join == nil {
		t.Fatal("expected a compensating join")
	}
	if Tag(join) != TagJoin {
		t.Errorf("expected tag %q, got %q", TagJoin, Tag(join))
	}
	if join.AddToHistory() {
		t.Error("compensating joins must not enter undo history")
	}

	d2 := join.Doc()
	if got := doc.PageCount(d2); got != 1 {
		t.Fatalf("expected pages re-merged into 1, got %d", got)
	}
	page := d2.Child(0)
	if len(page.Children) != 1 {
		t.Fatalf("expected the paragraph fragments fused, got %d blocks", len(page.Children))
	}
	if got := page.Child(0).Text; got != "aaaaaaaa" {
		t.Errorf("expected fused text %q, got %q", "aaaaaaaa", got)
	}
}

func TestReconcileOriginGatesDescent(t *testing.T) {
	// A page-level split leaves the paragraphs untagged. When the pages
	// re-merge, the descent stops at the untagged paragraph boundary:
	// user-authored structure is never fused.
	d := doc.NewDoc(doc.NewPage(
		doc.NewParagraph(strings.Repeat("a", 6)),
		doc.NewParagraph(strings.Repeat("b", 6)),
	))
	tr, err := NewSplitter(testLogger()).Plan(d, 9) // boundary before the second paragraph
	if err != nil || tr == nil {
		t.Fatalf("plan: %v, tr=%v", err, tr)
	}
	d, st := tr.Doc(), NewState().Apply(tr)

	rc := NewReconciler(testLogger())
	edit := doc.NewTransaction(d)
	// Shrink the second paragraph (post-split, page1 spans 0..10 and
	// the second paragraph's text starts at 12).
	if err := edit.DeleteRange(14, 17); err != nil {
		t.Fatalf("delete: unexpected error: %v", err)
	}
	join := rc.Reconcile(edit, st, 14)
	if join == nil {
		t.Fatal("expected a compensating join")
	}
	page := join.Doc().Child(0)
	if got := doc.PageCount(join.Doc()); got != 1 {
		t.Fatalf("expected 1 page, got %d", got)
	}
	if len(page.Children) != 2 {
		t.Fatalf("expected the user paragraphs kept apart, got %d blocks", len(page.Children))
	}
	if page.Child(0).Text != "aaaaaa" || page.Child(1).Text != "bbb" {
		t.Errorf("unexpected paragraph contents: %q, %q",
			page.Child(0).Text, page.Child(1).Text)
	}
}

func TestReconcileLeavesUnjoinableSplitTracked(t *testing.T) {
	d, _ := trackedSplit(t)
	rc := NewReconciler(testLogger())

	// A stale record pointing inside text is not a legal join point;
	// the reconciler leaves it alone instead of forcing a merge.
	st := State{Splits: []Split{{Pos: 4}}}
	tr := doc.NewTransaction(d)
	if err := tr.DeleteRange(11, 12); err != nil {
		t.Fatalf("delete: unexpected error: %v", err)
	}
	if join := rc.Reconcile(tr, st, 11); join != nil {
		t.Error("expected no join for an unjoinable tracked position")
	}
}

func TestReconcilePageRemoval(t *testing.T) {
	d := doc.NewDoc(
		doc.NewPage(doc.NewParagraph("aaaa")),
		doc.NewPage(doc.NewParagraph("bbbb")),
		doc.NewPage(doc.NewParagraph("cccc")),
	)
	rc := NewReconciler(testLogger())

	// Delete the middle page node outright (pages span 8 tokens each).
	tr := doc.NewTransaction(d)
	if err := tr.DeleteRange(8, 16); err != nil {
		t.Fatalf("delete: unexpected error: %v", err)
	}
	if got := doc.PageCount(tr.Doc()); got != 2 {
		t.Fatalf("expected 2 pages after the delete, got %d", got)
	}

	join := rc.Reconcile(tr, NewState(), 8)
	if join == nil {
		t.Fatal("expected a page-removal join")
	}
	if Tag(join) != TagJoin {
		t.Errorf("expected tag %q, got %q", TagJoin, Tag(join))
	}
	if !join.AddToHistory() {
		t.Error("a page-removal join is part of the user's edit and shares its history")
	}

	d2 := join.Doc()
	if got := doc.PageCount(d2); got != 1 {
		t.Fatalf("expected trailing content merged into 1 page, got %d", got)
	}
	page := d2.Child(0)
	if len(page.Children) != 1 || page.Child(0).Text != "aaaacccc" {
		t.Errorf("expected the seam paragraphs collapsed into %q, got %+v",
			"aaaacccc", page.Children)
	}
}

func TestReconcilePageRemovalKeepsUnjoinableSeam(t *testing.T) {
	d := doc.NewDoc(
		doc.NewPage(doc.NewParagraph("aaaa")),
		doc.NewPage(doc.NewParagraph("bbbb")),
		doc.NewPage(doc.NewHeading(2, "cc")),
	)
	rc := NewReconciler(testLogger())

	tr := doc.NewTransaction(d)
	if err := tr.DeleteRange(8, 16); err != nil {
		t.Fatalf("delete: unexpected error: %v", err)
	}
	join := rc.Reconcile(tr, NewState(), 8)
	if join == nil {
		t.Fatal("expected a page-removal join")
	}
	page := join.Doc().Child(0)
	if len(page.Children) != 2 {
		t.Fatalf("paragraph and heading must not fuse, got %d blocks", len(page.Children))
	}
}
