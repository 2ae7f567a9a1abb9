package pagination

import (
	"strings"
	"testing"

	"github.com/pagemill/pagemill/internal/doc"
)

// splitDoc applies a tagged depth-2 split to a single page holding ten
// runes, cutting at offset 5. Token layout after the split:
//
//	page1(paragraph "aaaaa")  spans 0..9
//	page2(paragraph "aaaaa")  opens at 9, text from 11
func splitDoc(t *testing.T) *doc.Transaction {
	t.Helper()
	d := doc.NewDoc(doc.NewPage(doc.NewParagraph(strings.Repeat("a", 10))))
	tr := doc.NewTransaction(d)
	if err := tr.SplitAt(7, 2); err != nil {
		t.Fatalf("split: unexpected error: %v", err)
	}
	tr.SetMeta(MetaKey, TagSplit)
	tr.SetAddToHistory(false)
	return tr
}

func TestTag(t *testing.T) {
	tr := doc.NewTransaction(doc.NewDoc(doc.NewPage(doc.NewParagraph("x"))))
	if Tag(tr) != "" {
		t.Errorf("expected empty tag on an untagged transaction, got %q", Tag(tr))
	}
	tr.SetMeta(MetaKey, TagSplit)
	if Tag(tr) != TagSplit {
		t.Errorf("expected %q, got %q", TagSplit, Tag(tr))
	}
}

func TestApplyRecordsSplit(t *testing.T) {
	tr := splitDoc(t)
	st := NewState().Apply(tr)
	if len(st.Splits) != 1 {
		t.Fatalf("expected 1 tracked split, got %d", len(st.Splits))
	}
	if st.Splits[0].Pos != 9 {
		t.Errorf("expected primary join point 9, got %d", st.Splits[0].Pos)
	}
	if len(st.Splits[0].Connections) != 0 {
		t.Errorf("textblock adjacency folds into the primary, got %d connections",
			len(st.Splits[0].Connections))
	}
}

func TestApplyRemapsThroughEdits(t *testing.T) {
	tr := splitDoc(t)
	st := NewState().Apply(tr)

	ins := doc.NewTransaction(tr.Doc())
	if err := ins.InsertText(3, "xx"); err != nil {
		t.Fatalf("insert: unexpected error: %v", err)
	}
	st = st.Apply(ins)
	if len(st.Splits) != 1 || st.Splits[0].Pos != 11 {
		t.Fatalf("expected split shifted to 11, got %+v", st.Splits)
	}
}

func TestApplyDropsDeletedSplit(t *testing.T) {
	tr := splitDoc(t)
	st := NewState().Apply(tr)

	// Delete across the page boundary: the split point sits strictly
	// inside the removed range, so the record goes away with it.
	del := doc.NewTransaction(tr.Doc())
	if err := del.DeleteRange(5, 13); err != nil {
		t.Fatalf("delete: unexpected error: %v", err)
	}
	st = st.Apply(del)
	if len(st.Splits) != 0 {
		t.Fatalf("expected deleted split dropped, got %+v", st.Splits)
	}
}

func TestApplyJoinResetsState(t *testing.T) {
	tr := splitDoc(t)
	st := NewState().Apply(tr)

	join := doc.NewTransaction(tr.Doc())
	if err := join.JoinAt(9); err != nil {
		t.Fatalf("join: unexpected error: %v", err)
	}
	join.SetMeta(MetaKey, TagJoin)
	st = st.Apply(join)
	if len(st.Splits) != 0 {
		t.Fatalf("expected join to reset the state, got %+v", st.Splits)
	}
}

func TestDeepSplitRecordsConnections(t *testing.T) {
	// A depth-3 split through page and blockquote. Post-split layout:
	//
	//	page1(bq(paragraph "aaaaa"))  spans 0..11
	//	page2 opens at 12's left; its blockquote fragment opens at 12
	d := doc.NewDoc(doc.NewPage(doc.NewBlockquote(doc.NewParagraph("aaaaabbbbb"))))
	tr := doc.NewTransaction(d)
	if err := tr.SplitAt(8, 3); err != nil {
		t.Fatalf("split: unexpected error: %v", err)
	}
	tr.SetMeta(MetaKey, TagSplit)

	st := NewState().Apply(tr)
	if len(st.Splits) != 1 {
		t.Fatalf("expected 1 tracked split, got %d", len(st.Splits))
	}
	sp := st.Splits[0]
	if sp.Pos != 11 {
		t.Errorf("expected primary join point 11, got %d", sp.Pos)
	}
	if len(sp.Connections) != 1 {
		t.Fatalf("expected 1 connection for the blockquote level, got %d", len(sp.Connections))
	}
	if sp.Connections[0].From != 9 || sp.Connections[0].To != 12 {
		t.Errorf("expected connection (9, 12), got (%d, %d)",
			sp.Connections[0].From, sp.Connections[0].To)
	}
}

func TestConnectionDroppedWhenDetached(t *testing.T) {
	d := doc.NewDoc(doc.NewPage(doc.NewBlockquote(doc.NewParagraph("aaaaabbbbb"))))
	tr := doc.NewTransaction(d)
	if err := tr.SplitAt(8, 3); err != nil {
		t.Fatalf("split: unexpected error: %v", err)
	}

	// A connection target must stay at offset 0 of a container. To=12
	// anchors the right blockquote fragment; To=14 sits inside text and
	// must be discarded on the next remap.
	st := State{Splits: []Split{{
		Pos: 11,
		Connections: []Connection{
			{From: 9, To: 12},
			{From: 9, To: 14},
		},
	}}}

	edit := doc.NewTransaction(tr.Doc())
	if err := edit.InsertText(17, "x"); err != nil {
		t.Fatalf("insert: unexpected error: %v", err)
	}
	st = st.Apply(edit)
	if len(st.Splits) != 1 {
		t.Fatalf("expected the split to survive, got %+v", st.Splits)
	}
	if len(st.Splits[0].Connections) != 1 || st.Splits[0].Connections[0].To != 12 {
		t.Errorf("expected only the anchored connection to survive, got %+v",
			st.Splits[0].Connections)
	}
}
