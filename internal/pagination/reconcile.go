package pagination

import (
	"log/slog"

	"github.com/pagemill/pagemill/internal/doc"
)

// Reconciler runs before an incoming edit is accepted. It remaps the
// tracked splits through the edit and synthesizes one compensating
// join edit undoing the splits the edit made unnecessary. User-made
// structure is never joined: descent below a join point is gated by
// matching origin tags.
type Reconciler struct {
	log *slog.Logger
}

// NewReconciler builds a reconciler.
func NewReconciler(log *slog.Logger) *Reconciler {
	return &Reconciler{log: log}
}

// Reconcile inspects an applied transaction and returns the
// compensating join edit, or nil when nothing needs undoing. anchor is
// the selection anchor in the post-edit snapshot.
//
// Internal edits never trigger it (a split must not immediately
// re-trigger a join), and neither do edits that only add content: an
// insertion can only cause overflow, which is the scanner's concern,
// so a tracked split untouched by the mapping stays tracked.
func (rc *Reconciler) Reconcile(tr *doc.Transaction, st State, anchor int) *doc.Transaction {
	if Tag(tr) != "" || !tr.DocChanged() || !tr.RemovesContent() {
		return nil
	}

	if doc.PageCount(tr.Doc()) < doc.PageCount(tr.Before()) {
		return rc.pageRemoval(tr.Doc(), anchor)
	}
	return rc.joinTracked(tr, st)
}

// pageRemoval handles an edit that reduced the top-level page count:
// the content after the vanished page is merged into the preceding
// page, and when the blocks meeting at the seam are still joinable the
// inner boundary collapses too, as if the user had deleted across it,
// so no stray fragment remains. This join is a direct consequence of
// the user's own edit, so it shares undo history with it.
func (rc *Reconciler) pageRemoval(d *doc.Node, anchor int) *doc.Transaction {
	r, err := doc.Resolve(d, anchor)
	if err != nil {
		return nil
	}
	boundary := anchor
	if r.Depth() >= 1 {
		boundary = r.Before(1)
	}
	if !doc.CanJoin(d, boundary) {
		return nil
	}

	join := doc.NewTransaction(d)
	if err := join.JoinAt(boundary); err != nil {
		rc.log.Debug("page-removal join failed", "pos", boundary, "error", err)
		return nil
	}
	inner := boundary - 1
	if doc.CanJoin(join.Doc(), inner) {
		if err := join.JoinAt(inner); err != nil {
			rc.log.Debug("page-removal inner collapse failed", "pos", inner, "error", err)
		}
	}
	join.SetMeta(MetaKey, TagJoin)
	return join
}

// joinTracked undoes tracked splits invalidated by the edit: every
// split whose remapped position is still a legal join point is joined,
// and every surviving connection whose endpoints collapsed onto each
// other is fused as well. Splits that are no longer legal join points
// stay tracked rather than forcing an invalid merge. The compensating
// edit is a pagination artifact being undone, not a user action, so it
// is excluded from undo history.
func (rc *Reconciler) joinTracked(tr *doc.Transaction, st State) *doc.Transaction {
	remapped := st.remap(tr.Mapping(), tr.Doc())
	if len(remapped.Splits) == 0 {
		return nil
	}

	join := doc.NewTransaction(tr.Doc())
	for _, sp := range remapped.Splits {
		pos := join.Mapping().Map(sp.Pos, -1).Pos
		if doc.CanJoin(join.Doc(), pos) {
			rc.deepJoin(join, pos)
		} else {
			rc.log.Debug("tracked split not joinable, leaving tracked", "pos", pos)
		}
		for _, c := range sp.Connections {
			from := join.Mapping().Map(c.From, -1).Pos
			to := join.Mapping().Map(c.To, 1).Pos
			if from == to && doc.CanJoin(join.Doc(), from) {
				rc.deepJoin(join, from)
			}
		}
	}
	if len(join.Steps()) == 0 {
		return nil
	}
	join.SetMeta(MetaKey, TagJoin)
	join.SetAddToHistory(false)
	return join
}

// deepJoin reunites previously split ancestors level by level: at each
// boundary the two adjacent nodes are fused only when they are both
// pages or provably fragments of one pre-split node (matching origin
// tags); divergent content below that stops the descent.
func (rc *Reconciler) deepJoin(tr *doc.Transaction, pos int) {
	for pos > 0 {
		r, err := doc.Resolve(tr.Doc(), pos)
		if err != nil {
			return
		}
		before, after := r.NodeBefore(), r.NodeAfter()
		if before == nil || after == nil {
			return
		}
		bothPages := before.Kind == doc.KindPage && after.Kind == doc.KindPage
		sameOrigin := before.Attr(doc.AttrOrigin) != "" && before.Attr(doc.AttrOrigin) == after.Attr(doc.AttrOrigin)
		if !bothPages && !sameOrigin {
			return
		}
		if !doc.CanJoin(tr.Doc(), pos) {
			return
		}
		if err := tr.JoinAt(pos); err != nil {
			return
		}
		// The seam inside the merged node sits one position down.
		pos--
	}
}
