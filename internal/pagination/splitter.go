package pagination

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pagemill/pagemill/internal/doc"
)

// Splitter turns an overflow boundary position into a split edit:
// it normalizes the position so neither fragment ends up empty, tags
// the about-to-split ancestors with origin markers, and emits one
// split transaction tagged internal.
type Splitter struct {
	log    *slog.Logger
	newTag func() string
}

// NewSplitter builds a splitter using fresh UUIDs as origin tags.
func NewSplitter(log *slog.Logger) *Splitter {
	return &Splitter{log: log, newTag: uuid.NewString}
}

// Plan computes the split edit for a boundary position inside an
// overflowing page. It returns (nil, nil) when the container must be
// skipped for this pass: the position walks out to an illegal split
// point and will be retried after the next edit changes the structure.
func (sp *Splitter) Plan(d *doc.Node, pos int) (*doc.Transaction, error) {
	r, err := doc.Resolve(d, pos)
	if err != nil {
		return nil, fmt.Errorf("resolve boundary %d: %w", pos, err)
	}

	// Walk outward while the boundary hugs the start of its container,
	// so the left fragment is never empty. Symmetrically for the end.
	// The walks stop at a page boundary at the latest.
	switch {
	case r.AtStart():
		for r.Depth() >= 1 && r.AtStart() && r.Parent().Kind != doc.KindPage {
			pos = r.Before(r.Depth())
			if r, err = doc.Resolve(d, pos); err != nil {
				return nil, err
			}
		}
	case r.AtEnd():
		for r.Depth() >= 1 && r.AtEnd() && r.Parent().Kind != doc.KindPage {
			pos = r.After(r.Depth())
			if r, err = doc.Resolve(d, pos); err != nil {
				return nil, err
			}
		}
	}

	depth := r.Depth()
	if !doc.CanSplit(d, pos, depth) {
		sp.log.Debug("skipping illegal split point", "pos", pos, "depth", depth)
		return nil, nil
	}

	tr := doc.NewTransaction(d)
	// Tag the pre-split ancestors: the split clones them down to the
	// given depth, so both fragments inherit the marker.
	for level := depth; level >= 1; level-- {
		if r.Node(level).Attr(doc.AttrOrigin) != "" {
			continue
		}
		if err := tr.SetAttrs(r.Before(level), map[string]string{doc.AttrOrigin: sp.newTag()}); err != nil {
			return nil, fmt.Errorf("tag ancestor at depth %d: %w", level, err)
		}
	}
	if err := tr.SplitAt(pos, depth); err != nil {
		return nil, fmt.Errorf("split at %d depth %d: %w", pos, depth, err)
	}
	tr.SetMeta(MetaKey, TagSplit)
	tr.SetAddToHistory(false)
	return tr, nil
}
