package doc

// Transaction is an ordered list of steps applied to one snapshot,
// with the composed position mapping, arbitrary metadata tags, and a
// flag deciding whether the edit contributes to undo history.
type Transaction struct {
	before       *Node
	doc          *Node
	steps        []Step
	mapping      Mapping
	meta         map[string]any
	addToHistory bool
}

// NewTransaction starts an empty transaction on the given snapshot.
func NewTransaction(d *Node) *Transaction {
	return &Transaction{before: d, doc: d, addToHistory: true}
}

// Before is the snapshot the transaction started from.
func (t *Transaction) Before() *Node { return t.before }

// Doc is the snapshot after every step applied so far.
func (t *Transaction) Doc() *Node { return t.doc }

// Steps returns the applied steps in order.
func (t *Transaction) Steps() []Step { return t.steps }

// Mapping composes the step maps of all applied steps.
func (t *Transaction) Mapping() Mapping { return t.mapping }

// DocChanged reports whether any step changed the snapshot.
func (t *Transaction) DocChanged() bool { return t.doc != t.before }

// Step applies one step on top of the current snapshot.
func (t *Transaction) Step(s Step) error {
	d, sm, err := s.Apply(t.doc)
	if err != nil {
		return err
	}
	t.doc = d
	t.steps = append(t.steps, s)
	t.mapping = append(t.mapping, sm)
	return nil
}

// SetMeta attaches an arbitrary tag to the transaction.
func (t *Transaction) SetMeta(key string, value any) *Transaction {
	if t.meta == nil {
		t.meta = make(map[string]any)
	}
	t.meta[key] = value
	return t
}

// GetMeta reads a tag attached with SetMeta, or nil.
func (t *Transaction) GetMeta(key string) any {
	if t.meta == nil {
		return nil
	}
	return t.meta[key]
}

// SetAddToHistory decides whether this edit is undoable.
func (t *Transaction) SetAddToHistory(add bool) *Transaction {
	t.addToHistory = add
	return t
}

// AddToHistory reports whether this edit contributes to undo history.
func (t *Transaction) AddToHistory() bool { return t.addToHistory }

// InsertText splices text into the textblock at pos.
func (t *Transaction) InsertText(pos int, text string) error {
	return t.Step(&InsertTextStep{Pos: pos, Text: text})
}

// DeleteRange removes the tokens in [from, to).
func (t *Transaction) DeleteRange(from, to int) error {
	return t.Step(&DeleteRangeStep{From: from, To: to})
}

// SplitAt divides depth ancestor levels at pos.
func (t *Transaction) SplitAt(pos, depth int) error {
	return t.Step(&SplitStep{Pos: pos, Depth: depth})
}

// JoinAt fuses the siblings adjacent at pos.
func (t *Transaction) JoinAt(pos int) error {
	return t.Step(&JoinStep{Pos: pos})
}

// SetAttrs merges attrs onto the node starting at pos.
func (t *Transaction) SetAttrs(pos int, attrs map[string]string) error {
	return t.Step(&SetAttrsStep{Pos: pos, Attrs: attrs})
}

// RemovesContent reports whether any step deleted document tokens.
// Insert-only edits never do.
func (t *Transaction) RemovesContent() bool {
	for _, sm := range t.mapping {
		for _, r := range sm.ranges {
			if r.oldSize > 0 {
				return true
			}
		}
	}
	return false
}
