package dom

// MutationRecord describes one childList change on Target.
type MutationRecord struct {
	Target       *Node
	AddedNodes   []*Node
	RemovedNodes []*Node
}

// MutationBatch is everything an observer collected between two delivery
// checkpoints.
type MutationBatch struct {
	Seq     uint64 // monotonically increasing per observer
	Records []MutationRecord
}

// ObserveOptions selects what an observer registration sees.
type ObserveOptions struct {
	ChildList bool
	Subtree   bool
}

// MutationCallback receives a delivered batch.
type MutationCallback func(MutationBatch)

// MutationObserver queues childList records for its registered targets and
// hands them to its callback at Document.DeliverMutations.
type MutationObserver struct {
	callback MutationCallback
	targets  []registration
	queue    []MutationRecord
	seq      uint64
}

type registration struct {
	node *Node
	opts ObserveOptions
}

// NewMutationObserver creates an observer that is not yet registered.
func NewMutationObserver(cb MutationCallback) *MutationObserver {
	return &MutationObserver{callback: cb}
}

// Observe registers target. Observing the same target again replaces its
// options.
func (o *MutationObserver) Observe(target *Node, opts ObserveOptions) {
	for i := range o.targets {
		if o.targets[i].node == target {
			o.targets[i].opts = opts
			return
		}
	}
	o.targets = append(o.targets, registration{node: target, opts: opts})
	if d := target.doc; d != nil && !d.hasObserver(o) {
		d.observers = append(d.observers, o)
	}
}

// Disconnect drops all registrations and any records not yet delivered.
// It is safe to call more than once.
func (o *MutationObserver) Disconnect() {
	for _, r := range o.targets {
		if d := r.node.doc; d != nil {
			d.removeObserver(o)
		}
	}
	o.targets = nil
	o.queue = nil
}

// TakeRecords empties and returns the pending queue without invoking the
// callback.
func (o *MutationObserver) TakeRecords() []MutationRecord {
	q := o.queue
	o.queue = nil
	return q
}

// interested reports whether a change on target is visible to o. Subtree
// registrations follow parent links only, so shadow trees and template
// content are not observed through their host.
func (o *MutationObserver) interested(target *Node) bool {
	for _, r := range o.targets {
		if !r.opts.ChildList {
			continue
		}
		if r.node == target {
			return true
		}
		if r.opts.Subtree && r.node.isInclusiveAncestorOf(target) {
			return true
		}
	}
	return false
}

func (n *Node) queueChildList(added, removed []*Node) {
	d := n.doc
	if d == nil || len(d.observers) == 0 {
		return
	}
	for _, o := range d.observers {
		if !o.interested(n) {
			continue
		}
		o.queue = append(o.queue, MutationRecord{
			Target:       n,
			AddedNodes:   append([]*Node(nil), added...),
			RemovedNodes: append([]*Node(nil), removed...),
		})
		d.pending = true
	}
}

// HasPendingMutations reports whether any observer has undelivered records.
func (d *Document) HasPendingMutations() bool { return d.pending }

// DeliverMutations is the delivery checkpoint: every observer with queued
// records gets one batch, in registration order. Records produced by the
// callbacks are delivered in further rounds until the queues are empty.
func (d *Document) DeliverMutations() {
	for d.pending {
		d.pending = false
		observers := append([]*MutationObserver(nil), d.observers...)
		for _, o := range observers {
			if len(o.queue) == 0 {
				continue
			}
			records := o.TakeRecords()
			o.seq++
			o.callback(MutationBatch{Seq: o.seq, Records: records})
		}
	}
}

func (d *Document) hasObserver(o *MutationObserver) bool {
	for _, x := range d.observers {
		if x == o {
			return true
		}
	}
	return false
}

func (d *Document) removeObserver(o *MutationObserver) {
	for i, x := range d.observers {
		if x == o {
			d.observers = append(d.observers[:i], d.observers[i+1:]...)
			return
		}
	}
}
