package recycler

import "log/slog"

// Label is the state of a pull label at one edge.
type Label struct {
	Visible bool
	Text    string
}

type pullState struct {
	near, far       Label
	canNear, canFar bool
	// overscroll of each edge on the last tick, zero when not overscrolled
	nearOver, farOver float64
}

func (p *pullState) reset(o *options) {
	*p = pullState{
		near: Label{Text: o.nearPull},
		far:  Label{Text: o.farPull},
	}
}

// updatePull recomputes labels and release flags from the overscroll of both
// edges.
func (e *Engine[V]) updatePull(offset float64) {
	o := &e.opts
	e.pull.nearOver = max(0, -offset)
	e.pull.farOver = max(0, offset-e.maxOffset())
	e.pull.near, e.pull.canNear = pullEdge(e.pull.nearOver, o.pullNear, o.labelOffset, o.pullRelease, o.nearPull, o.nearRelease)
	e.pull.far, e.pull.canFar = pullEdge(e.pull.farOver, o.pullFar, o.labelOffset, o.pullRelease, o.farPull, o.farRelease)
}

func pullEdge(over float64, enabled bool, threshold, release float64, pullText, releaseText string) (Label, bool) {
	if !enabled || over <= threshold {
		return Label{Text: pullText}, false
	}
	if over > threshold*release {
		return Label{Visible: true, Text: releaseText}, true
	}
	return Label{Visible: true, Text: pullText}, false
}

// Drop handles the release of a drag. An armed near edge wins over an armed
// far edge; both flags are cleared afterwards.
func (e *Engine[V]) Drop() {
	near, far := e.pull.canNear, e.pull.canFar
	e.pull.canNear, e.pull.canFar = false, false
	if e.cb.Pull == nil || !e.enter("Drop") {
		return
	}
	defer e.leave()
	switch {
	case near:
		slog.Debug("Pull released", "direction", e.opts.axis.Near())
		e.cb.Pull(e.opts.axis.Near())
	case far:
		slog.Debug("Pull released", "direction", e.opts.axis.Far())
		e.cb.Pull(e.opts.axis.Far())
	}
}

// Labels returns the near and far pull labels.
func (e *Engine[V]) Labels() (near, far Label) {
	return e.pull.near, e.pull.far
}

// CanLoad reports which edges are armed for a load on release.
func (e *Engine[V]) CanLoad() (near, far bool) {
	return e.pull.canNear, e.pull.canFar
}

// PullProgress returns how far each edge is pulled relative to its release
// threshold: 0 when not overscrolled, 1 or more once armed.
func (e *Engine[V]) PullProgress() (near, far float64) {
	limit := e.opts.labelOffset * e.opts.pullRelease
	if limit <= 0 {
		return 0, 0
	}
	return e.pull.nearOver / limit, e.pull.farOver / limit
}
