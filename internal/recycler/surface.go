package recycler

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
)

const (
	// defaultDeceleration is the fraction of velocity kept after one second
	// of inertia.
	defaultDeceleration = 0.135
	// defaultReturnTime is the time constant of the elastic return from
	// overscroll, in seconds.
	defaultReturnTime = 0.1
	// restVelocity is the speed under which inertia stops.
	restVelocity = 1
)

// Surface is an in-memory Viewport with inertia, drag capture and elastic
// overscroll. Hosts feed it pointer input and call Step once per frame
// before Engine.Tick.
type Surface struct {
	extent   float64
	content  float64
	offset   float64
	velocity float64

	dragging bool
	// distance dragged since the last Step
	dragged float64

	deceleration float64
	returnTime   float64
	returnVel    float64
}

// NewSurface returns a surface showing extent units of content.
func NewSurface(extent float64) *Surface {
	return &Surface{
		extent:       extent,
		deceleration: defaultDeceleration,
		returnTime:   defaultReturnTime,
	}
}

// SetDeceleration sets the fraction of velocity kept per second of inertia.
func (s *Surface) SetDeceleration(rate float64) {
	s.deceleration = min(1, max(0, rate))
}

// SetReturnTime sets the time constant of the elastic return from
// overscroll. Zero returns immediately.
func (s *Surface) SetReturnTime(seconds float64) {
	s.returnTime = max(0, seconds)
}

// Resize changes the visible extent.
func (s *Surface) Resize(extent float64) {
	s.extent = max(0, extent)
}

func (s *Surface) Extent() float64              { return s.extent }
func (s *Surface) Offset() float64              { return s.offset }
func (s *Surface) SetOffset(offset float64)     { s.offset = offset }
func (s *Surface) Velocity() float64            { return s.velocity }
func (s *Surface) SetVelocity(velocity float64) { s.velocity = velocity }
func (s *Surface) Dragging() bool               { return s.dragging }

func (s *Surface) SetContentExtent(extent float64) {
	s.content = extent
}

// ContentExtent returns the last content extent published by the engine.
func (s *Surface) ContentExtent() float64 { return s.content }

// MaxOffset returns the largest offset that is not an overscroll.
func (s *Surface) MaxOffset() float64 {
	return max(0, s.content-s.extent)
}

// Overscroll returns how far the offset lies outside [0, MaxOffset]:
// negative past the near edge, positive past the far edge.
func (s *Surface) Overscroll() float64 {
	switch m := s.MaxOffset(); {
	case s.offset < 0:
		return s.offset
	case s.offset > m:
		return s.offset - m
	}
	return 0
}

// BeginDrag captures the content. Inertia stops until EndDrag.
func (s *Surface) BeginDrag() {
	s.dragging = true
	s.dragged = 0
	s.velocity = 0
	s.returnVel = 0
}

// DragBy moves the content by delta toward the far end. Past an edge the
// movement is damped by the distance already overscrolled so pulls feel
// elastic.
func (s *Surface) DragBy(delta float64) {
	if !s.dragging {
		return
	}
	if over := s.Overscroll(); over != 0 && math.Signbit(over) == math.Signbit(delta) {
		delta *= rubberBand(math.Abs(over), s.extent)
	}
	s.offset += delta
	s.dragged += delta
}

// rubberBand is the share of a drag applied when already over units past an
// edge of a viewport of the given extent.
func rubberBand(over, extent float64) float64 {
	if extent <= 0 {
		return 0
	}
	return 1 / (1 + over/extent*4)
}

// EndDrag releases the content and keeps the velocity measured by the last
// Step as inertia.
func (s *Surface) EndDrag() {
	s.dragging = false
	s.dragged = 0
}

// ScrollBy moves the content by delta without inertia, clamped to the
// scrollable range.
func (s *Surface) ScrollBy(delta float64) {
	s.offset = max(0, min(s.offset+delta, s.MaxOffset()))
	s.velocity = 0
}

// Fling starts inertia with velocity units per second.
func (s *Surface) Fling(velocity float64) {
	if s.dragging {
		return
	}
	s.velocity = velocity
}

// Step advances inertia and the elastic return by dt.
func (s *Surface) Step(dt time.Duration) {
	secs := dt.Seconds()
	if secs <= 0 {
		return
	}
	if s.dragging {
		s.velocity = s.dragged / secs
		s.dragged = 0
		return
	}

	if over := s.Overscroll(); over != 0 {
		edge := s.offset - over
		if s.returnTime <= 0 {
			s.offset = edge
			s.velocity, s.returnVel = 0, 0
			return
		}
		// Keep whatever inertia carried the content out as the initial
		// return velocity.
		if s.returnVel == 0 {
			s.returnVel = s.velocity
		}
		spring := harmonica.NewSpring(secs, 2/s.returnTime, 1)
		s.offset, s.returnVel = spring.Update(s.offset, s.returnVel, edge)
		s.velocity = s.returnVel
		if math.Abs(s.offset-edge) < settleDistance {
			s.offset = edge
			s.velocity, s.returnVel = 0, 0
		}
		return
	}
	s.returnVel = 0

	if s.velocity == 0 {
		return
	}
	s.offset += s.velocity * secs
	s.velocity *= math.Pow(s.deceleration, secs)
	if math.Abs(s.velocity) < restVelocity {
		s.velocity = 0
	}
}

var _ Viewport = (*Surface)(nil)
