package recycler

// Axis is the scroll axis of a list.
type Axis int

const (
	Vertical Axis = iota
	Horizontal
)

// sign maps a distance along the axis to an anchored coordinate: vertical
// content grows downward (negative), horizontal content grows rightward.
func (a Axis) sign() float64 {
	if a == Vertical {
		return -1
	}
	return 1
}

// Near returns the direction of the edge at the content origin.
func (a Axis) Near() Direction {
	if a == Vertical {
		return DirectionTop
	}
	return DirectionLeft
}

// Far returns the direction of the edge at the content end.
func (a Axis) Far() Direction {
	if a == Vertical {
		return DirectionBottom
	}
	return DirectionRight
}

func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Direction identifies a list edge, used for pull events and incremental loads.
type Direction int

const (
	DirectionTop Direction = iota
	DirectionBottom
	DirectionLeft
	DirectionRight
)

// IsNear reports whether d is the edge at the content origin.
func (d Direction) IsNear() bool {
	return d == DirectionTop || d == DirectionLeft
}

func (d Direction) String() string {
	switch d {
	case DirectionTop:
		return "top"
	case DirectionBottom:
		return "bottom"
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	}
	return "unknown"
}

// Alignment selects which point of an item is brought to the snap anchor.
type Alignment int

const (
	AlignStart Alignment = iota
	AlignMiddle
	AlignEnd
)

func (a Alignment) ratio() float64 {
	switch a {
	case AlignMiddle:
		return 0.5
	case AlignEnd:
		return 1
	}
	return 0
}

func (a Alignment) String() string {
	switch a {
	case AlignMiddle:
		return "middle"
	case AlignEnd:
		return "end"
	}
	return "start"
}

// SizeMode declares whether items share one extent.
type SizeMode int

const (
	// SizeAuto inspects every queried extent and picks the uniform path only
	// when all of them match.
	SizeAuto SizeMode = iota
	// SizeUniform forces the uniform path.
	SizeUniform
	// SizeVariable forces the incremental variable-size path.
	SizeVariable
)

func (m SizeMode) String() string {
	switch m {
	case SizeUniform:
		return "uniform"
	case SizeVariable:
		return "variable"
	}
	return "auto"
}

const (
	DefaultPullText    = "Pull to refresh"
	DefaultReleaseText = "Release to load"
)

type options struct {
	axis        Axis
	dynamicSize bool
	sizeMode    SizeMode
	fixedSize   float64
	padNear     float64
	padFar      float64
	spacing     float64
	addon       int

	labelOffset float64
	pullRelease float64
	pullNear    bool
	pullFar     bool
	nearPull    string
	nearRelease string
	farPull     string
	farRelease  string

	snap           bool
	snapAnchor     float64
	snapAlign      Alignment
	snapElasticity float64
	slowVelocity   float64
	jumpVelocity   float64
}

func defaultOptions() options {
	return options{
		axis:           Vertical,
		dynamicSize:    true,
		padNear:        10,
		padFar:         10,
		spacing:        10,
		addon:          4,
		labelOffset:    85,
		pullRelease:    1.5,
		pullNear:       true,
		pullFar:        true,
		nearPull:       DefaultPullText,
		nearRelease:    DefaultReleaseText,
		farPull:        DefaultPullText,
		farRelease:     DefaultReleaseText,
		snapAnchor:     0.5,
		snapElasticity: 0.1,
		slowVelocity:   50,
		jumpVelocity:   50,
	}
}

type Option func(*options)

// WithAxis sets the scroll axis.
func WithAxis(axis Axis) Option {
	return func(o *options) {
		o.axis = axis
	}
}

// WithFixedSize disables per-item size queries; every item gets size.
func WithFixedSize(size float64) Option {
	return func(o *options) {
		o.dynamicSize = false
		o.fixedSize = size
	}
}

// WithDynamicSize enables per-item size queries. fallback is used when no
// size callback is registered.
func WithDynamicSize(fallback float64) Option {
	return func(o *options) {
		o.dynamicSize = true
		o.fixedSize = fallback
	}
}

// WithSizeMode declares the list as uniform or variable instead of
// inferring it from the queried sizes.
func WithSizeMode(mode SizeMode) Option {
	return func(o *options) {
		o.sizeMode = mode
	}
}

// WithPadding sets the padding before the first and after the last item.
// It is ignored while snapping is enabled.
func WithPadding(near, far float64) Option {
	return func(o *options) {
		o.padNear = near
		o.padFar = far
	}
}

// WithSpacing sets the gap between items.
func WithSpacing(spacing float64) Option {
	return func(o *options) {
		o.spacing = spacing
	}
}

// WithAddonViews sets how many slots are created beyond the ones needed to
// cover the viewport.
func WithAddonViews(n int) Option {
	return func(o *options) {
		o.addon = max(0, n)
	}
}

// WithPullThresholds sets the overscroll distance that reveals a pull label
// and the multiplier of that distance that arms a load.
func WithPullThresholds(labelOffset, releaseMultiplier float64) Option {
	return func(o *options) {
		o.labelOffset = labelOffset
		o.pullRelease = releaseMultiplier
	}
}

// WithPullEdges enables or disables pull detection per edge.
func WithPullEdges(near, far bool) Option {
	return func(o *options) {
		o.pullNear = near
		o.pullFar = far
	}
}

// WithNearLabels sets the texts of the label at the content origin.
func WithNearLabels(pull, release string) Option {
	return func(o *options) {
		o.nearPull = pull
		o.nearRelease = release
	}
}

// WithFarLabels sets the texts of the label at the content end.
func WithFarLabels(pull, release string) Option {
	return func(o *options) {
		o.farPull = pull
		o.farRelease = release
	}
}

// WithSnap enables snapping items to a normalized viewport anchor.
func WithSnap(anchor float64, align Alignment) Option {
	return func(o *options) {
		o.snap = true
		o.snapAnchor = min(1, max(0, anchor))
		o.snapAlign = align
	}
}

// WithoutSnap disables automatic snapping.
func WithoutSnap() Option {
	return func(o *options) {
		o.snap = false
	}
}

// WithSnapElasticity sets the settling time constant in seconds.
func WithSnapElasticity(seconds float64) Option {
	return func(o *options) {
		o.snapElasticity = seconds
	}
}

// WithSlowVelocity sets the speed below which a released list starts
// settling.
func WithSlowVelocity(v float64) Option {
	return func(o *options) {
		o.slowVelocity = v
	}
}

// WithJumpVelocity sets the residual velocity handed to the viewport after
// ScrollTo.
func WithJumpVelocity(v float64) Option {
	return func(o *options) {
		o.jumpVelocity = v
	}
}
