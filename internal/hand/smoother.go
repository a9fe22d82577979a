package hand

// DefaultSmoothing weights the previous position over the raw one.
const DefaultSmoothing = 0.7

// Smoother applies exponential smoothing to a cursor position.
// It holds a single previous position that Reset clears, so smoothing
// never bridges a tracking gap.
type Smoother struct {
	factor float64
	prev   *Point
}

// NewSmoother creates a Smoother. The factor is the weight of the previous
// position in [0,1); 0 disables smoothing.
func NewSmoother(factor float64) *Smoother {
	return &Smoother{factor: factor}
}

// Smooth blends raw with the previous position and stores the result.
func (s *Smoother) Smooth(raw Point) Point {
	out := raw
	if s.prev != nil {
		out = Point{
			X: s.factor*s.prev.X + (1-s.factor)*raw.X,
			Y: s.factor*s.prev.Y + (1-s.factor)*raw.Y,
		}
	}
	s.prev = &out
	return out
}

// Reset forgets the previous position.
func (s *Smoother) Reset() {
	s.prev = nil
}

// Previous returns the stored position, or nil after a reset.
func (s *Smoother) Previous() *Point {
	if s.prev == nil {
		return nil
	}
	p := *s.prev
	return &p
}
