package panel

// Segment patterns for digits 0-9, bit 0 shifted first. The modules come in
// two mountings that differ in where the decimal point sits.
var (
	DigitsDPDown = [10]byte{119, 65, 59, 107, 77, 110, 126, 67, 127, 111}
	DigitsDPUp   = [10]byte{119, 20, 59, 62, 92, 110, 111, 52, 127, 126}
)

// Orientation selects a segment table.
type Orientation int

const (
	OrientationDPDown Orientation = iota
	OrientationDPUp
)

func (o Orientation) String() string {
	if o == OrientationDPUp {
		return "dp-up"
	}
	return "dp-down"
}

// SegmentPattern returns the byte lighting digit d in the given mounting.
// ok is false when d is not 0-9.
func SegmentPattern(o Orientation, d int) (pattern byte, ok bool) {
	if d < 0 || d > 9 {
		return 0, false
	}
	if o == OrientationDPUp {
		return DigitsDPUp[d], true
	}
	return DigitsDPDown[d], true
}
