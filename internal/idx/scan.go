package idx

// ScanIndices describes one level of a nested tiled loop.
//
// Begin, End, Step and GroupSize give the shape of the level and may be
// shared between workers. Start, Stop and Index are the live progress of one
// worker: the sub-range it is processing and its tile position within the
// level.
type ScanIndices struct {
	Begin, End, Step, GroupSize Indices
	Start, Stop, Index          Indices
}

// NewScanIndices returns a descriptor with an empty range, unit step and
// unit group size.
func NewScanIndices() ScanIndices {
	return ScanIndices{
		Step:      FromConst(1),
		GroupSize: FromConst(1),
	}
}

// InitFromOuter narrows this level to the range the outer level is
// currently processing. Start, Stop and Index are passed through unchanged
// as a starting point for this level's own tiling.
func (s *ScanIndices) InitFromOuter(outer *ScanIndices) {
	s.Begin = outer.Start
	s.End = outer.Stop

	s.Start = outer.Start
	s.Stop = outer.Stop
	s.Index = outer.Index
}
