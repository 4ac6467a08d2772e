package platform

// vectorPlan describes the header/trailer buffers for one vectored call.
type vectorPlan struct {
	header  []byte
	trailer []byte
	hdrCnt  int32
	trlCnt  int32
}

// planVectors decides whether a call needs header/trailer vectors. When it
// returns false the plain non-vectored call is used.
func planVectors(header, trailer []byte) (vectorPlan, bool) {
	if len(header) == 0 && len(trailer) == 0 {
		return vectorPlan{}, false
	}
	p := vectorPlan{header: header, trailer: trailer}
	if len(header) > 0 {
		p.hdrCnt = 1
	}
	if len(trailer) > 0 {
		p.trlCnt = 1
	}
	return p, true
}

// darwinSeed returns the initial value of Darwin's in/out length argument.
// The kernel counts header bytes in it, so it must start at count+header.
func darwinSeed(count int64, p vectorPlan, vectored bool) int64 {
	if !vectored {
		return count
	}
	return count + int64(len(p.header))
}
