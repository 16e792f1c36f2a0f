package srtp

import "math"

const seqHalf = 1 << 15

// estimateROC guesses the rollover counter of an incoming sequence number
// relative to the highest index seen so far (RFC 3711 §3.3.1). Among ROC-1,
// ROC and ROC+1 it picks the candidate whose index lies closest to the
// high-water mark; an exact tie keeps the current ROC.
func estimateROC(top uint64, seq uint16) uint32 {
	roc := uint32(top >> 16)
	last := int(uint16(top))
	s := int(seq)
	if last < seqHalf {
		if s-last > seqHalf && roc > 0 {
			return roc - 1
		}
		return roc
	}
	if last-seqHalf > s && roc < math.MaxUint32 {
		return roc + 1
	}
	return roc
}
