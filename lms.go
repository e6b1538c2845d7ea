package qoa

// An LMSState holds the per-channel state of the Sign-Sign Least Mean
// Squares predictor; the last four reconstructed samples and the four
// adaptive filter weights. Both are kept within 16-bit range on the wire.
//
// LMSState has value semantics; the encoder snapshots and restores it by
// plain assignment while searching for the best scalefactor of a slice.
type LMSState struct {
	// The last four reconstructed samples, oldest first.
	History [lmsLen]int32
	// Adaptive filter coefficients.
	Weights [lmsLen]int32
}

// initLMSState resets the per-channel predictor state for encoding. The
// initial weights of {0, 0, -1, 2} in 3.13 fixed point help with the
// prediction of the first few milliseconds of a file.
func initLMSState() LMSState {
	return LMSState{
		Weights: [lmsLen]int32{0, 0, -(1 << 13), 1 << 14},
	}
}

// predict returns the predicted next sample; the sum of the history
// samples weighted by the filter coefficients, in 3.13 fixed point.
func (lms *LMSState) predict() int32 {
	var prediction int32
	for i := 0; i < lmsLen; i++ {
		prediction += lms.Weights[i] * lms.History[i]
	}
	return prediction >> 13
}

// update adjusts each weight by a fraction of the dequantized residual,
// towards the sign of the corresponding history sample, and shifts the
// reconstructed sample into the history.
func (lms *LMSState) update(sample, residual int32) {
	delta := residual >> 4
	for i := 0; i < lmsLen; i++ {
		if lms.History[i] < 0 {
			lms.Weights[i] -= delta
		} else {
			lms.Weights[i] += delta
		}
	}
	for i := 0; i < lmsLen-1; i++ {
		lms.History[i] = lms.History[i+1]
	}
	lms.History[lmsLen-1] = sample
}

// div performs a rounding division of v by scalefactorTab[sf] as a .16
// fixed point multiplication with reciprocalTab[sf]. The result is rounded
// away from zero, so small nonzero values never divide to zero; zero
// itself stays zero.
func div(v, sf int32) int32 {
	reciprocal := reciprocalTab[sf]
	n := (v*reciprocal + (1 << 15)) >> 16
	n += sign(v) - sign(n)
	return n
}

// sign returns -1, 0 or 1 matching the sign of v.
func sign(v int32) int32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// clamp returns v limited to the range min..max.
func clamp(v, min, max int32) int32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
