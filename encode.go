package qoa

import (
	"github.com/mewkiz/pkg/errutil"
	"github.com/mewkiz/qoa/internal/bits"
)

// EncodeHeader stores the 8 byte file header in dst and returns the
// number of bytes written.
func (q *Desc) EncodeHeader(dst []byte) int {
	pos := 0
	bits.WriteUint64(Magic<<32|uint64(uint32(q.NSamples)), dst, &pos)
	return pos
}

// EncodeFrame encodes one frame of up to 5120 samples per channel to dst
// and returns the number of bytes written. The samples of all channels are
// interleaved in sample order. The per-channel predictor state of q is
// stored in the frame header and evolves over the encoded slices.
func (q *Desc) EncodeFrame(samples []int16, frameLen int, dst []byte) (int, error) {
	nchannels := q.NChannels
	nslices := (frameLen + SliceLen - 1) / SliceLen
	fsize := frameSize(nchannels, nslices)
	switch {
	case frameLen < 1 || frameLen > FrameLen:
		return 0, errutil.Newf("invalid number of samples per channel and frame; expected >= 1 and <= %d, got %d", FrameLen, frameLen)
	case len(samples) < frameLen*nchannels:
		return 0, errutil.Newf("invalid number of samples in frame; expected %d, got %d", frameLen*nchannels, len(samples))
	case len(dst) < fsize:
		return 0, errutil.Newf("output buffer too small; need %d bytes, got %d", fsize, len(dst))
	}
	pos := 0

	// Frame header.
	bits.WriteUint64(uint64(nchannels)<<56|uint64(q.SampleRate)<<32|uint64(frameLen)<<16|uint64(fsize), dst, &pos)

	// Predictor state, each value truncated to its low 16 bits.
	for c := 0; c < nchannels; c++ {
		var history, weights uint64
		for i := 0; i < lmsLen; i++ {
			history = history<<16 | uint64(q.LMS[c].History[i])&0xffff
			weights = weights<<16 | uint64(q.LMS[c].Weights[i])&0xffff
		}
		bits.WriteUint64(history, dst, &pos)
		bits.WriteUint64(weights, dst, &pos)
	}

	// Slices, channel-interleaved at slice granularity; e.g. for stereo:
	// (ch 0, slice 0), (ch 1, slice 0), (ch 0, slice 1), ...
	for sampleIndex := 0; sampleIndex < frameLen; sampleIndex += SliceLen {
		sliceLen := min(SliceLen, frameLen-sampleIndex)
		for c := 0; c < nchannels; c++ {
			sliceStart := sampleIndex*nchannels + c
			sliceEnd := (sampleIndex+sliceLen)*nchannels + c

			// Brute force search for the best scalefactor. Go through all
			// 16 scalefactors, encode all samples of the current slice and
			// measure the total squared error.
			bestErr := ^uint64(0)
			var bestSlice uint64
			var bestLMS LMSState

			for sf := int32(0); sf < 16; sf++ {
				// Reset the predictor to the last known good state before
				// each attempt; encoding advances it.
				lms := q.LMS[c]
				slice := uint64(sf)
				var curErr uint64

				for i := sliceStart; i < sliceEnd; i += nchannels {
					sample := int32(samples[i])
					predicted := lms.predict()

					residual := sample - predicted
					scaled := div(residual, sf)
					clamped := clamp(scaled, -8, 8)
					quantized := quantTab[clamped+8]
					dequantized := dequantTab[sf][quantized]
					reconstructed := clamp(predicted+dequantized, -32768, 32767)

					e := int64(sample - reconstructed)
					curErr += uint64(e * e)
					if curErr > bestErr {
						break
					}

					lms.update(reconstructed, dequantized)
					slice = slice<<3 | uint64(quantized)
				}

				if curErr < bestErr {
					bestErr = curErr
					bestSlice = slice
					bestLMS = lms
				}
			}

			q.LMS[c] = bestLMS
			q.Error += float64(bestErr)

			// A slice shorter than 20 samples is left-shifted so its
			// residual bits occupy the high-order positions and the
			// padding the low-order zero bits.
			bestSlice <<= uint(3 * (SliceLen - sliceLen))
			bits.WriteUint64(bestSlice, dst, &pos)
		}
	}

	return pos, nil
}

// Encode encodes the given samples, interleaved by channel, according to
// the channel count, sample rate and sample count of q and returns the
// encoded file. The per-channel predictor state of q is initialized by
// Encode; its Error field accumulates the sum of squared prediction
// errors of the encoded slices.
func Encode(samples []int16, q *Desc) ([]byte, error) {
	switch {
	case q.NSamples < 1:
		return nil, errutil.Newf("invalid number of samples per channel; expected >= 1, got %d", q.NSamples)
	case q.SampleRate < 1 || q.SampleRate > 0xffffff:
		return nil, errutil.Newf("invalid sample rate; expected >= 1 and <= %d, got %d", 0xffffff, q.SampleRate)
	case q.NChannels < 1 || q.NChannels > MaxChannels:
		return nil, errutil.Newf("invalid number of channels; expected >= 1 and <= %d, got %d", MaxChannels, q.NChannels)
	case len(samples) < q.NSamples*q.NChannels:
		return nil, errutil.Newf("invalid number of samples; expected %d, got %d", q.NSamples*q.NChannels, len(samples))
	}

	// The encoded size follows exactly from the sample count; one file
	// header, one header and one predictor state block per frame, and one
	// slice per 20 samples and channel.
	nframes := (q.NSamples + FrameLen - 1) / FrameLen
	nslices := (q.NSamples + SliceLen - 1) / SliceLen
	encodedSize := 8 + nframes*8 + nframes*lmsLen*4*q.NChannels + nslices*8*q.NChannels
	dst := make([]byte, encodedSize)

	for c := 0; c < q.NChannels; c++ {
		q.LMS[c] = initLMSState()
	}

	pos := q.EncodeHeader(dst)
	q.Error = 0

	for sampleIndex := 0; sampleIndex < q.NSamples; {
		frameLen := min(FrameLen, q.NSamples-sampleIndex)
		frameSamples := samples[sampleIndex*q.NChannels:]
		n, err := q.EncodeFrame(frameSamples, frameLen, dst[pos:])
		if err != nil {
			return nil, errutil.Err(err)
		}
		pos += n
		sampleIndex += frameLen
	}

	return dst, nil
}
