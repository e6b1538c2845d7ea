package qoa

import (
	"bytes"
	"fmt"

	"github.com/icza/bitio"
	"github.com/mewkiz/qoa/internal/bits"
)

// DecodeHeader parses the 8 byte file header at the start of data,
// verifies the magic bytes and populates the channel count, sample rate
// and total sample count of q. The channel count and sample rate are
// peeked from the first frame header; the peek does not advance past the
// file header, so the frame parser re-reads the same frame header.
//
// It returns the number of bytes consumed, which is always 8 on success.
func (q *Desc) DecodeHeader(data []byte) (int, error) {
	if len(data) < MinFileSize {
		return 0, ErrShortBuffer
	}
	pos := 0
	fileHeader := bits.ReadUint64(data, &pos)
	if fileHeader>>32 != Magic {
		return 0, ErrInvalidSignature
	}
	q.NSamples = int(fileHeader & 0xffffffff)
	if q.NSamples == 0 {
		return 0, fmt.Errorf("qoa: invalid file header; sample count is zero")
	}

	// Peek into the first frame header to get the number of channels and
	// the sample rate.
	frameHeader := bits.ReadUint64(data, &pos)
	q.NChannels = int(frameHeader >> 56 & 0xff)
	q.SampleRate = int(frameHeader >> 32 & 0xffffff)
	if q.NChannels == 0 {
		return 0, fmt.Errorf("qoa: invalid frame header; channel count is zero")
	}
	if q.NChannels > MaxChannels {
		return 0, fmt.Errorf("qoa: invalid frame header; channel count %d exceeds %d", q.NChannels, MaxChannels)
	}
	if q.SampleRate == 0 {
		return 0, fmt.Errorf("qoa: invalid frame header; sample rate is zero")
	}

	return 8, nil
}

// DecodeFrame parses one frame at the start of data, writing the
// reconstructed samples of all channels, interleaved, to samples. The
// per-channel predictor state of q is replaced by the state stored in the
// frame header and then evolves over the decoded slices.
//
// It returns the number of bytes consumed and the number of samples per
// channel decoded. A malformed frame consumes no bytes.
func (q *Desc) DecodeFrame(data []byte, samples []int16) (n, frameLen int, err error) {
	if len(data) < frameSize(q.NChannels, 0) {
		return 0, 0, ErrShortBuffer
	}
	br := bitio.NewReader(bytes.NewReader(data))

	// Frame header.
	nchannels := int(br.TryReadBits(8))
	sampleRate := int(br.TryReadBits(24))
	fsamples := int(br.TryReadBits(16))
	fsize := int(br.TryReadBits(16))

	dataSize := fsize - frameSize(nchannels, 0)
	nslices := dataSize / 8
	maxTotalSamples := nslices * SliceLen

	if nchannels != q.NChannels {
		return 0, 0, fmt.Errorf("qoa: channel count mismatch between frames; expected %d, got %d", q.NChannels, nchannels)
	}
	if sampleRate != q.SampleRate {
		return 0, 0, fmt.Errorf("qoa: sample rate mismatch between frames; expected %d, got %d", q.SampleRate, sampleRate)
	}
	if fsize > len(data) {
		return 0, 0, ErrShortBuffer
	}
	if fsamples*nchannels > maxTotalSamples {
		return 0, 0, fmt.Errorf("qoa: invalid frame header; %d samples exceed the %d slices of the frame", fsamples, nslices)
	}
	if len(samples) < fsamples*nchannels {
		return 0, 0, fmt.Errorf("qoa: output buffer too small; need %d samples, got %d", fsamples*nchannels, len(samples))
	}

	// Predictor state; 4 history and 4 weight values per channel, stored
	// as 16-bit two's complement, highest index in the lowest bits.
	for c := 0; c < nchannels; c++ {
		for i := range q.LMS[c].History {
			q.LMS[c].History[i] = int32(bits.IntN(br.TryReadBits(16), 16))
		}
		for i := range q.LMS[c].Weights {
			q.LMS[c].Weights[i] = int32(bits.IntN(br.TryReadBits(16), 16))
		}
	}

	// Slices, channel-interleaved at slice granularity.
	for sampleIndex := 0; sampleIndex < fsamples; sampleIndex += SliceLen {
		sliceLen := min(SliceLen, fsamples-sampleIndex)
		for c := 0; c < nchannels; c++ {
			scalefactor := br.TryReadBits(4)
			for i := 0; i < sliceLen; i++ {
				predicted := q.LMS[c].predict()
				quantized := br.TryReadBits(3)
				dequantized := dequantTab[scalefactor][quantized]
				reconstructed := clamp(predicted+dequantized, -32768, 32767)

				samples[(sampleIndex+i)*nchannels+c] = int16(reconstructed)
				q.LMS[c].update(reconstructed, dequantized)
			}
			// Skip the zero padding of a short final slice, so that the
			// next read starts on a 64-bit boundary.
			if sliceLen < SliceLen {
				br.TryReadBits(uint8(3 * (SliceLen - sliceLen)))
			}
		}
	}
	if br.TryError != nil {
		return 0, 0, br.TryError
	}

	nslicesRead := (fsamples + SliceLen - 1) / SliceLen
	return frameSize(nchannels, nslicesRead), fsamples, nil
}

// Decode decodes the QOA file stored in data and returns its descriptor
// along with the reconstructed samples of all channels, interleaved.
//
// Decoding stops at the first malformed frame; the samples decoded up to
// that point are returned and the NSamples field of the descriptor is
// overwritten with the sample count actually decoded.
func Decode(data []byte) (*Desc, []int16, error) {
	q := new(Desc)
	pos, err := q.DecodeHeader(data)
	if err != nil {
		return nil, nil, err
	}
	samples := make([]int16, q.NSamples*q.NChannels)

	sampleIndex := 0
	for sampleIndex < q.NSamples {
		n, frameLen, err := q.DecodeFrame(data[pos:], samples[sampleIndex*q.NChannels:])
		if err != nil {
			break
		}
		pos += n
		sampleIndex += frameLen
	}

	q.NSamples = sampleIndex
	return q, samples[:sampleIndex*q.NChannels], nil
}
