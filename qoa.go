// Package qoa provides access to QOA [1] (Quite OK Audio) files.
//
// A QOA file consists of an 8 byte file header, followed by a number of
// frames. Each frame holds an 8 byte frame header, the current predictor
// state per channel and up to 256 slices per channel. A slice is 8 bytes
// wide and encodes 20 samples of audio data of one channel.
//
// The basic structure of a QOA file is (pseudo code):
//
//	type FILE struct {
//	   magic   uint32 // magic bytes "qoaf".
//	   samples uint32 // samples per channel in this file.
//	   frames  []FRAME
//	}
//
//	type FRAME struct {
//	   nchannels  uint8  // number of channels.
//	   samplerate uint24 // sample rate in Hz.
//	   fsamples   uint16 // samples per channel in this frame.
//	   fsize      uint16 // frame size in bytes, including the header.
//	   lms        [nchannels]LMS_STATE // history and weights, 64 bits each.
//	   slices     [256][nchannels]SLICE
//	}
//
//	type SLICE struct {
//	   sfindex   uint4     // scalefactor index.
//	   residuals [20]uint3 // quantized residuals, oldest first.
//	}
//
// All values are stored in big-endian byte order and every structural unit
// is 64-bit aligned. The sample rate and channel count are only stated in
// the frame headers; a decoder peeks into the first frame of the file to
// find these values. In a valid QOA file all frames have the same channel
// count and the same sample rate.
//
// The last slice per channel in the last frame may encode fewer than 20
// samples; the slice is still 8 bytes wide with the unused residual
// positions zeroed out.
//
// [1]: https://qoaformat.org/
package qoa

import (
	"github.com/pkg/errors"
)

// Magic marks the first four bytes of each QOA file; "qoaf" stored as a
// big-endian 32-bit value.
const Magic = 0x716f6166

// Structural constants of the QOA format.
const (
	// MinFileSize is the size in bytes of the smallest possible QOA file;
	// a file header followed by a frame header.
	MinFileSize = 16
	// MaxChannels is the highest channel count of a QOA stream.
	MaxChannels = 8
	// SliceLen is the number of samples encoded by one slice.
	SliceLen = 20
	// SlicesPerFrame is the maximum number of slices per channel in one
	// frame.
	SlicesPerFrame = 256
	// FrameLen is the maximum number of samples per channel in one frame.
	FrameLen = SlicesPerFrame * SliceLen
	// lmsLen is the order of the predictor; the length of its history and
	// weight vectors.
	lmsLen = 4
)

// Parse errors returned by the decoder.
var (
	// ErrInvalidSignature reports a file header whose magic bytes are not
	// "qoaf".
	ErrInvalidSignature = errors.New("qoa: invalid magic signature")
	// ErrShortBuffer reports a buffer too short to hold the structure
	// being parsed.
	ErrShortBuffer = errors.New("qoa: buffer too short")
)

// A Desc describes a QOA audio stream and carries the predictor state of
// an encoding or decoding pass.
//
// On encode the caller fills in NChannels, SampleRate and NSamples. On
// decode the codec populates them from the stream. The per-channel
// predictor state evolves as frames are processed; after a decode it holds
// the values reached at the end of the last frame.
type Desc struct {
	// Number of channels; between 1 and 8.
	NChannels int
	// Sample rate in Hz; between 1 and 16777215.
	SampleRate int
	// Total number of samples per channel.
	NSamples int
	// Per-channel predictor state.
	LMS [MaxChannels]LMSState
	// Sum of squared prediction errors, accumulated per slice by the
	// encoder.
	Error float64
}

// frameSize returns the encoded size in bytes of a frame with the given
// number of channels and slices per channel, including the frame header.
func frameSize(nchannels, nslices int) int {
	return 8 + lmsLen*4*nchannels + 8*nslices*nchannels
}

// MaxFrameSize returns the encoded size in bytes of a frame holding the
// full 256 slices per channel.
func (q *Desc) MaxFrameSize() int {
	return frameSize(q.NChannels, SlicesPerFrame)
}
