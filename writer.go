package qoa

import (
	"io"

	"github.com/mewkiz/pkg/errutil"
)

// An Encoder encodes audio samples to a QOA stream, one frame at a time.
type Encoder struct {
	// Stream descriptor of the encoder.
	*Desc
	// Underlying io.Writer of the output stream.
	w io.Writer
	// Interleaved samples pending encoding; always less than one full
	// frame.
	pending []int16
	// Samples per channel written so far.
	n int
	// Scratch buffer holding the bytes of one frame.
	buf []byte
}

// NewEncoder validates the channel count and sample rate of q, stores the
// file header to w and returns an Encoder to be used for encoding audio
// samples.
//
// The NSamples field of q may be left at zero when w implements
// io.WriteSeeker; Close rewrites the file header with the total number of
// samples written. Otherwise NSamples states up front how many samples
// per channel will be written.
func NewEncoder(w io.Writer, q *Desc) (*Encoder, error) {
	switch {
	case q.SampleRate < 1 || q.SampleRate > 0xffffff:
		return nil, errutil.Newf("invalid sample rate; expected >= 1 and <= %d, got %d", 0xffffff, q.SampleRate)
	case q.NChannels < 1 || q.NChannels > MaxChannels:
		return nil, errutil.Newf("invalid number of channels; expected >= 1 and <= %d, got %d", MaxChannels, q.NChannels)
	}
	if q.NSamples < 1 {
		if _, ok := w.(io.WriteSeeker); !ok {
			return nil, errutil.Newf("unknown number of samples; expected io.WriteSeeker to rewrite the file header on Close, got %T", w)
		}
	}

	for c := 0; c < q.NChannels; c++ {
		q.LMS[c] = initLMSState()
	}
	q.Error = 0

	enc := &Encoder{
		Desc: q,
		w:    w,
		buf:  make([]byte, q.MaxFrameSize()),
	}
	n := q.EncodeHeader(enc.buf)
	if _, err := w.Write(enc.buf[:n]); err != nil {
		return nil, errutil.Err(err)
	}
	return enc, nil
}

// Write encodes the given samples, interleaved by channel, to the output
// stream. Samples are buffered until a full frame of 5120 samples per
// channel is available; the final samples of the stream are flushed by
// Close.
func (enc *Encoder) Write(samples []int16) error {
	enc.pending = append(enc.pending, samples...)
	full := FrameLen * enc.NChannels
	for len(enc.pending) >= full {
		if err := enc.writeFrame(enc.pending[:full], FrameLen); err != nil {
			return errutil.Err(err)
		}
		enc.pending = enc.pending[:copy(enc.pending, enc.pending[full:])]
	}
	return nil
}

// writeFrame encodes one frame of samples to the output stream.
func (enc *Encoder) writeFrame(samples []int16, frameLen int) error {
	n, err := enc.EncodeFrame(samples, frameLen, enc.buf)
	if err != nil {
		return errutil.Err(err)
	}
	if _, err := enc.w.Write(enc.buf[:n]); err != nil {
		return errutil.Err(err)
	}
	enc.n += frameLen
	return nil
}

// Close flushes any pending samples as a final short frame and updates
// the NSamples field of the descriptor with the number of samples per
// channel written. If the underlying io.Writer implements io.WriteSeeker,
// the file header is rewritten with the final sample count.
func (enc *Encoder) Close() error {
	if rem := len(enc.pending); rem > 0 {
		if rem%enc.NChannels != 0 {
			return errutil.Newf("partial sample frame pending; %d samples do not evenly divide %d channels", rem, enc.NChannels)
		}
		if err := enc.writeFrame(enc.pending, rem/enc.NChannels); err != nil {
			return errutil.Err(err)
		}
		enc.pending = enc.pending[:0]
	}

	if enc.NSamples != 0 && enc.NSamples != enc.n {
		return errutil.Newf("sample count mismatch; file header states %d samples per channel, got %d", enc.NSamples, enc.n)
	}
	enc.NSamples = enc.n

	// Rewrite the file header with the final sample count.
	if ws, ok := enc.w.(io.WriteSeeker); ok {
		if _, err := ws.Seek(0, io.SeekStart); err != nil {
			return errutil.Err(err)
		}
		n := enc.EncodeHeader(enc.buf)
		if _, err := ws.Write(enc.buf[:n]); err != nil {
			return errutil.Err(err)
		}
		if _, err := ws.Seek(0, io.SeekEnd); err != nil {
			return errutil.Err(err)
		}
	}

	if c, ok := enc.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
