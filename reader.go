package qoa

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

// A Stream provides frame-by-frame access to the audio samples of a QOA
// stream. Its embedded descriptor holds the stream parameters and the
// predictor state reached after the last parsed frame.
type Stream struct {
	Desc
	// Underlying io.Reader of the stream.
	r *bufio.Reader
	// io.Closer of the underlying file, if opened through Open.
	c io.Closer
	// Samples per channel parsed so far.
	n int
	// Scratch buffer holding the bytes of one frame.
	buf []byte
}

// New reads the file header of the QOA stream and peeks into the first
// frame header for the channel count and sample rate. It returns a Stream
// from which audio frames may be parsed through ParseNext.
func New(r io.Reader) (*Stream, error) {
	br := bufio.NewReader(r)
	s := &Stream{r: br}

	hdr, err := br.Peek(MinFileSize)
	if err != nil {
		if err == io.EOF {
			return nil, errors.WithStack(io.ErrUnexpectedEOF)
		}
		return nil, errors.WithStack(err)
	}
	if _, err := s.DecodeHeader(hdr); err != nil {
		return nil, err
	}
	// Only the file header is consumed; the first frame header is read
	// again by ParseNext.
	if _, err := br.Discard(8); err != nil {
		return nil, errors.WithStack(err)
	}
	s.buf = make([]byte, s.MaxFrameSize())
	return s, nil
}

// Open opens the provided file and returns a Stream for parsing its audio
// frames. Close the stream to release the underlying file.
func Open(path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	s, err := New(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	s.c = f
	return s, nil
}

// Close closes the underlying file of the stream, if opened through Open.
func (s *Stream) Close() error {
	if s.c != nil {
		return s.c.Close()
	}
	return nil
}

// ParseNext parses and returns the interleaved audio samples of the next
// frame. It returns io.EOF once all samples of the stream have been
// parsed.
func (s *Stream) ParseNext() ([]int16, error) {
	if s.n >= s.NSamples {
		return nil, io.EOF
	}

	// Read the frame header first to learn the size of the frame.
	hdr, err := s.r.Peek(8)
	if err != nil {
		if err == io.EOF {
			return nil, errors.WithStack(io.ErrUnexpectedEOF)
		}
		return nil, errors.WithStack(err)
	}
	frameHeader := binary.BigEndian.Uint64(hdr)
	fsamples := int(frameHeader >> 16 & 0xffff)
	fsize := int(frameHeader & 0xffff)
	if fsize > len(s.buf) {
		return nil, errors.Errorf("qoa: invalid frame header; frame size %d exceeds maximum frame size %d", fsize, len(s.buf))
	}
	if _, err := io.ReadFull(s.r, s.buf[:fsize]); err != nil {
		return nil, errors.WithStack(err)
	}

	samples := make([]int16, fsamples*s.NChannels)
	if _, _, err := s.DecodeFrame(s.buf[:fsize], samples); err != nil {
		return nil, err
	}
	s.n += fsamples
	return samples, nil
}
