package qoa_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/mewkiz/qoa"
)

// genSine returns nsamples interleaved samples per channel of a 440 Hz
// sine at the given amplitude; each channel is phase shifted.
func genSine(nsamples, nchannels int, amp float64) []int16 {
	samples := make([]int16, nsamples*nchannels)
	for i := 0; i < nsamples; i++ {
		for c := 0; c < nchannels; c++ {
			v := amp * math.Sin(2*math.Pi*440*float64(i)/44100+float64(c))
			samples[i*nchannels+c] = int16(v)
		}
	}
	return samples
}

func TestEncodeInvalidDesc(t *testing.T) {
	golden := []struct {
		name string
		desc qoa.Desc
	}{
		{name: "zero samples", desc: qoa.Desc{NChannels: 1, SampleRate: 44100, NSamples: 0}},
		{name: "sample rate overflow", desc: qoa.Desc{NChannels: 1, SampleRate: 0x1000000, NSamples: 1}},
		{name: "zero sample rate", desc: qoa.Desc{NChannels: 1, SampleRate: 0, NSamples: 1}},
		{name: "zero channels", desc: qoa.Desc{NChannels: 0, SampleRate: 44100, NSamples: 1}},
		{name: "too many channels", desc: qoa.Desc{NChannels: 9, SampleRate: 44100, NSamples: 1}},
	}
	for _, g := range golden {
		t.Run(g.name, func(t *testing.T) {
			desc := g.desc
			if _, err := qoa.Encode(make([]int16, 16), &desc); err == nil {
				t.Errorf("expected encoding error for descriptor %+v, got none", g.desc)
			}
		})
	}
}

func TestEncodedSize(t *testing.T) {
	golden := []struct {
		nchannels int
		nsamples  int
		want      int
	}{
		// One slice; file header, frame header, predictor state, slice.
		{nchannels: 1, nsamples: 20, want: 8 + 8 + 16 + 8},
		{nchannels: 1, nsamples: 1, want: 8 + 8 + 16 + 8},
		{nchannels: 1, nsamples: 21, want: 8 + 8 + 16 + 2*8},
		// One sample beyond a full frame.
		{nchannels: 1, nsamples: 5121, want: 8 + 2*8 + 2*16 + 257*8},
		{nchannels: 2, nsamples: 5120, want: 8 + 8 + 2*16 + 256*8*2},
	}
	for _, g := range golden {
		t.Run(fmt.Sprintf("%dch_%dsamples", g.nchannels, g.nsamples), func(t *testing.T) {
			desc := qoa.Desc{NChannels: g.nchannels, SampleRate: 44100, NSamples: g.nsamples}
			data, err := qoa.Encode(genSine(g.nsamples, g.nchannels, 10000), &desc)
			if err != nil {
				t.Fatal(err)
			}
			if len(data) != g.want {
				t.Errorf("encoded size mismatch; expected %d, got %d", g.want, len(data))
			}
			if want := []byte{0x71, 0x6f, 0x61, 0x66}; !bytes.Equal(data[:4], want) {
				t.Errorf("magic bytes mismatch; expected % X, got % X", want, data[:4])
			}
			if got := int(binary.BigEndian.Uint32(data[4:])); got != g.nsamples {
				t.Errorf("sample count field mismatch; expected %d, got %d", g.nsamples, got)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	golden := []struct {
		nchannels  int
		sampleRate int
		nsamples   int
	}{
		{nchannels: 1, sampleRate: 8000, nsamples: 20},
		{nchannels: 1, sampleRate: 44100, nsamples: 5121},
		{nchannels: 2, sampleRate: 44100, nsamples: 12000},
		{nchannels: 3, sampleRate: 22050, nsamples: 5120},
		{nchannels: 8, sampleRate: 48000, nsamples: 137},
	}
	for _, g := range golden {
		t.Run(fmt.Sprintf("%dch_%dhz_%dsamples", g.nchannels, g.sampleRate, g.nsamples), func(t *testing.T) {
			samples := genSine(g.nsamples, g.nchannels, 10000)
			enc := qoa.Desc{NChannels: g.nchannels, SampleRate: g.sampleRate, NSamples: g.nsamples}
			data, err := qoa.Encode(samples, &enc)
			if err != nil {
				t.Fatal(err)
			}

			dec, got, err := qoa.Decode(data)
			if err != nil {
				t.Fatal(err)
			}
			if dec.NChannels != g.nchannels || dec.SampleRate != g.sampleRate || dec.NSamples != g.nsamples {
				t.Fatalf("descriptor mismatch; expected %d channels, %d Hz, %d samples, got %d channels, %d Hz, %d samples",
					g.nchannels, g.sampleRate, g.nsamples, dec.NChannels, dec.SampleRate, dec.NSamples)
			}
			if len(got) != len(samples) {
				t.Fatalf("sample count mismatch; expected %d, got %d", len(samples), len(got))
			}
			for i := range samples {
				diff := int(samples[i]) - int(got[i])
				if diff < 0 {
					diff = -diff
				}
				if diff >= 1<<14 {
					t.Fatalf("reconstruction error at sample %d out of bounds; expected < %d, got %d", i, 1<<14, diff)
				}
			}

			// The predictor states of encoder and decoder evolve in
			// lockstep; after the last frame they agree.
			for c := 0; c < g.nchannels; c++ {
				if enc.LMS[c] != dec.LMS[c] {
					t.Errorf("predictor state mismatch of channel %d; expected %+v, got %+v", c, enc.LMS[c], dec.LMS[c])
				}
			}
		})
	}
}

func TestEncodeDeterministic(t *testing.T) {
	samples := genSine(7777, 2, 12000)
	desc1 := qoa.Desc{NChannels: 2, SampleRate: 44100, NSamples: 7777}
	desc2 := desc1
	data1, err := qoa.Encode(samples, &desc1)
	if err != nil {
		t.Fatal(err)
	}
	data2, err := qoa.Encode(samples, &desc2)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data1, data2) {
		t.Error("encoded output mismatch between two encodings of the same input")
	}
}

func TestFrameSizeFields(t *testing.T) {
	const nsamples = 5121
	desc := qoa.Desc{NChannels: 1, SampleRate: 44100, NSamples: nsamples}
	data, err := qoa.Encode(genSine(nsamples, 1, 10000), &desc)
	if err != nil {
		t.Fatal(err)
	}

	wantSamples := []int{5120, 1}
	pos := 8
	for i := 0; pos < len(data); i++ {
		if i >= len(wantSamples) {
			t.Fatalf("frame count mismatch; expected %d frames, got more", len(wantSamples))
		}
		hdr := binary.BigEndian.Uint64(data[pos:])
		nchannels := int(hdr >> 56 & 0xff)
		sampleRate := int(hdr >> 32 & 0xffffff)
		fsamples := int(hdr >> 16 & 0xffff)
		fsize := int(hdr & 0xffff)
		if nchannels != 1 || sampleRate != 44100 {
			t.Errorf("frame %d: stream parameter drift; got %d channels, %d Hz", i, nchannels, sampleRate)
		}
		if fsamples != wantSamples[i] {
			t.Errorf("frame %d: sample count mismatch; expected %d, got %d", i, wantSamples[i], fsamples)
		}
		if pos+fsize > len(data) {
			t.Fatalf("frame %d: frame size %d exceeds remaining %d bytes", i, fsize, len(data)-pos)
		}
		pos += fsize
	}
	if pos != len(data) {
		t.Errorf("frame sizes do not sum to the file size; expected %d, got %d", len(data), pos)
	}
}

func TestDecodeMinFile(t *testing.T) {
	// A file header followed by a frame header too short to carry its
	// predictor state; the decoder reports the stream parameters and zero
	// decoded samples.
	data := make([]byte, 16)
	binary.BigEndian.PutUint64(data, qoa.Magic<<32|100)
	binary.BigEndian.PutUint64(data[8:], 2<<56|44100<<32|100<<16|16)

	desc, samples, err := qoa.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if desc.NChannels != 2 || desc.SampleRate != 44100 {
		t.Errorf("descriptor mismatch; expected 2 channels at 44100 Hz, got %d channels at %d Hz", desc.NChannels, desc.SampleRate)
	}
	if desc.NSamples != 0 || len(samples) != 0 {
		t.Errorf("expected no decoded samples, got %d (descriptor states %d)", len(samples), desc.NSamples)
	}
}

func TestDecodeInvalidHeader(t *testing.T) {
	golden := []struct {
		name string
		data []byte
		want error
	}{
		{name: "empty", data: nil, want: qoa.ErrShortBuffer},
		{name: "short", data: make([]byte, 15), want: qoa.ErrShortBuffer},
		{name: "zero magic", data: make([]byte, 16), want: qoa.ErrInvalidSignature},
	}
	for _, g := range golden {
		t.Run(g.name, func(t *testing.T) {
			_, _, err := qoa.Decode(g.data)
			if !errors.Is(err, g.want) {
				t.Errorf("error mismatch; expected %v, got %v", g.want, err)
			}
		})
	}
}

func TestMaxFrameSize(t *testing.T) {
	golden := []struct {
		nchannels int
		want      int
	}{
		{nchannels: 1, want: 8 + 16 + 8*256},
		{nchannels: 2, want: 8 + 32 + 8*256*2},
		{nchannels: 8, want: 8 + 128 + 8*256*8},
	}
	for _, g := range golden {
		desc := qoa.Desc{NChannels: g.nchannels}
		if got := desc.MaxFrameSize(); got != g.want {
			t.Errorf("maximum frame size mismatch for %d channels; expected %d, got %d", g.nchannels, g.want, got)
		}
	}
}

func TestRecordedError(t *testing.T) {
	const nsamples = 1000
	desc := qoa.Desc{NChannels: 1, SampleRate: 44100, NSamples: nsamples}
	samples := genSine(nsamples, 1, 10000)
	data, err := qoa.Encode(samples, &desc)
	if err != nil {
		t.Fatal(err)
	}
	_, got, err := qoa.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	var want float64
	for i := range samples {
		diff := float64(samples[i]) - float64(got[i])
		want += diff * diff
	}
	if desc.Error != want {
		t.Errorf("recorded squared error mismatch; expected %g, got %g", want, desc.Error)
	}
}
