// wav2qoa is a tool which converts WAV files to QOA files.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mewkiz/pkg/osutil"
	"github.com/mewkiz/pkg/pathutil"
	"github.com/mewkiz/qoa"
	"github.com/pkg/errors"
)

func main() {
	// Parse command line arguments.
	var (
		// force overwrite QOA file if already present.
		force bool
	)
	flag.BoolVar(&force, "f", false, "force overwrite")
	flag.Parse()
	for _, wavPath := range flag.Args() {
		if err := wav2qoa(wavPath, force); err != nil {
			log.Fatalf("%+v", err)
		}
	}
}

// wav2qoa converts the provided WAV file to a QOA file.
func wav2qoa(wavPath string, force bool) error {
	// Create WAV decoder.
	r, err := os.Open(wavPath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer r.Close()
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return errors.Errorf("invalid WAV file %q", wavPath)
	}
	if dec.BitDepth != 16 {
		return errors.Errorf("support for WAV files with bit depth %d not yet implemented", dec.BitDepth)
	}

	// Create QOA encoder. The sample count is left at zero; the encoder
	// rewrites the file header on Close.
	qoaPath := pathutil.TrimExt(wavPath) + ".qoa"
	if !force && osutil.Exists(qoaPath) {
		return errors.Errorf("QOA file %q already present; use -f flag to force overwrite", qoaPath)
	}
	w, err := os.Create(qoaPath)
	if err != nil {
		return errors.WithStack(err)
	}
	desc := &qoa.Desc{
		NChannels:  int(dec.NumChans),
		SampleRate: int(dec.SampleRate),
	}
	enc, err := qoa.NewEncoder(w, desc)
	if err != nil {
		return errors.WithStack(err)
	}

	// Decode WAV audio samples and encode them as QOA.
	if err := dec.FwdToPCM(); err != nil {
		return errors.WithStack(err)
	}
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: desc.NChannels,
			SampleRate:  desc.SampleRate,
		},
		Data:           make([]int, qoa.FrameLen*desc.NChannels),
		SourceBitDepth: 16,
	}
	for !dec.EOF() {
		n, err := dec.PCMBuffer(buf)
		if err != nil {
			return errors.WithStack(err)
		}
		if n == 0 {
			break
		}
		samples := make([]int16, n)
		for i := 0; i < n; i++ {
			samples[i] = int16(buf.Data[i])
		}
		if err := enc.Write(samples); err != nil {
			return errors.WithStack(err)
		}
	}

	// Flush the final short frame, rewrite the file header with the total
	// sample count and close the QOA file.
	return errors.WithStack(enc.Close())
}
