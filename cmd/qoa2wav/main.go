// qoa2wav is a tool which converts QOA files to WAV files.
package main

import (
	"flag"
	"io"
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
		// force overwrite WAV file if already present.
		force bool
	)
	flag.BoolVar(&force, "f", false, "force overwrite")
	flag.Parse()
	for _, qoaPath := range flag.Args() {
		if err := qoa2wav(qoaPath, force); err != nil {
			log.Fatalf("%+v", err)
		}
	}
}

// qoa2wav converts the provided QOA file to a WAV file.
func qoa2wav(qoaPath string, force bool) error {
	// Open QOA stream.
	stream, err := qoa.Open(qoaPath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer stream.Close()

	// Create WAV encoder.
	wavPath := pathutil.TrimExt(qoaPath) + ".wav"
	if !force && osutil.Exists(wavPath) {
		return errors.Errorf("WAV file %q already present; use -f flag to force overwrite", wavPath)
	}
	w, err := os.Create(wavPath)
	if err != nil {
		return errors.WithStack(err)
	}
	enc := wav.NewEncoder(w, stream.SampleRate, 16, stream.NChannels, 1)

	// Decode QOA audio samples and encode them as WAV.
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: stream.NChannels,
			SampleRate:  stream.SampleRate,
		},
		SourceBitDepth: 16,
	}
	for {
		samples, err := stream.ParseNext()
		if err != nil {
			if err == io.EOF {
				break
			}
			return errors.WithStack(err)
		}
		data := make([]int, len(samples))
		for i, sample := range samples {
			data[i] = int(sample)
		}
		buf.Data = data
		if err := enc.Write(buf); err != nil {
			return errors.WithStack(err)
		}
	}

	// Flush pending writes of the WAV encoder and close the WAV file.
	if err := enc.Close(); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(w.Close())
}
