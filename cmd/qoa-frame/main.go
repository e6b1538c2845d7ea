// qoa-frame is a tool which prints the frame layout of QOA files.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/icza/bitio"
	"github.com/mewkiz/qoa"
	"github.com/pkg/errors"
)

func main() {
	// Parse command line arguments.
	var (
		// print the scalefactor of each slice.
		slices bool
	)
	flag.BoolVar(&slices, "s", false, "print per-slice scalefactors")
	flag.Parse()
	for _, qoaPath := range flag.Args() {
		if err := qoaFrame(qoaPath, slices); err != nil {
			log.Fatalf("%+v", err)
		}
	}
}

// qoaFrame prints the header fields and frame layout of the provided QOA
// file.
func qoaFrame(qoaPath string, slices bool) error {
	data, err := os.ReadFile(qoaPath)
	if err != nil {
		return errors.WithStack(err)
	}
	var desc qoa.Desc
	pos, err := desc.DecodeHeader(data)
	if err != nil {
		return err
	}
	fmt.Printf("path: %q\n", qoaPath)
	fmt.Println("  channels:", desc.NChannels)
	fmt.Println("  sample rate:", desc.SampleRate)
	fmt.Println("  samples per channel:", desc.NSamples)

	for frameNum := 0; pos < len(data); frameNum++ {
		n, err := dumpFrame(data[pos:], frameNum, slices)
		if err != nil {
			return err
		}
		pos += n
	}
	return nil
}

// dumpFrame prints the header fields of the frame at the start of data and
// returns the size of the frame in bytes.
func dumpFrame(data []byte, frameNum int, slices bool) (int, error) {
	br := bitio.NewReader(bytes.NewReader(data))
	nchannels := int(br.TryReadBits(8))
	sampleRate := int(br.TryReadBits(24))
	fsamples := int(br.TryReadBits(16))
	fsize := int(br.TryReadBits(16))
	if br.TryError != nil {
		return 0, errors.WithStack(br.TryError)
	}
	if fsize < 8+16*nchannels || fsize > len(data) {
		return 0, errors.Errorf("qoa-frame: invalid frame size %d of frame %d", fsize, frameNum)
	}
	fmt.Printf("frame %d\n", frameNum)
	fmt.Println("  channels:", nchannels)
	fmt.Println("  sample rate:", sampleRate)
	fmt.Println("  samples per channel:", fsamples)
	fmt.Println("  frame size:", fsize)

	// Predictor state per channel.
	for c := 0; c < nchannels; c++ {
		var history, weights [4]int16
		for i := range history {
			history[i] = int16(br.TryReadBits(16))
		}
		for i := range weights {
			weights[i] = int16(br.TryReadBits(16))
		}
		fmt.Printf("  channel %d: history %v, weights %v\n", c, history, weights)
	}

	// Slices per channel, interleaved at slice granularity.
	nslices := (fsize - 8 - 16*nchannels) / 8
	for i := 0; i < nslices; i++ {
		scalefactor := br.TryReadBits(4)
		br.TryReadBits(60)
		if slices {
			fmt.Printf("  slice %d (channel %d): scalefactor %d\n", i/nchannels, i%nchannels, scalefactor)
		}
	}
	if br.TryError != nil {
		return 0, errors.WithStack(br.TryError)
	}
	return fsize, nil
}
