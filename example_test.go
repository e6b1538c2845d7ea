package qoa_test

import (
	"fmt"
	"log"

	"github.com/mewkiz/qoa"
)

func ExampleEncode() {
	// Encode one channel of 40 samples; two slices in a single frame.
	samples := make([]int16, 40)
	for i := range samples {
		samples[i] = int16(i * 100)
	}
	desc := qoa.Desc{NChannels: 1, SampleRate: 8000, NSamples: 40}
	data, err := qoa.Encode(samples, &desc)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("encoded bytes:", len(data))

	dec, decoded, err := qoa.Decode(data)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("channels:", dec.NChannels)
	fmt.Println("sample rate:", dec.SampleRate)
	fmt.Println("decoded samples:", len(decoded))
	// Output:
	// encoded bytes: 48
	// channels: 1
	// sample rate: 8000
	// decoded samples: 40
}
