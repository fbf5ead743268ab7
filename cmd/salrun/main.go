/* salrun loads a scene descriptor and runs one impulse through it,
printing each receiver channel's peak sample and the tick it occurs at. */
package main

import (
	"fmt"
	"os"

	sal "github.com/corvidaudio/sal/src"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: salrun <scene.yaml>\n")
}

func main() {
	if len(os.Args) != 2 {
		usage()
		os.Exit(1)
	}

	scene, err := sal.LoadSceneConfig(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "salrun: %s\n", err)
		os.Exit(1)
	}

	logger := sal.NewCharmLogger()

	sources := make([]*sal.Source, len(scene.Sources))
	for i, sc := range scene.Sources {
		sources[i] = sal.NewSource(sc.Position.Point())
	}

	receivers := make([]*sal.Receiver[float64], len(scene.Receivers))
	for i, rc := range scene.Receivers {
		prototype, err := sal.BuildDirectivity[float64](rc.Directivity)
		if err != nil {
			fmt.Fprintf(os.Stderr, "salrun: receiver %q: %s\n", rc.Name, err)
			os.Exit(1)
		}
		receivers[i] = sal.BuildReceiver[float64](rc, prototype, logger)
	}

	numOutputSamples := 4096
	if scene.Room != nil {
		numOutputSamples = scene.Room.RirLength
	}

	inputs := make([][]float64, len(sources))
	for i := range inputs {
		inputs[i] = make([]float64, numOutputSamples)
		if len(inputs[i]) > 0 {
			inputs[i][0] = 1 // unit impulse
		}
	}

	outputs := make([]sal.BufferMut[float64], len(receivers))
	for i, r := range receivers {
		outputs[i] = sal.NewBuffer[float64](2, numOutputSamples)
		_ = r
	}

	sim := sal.NewFreeFieldSim[float64](sources, receivers, scene.SamplingFrequency, scene.SoundSpeed, logger)
	sim.Run(inputs, numOutputSamples, outputs)

	for i, rc := range scene.Receivers {
		buf := outputs[i]
		for ch := 0; ch < buf.NumChannels(); ch++ {
			peak, peakAt := 0.0, 0
			for n := 0; n < buf.NumSamples(); n++ {
				v := buf.Get(ch, n)
				if v > peak || -v > peak {
					if v < 0 {
						peak = -v
					} else {
						peak = v
					}
					peakAt = n
				}
			}
			fmt.Printf("%s channel %d: peak %.6f at tick %d\n", rc.Name, ch, peak, peakAt)
		}
	}
}
