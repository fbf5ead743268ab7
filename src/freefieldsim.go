package sal

// FreeFieldSim drives an N-source x M-receiver grid of PropagationLines,
// batching each pair's per-sample output into a temp buffer and
// spatialising it with one Receiver.ReceiveAdd call per pair per block
// rather than per sample.
type FreeFieldSim[T Sample] struct {
	sources           []*Source
	receivers         []*Receiver[T]
	lines             [][]*PropagationLine[T] // [source][receiver]
	samplingFrequency float64
	soundSpeed        float64
	temp              [][][]T // [source][receiver][sample], reused across Run calls
}

// NewFreeFieldSim constructs the source x receiver line grid, one
// PropagationLine per pair, each initialised to the pair's current
// straight-line distance.
func NewFreeFieldSim[T Sample](sources []*Source, receivers []*Receiver[T], samplingFrequency, soundSpeed float64, logger Logger) *FreeFieldSim[T] {
	sim := &FreeFieldSim[T]{
		sources:           sources,
		receivers:         receivers,
		samplingFrequency: samplingFrequency,
		soundSpeed:        soundSpeed,
		lines:             make([][]*PropagationLine[T], len(sources)),
		temp:              make([][][]T, len(sources)),
	}
	for s, src := range sources {
		sim.lines[s] = make([]*PropagationLine[T], len(receivers))
		sim.temp[s] = make([][]T, len(receivers))
		for r, rcv := range receivers {
			distance := Distance(src.Position(), rcv.Position())
			sim.lines[s][r] = NewPropagationLine[T](PropagationLineConfig{
				Distance:          distance,
				SamplingFrequency: samplingFrequency,
				SoundSpeed:        soundSpeed,
			}, logger)
		}
	}
	return sim
}

// Line returns the propagation line driving the (source, receiver)
// pair, letting a caller retarget distance/attenuation directly.
func (sim *FreeFieldSim[T]) Line(source, receiver int) *PropagationLine[T] {
	return sim.lines[source][receiver]
}

func (sim *FreeFieldSim[T]) ensureTemp(numOutputSamples int) {
	for s := range sim.temp {
		for r := range sim.temp[s] {
			if cap(sim.temp[s][r]) < numOutputSamples {
				sim.temp[s][r] = make([]T, numOutputSamples)
			} else {
				sim.temp[s][r] = sim.temp[s][r][:numOutputSamples]
			}
		}
	}
}

// Run ticks numOutputSamples samples of inputs (one per source) through
// every propagation line, filling each pair's temp buffer one sample at
// a time, then spatialises each pair's full temp buffer into
// outputs[receiver] in source iteration order, matching the order
// sources were passed in.
func (sim *FreeFieldSim[T]) Run(inputs [][]T, numOutputSamples int, outputs []BufferMut[T]) {
	sim.ensureTemp(numOutputSamples)

	for i := 0; i < numOutputSamples; i++ {
		for s := range sim.sources {
			var sample T
			if i < len(inputs[s]) {
				sample = inputs[s][i]
			}
			for r := range sim.receivers {
				line := sim.lines[s][r]
				line.Write(sample)
				sim.temp[s][r][i] = line.Read()
				line.Tick(1)
			}
		}
	}

	for s, src := range sim.sources {
		for r, rcv := range sim.receivers {
			rcv.ReceiveAdd(sim.temp[s][r], src.Position(), s, outputs[r])
		}
	}
}
