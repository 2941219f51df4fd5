package loudness

// ChannelMeter accumulates the K-weighted mean-square power of one channel
// into consecutive 100 ms windows.
type ChannelMeter struct {
	shelf    biquad
	highpass biquad

	samplesPerWindow int
	count            int
	sum              float64

	windows Windows
}

// NewChannelMeter returns a meter for a channel sampled at sampleRate Hz.
func NewChannelMeter(sampleRate int) *ChannelMeter {
	shelf, highpass := kWeighting(float64(sampleRate))
	spw := sampleRate / 10
	if spw < 1 {
		spw = 1
	}
	return &ChannelMeter{
		shelf:            shelf,
		highpass:         highpass,
		samplesPerWindow: spw,
	}
}

// Push feeds samples in the range [-1, 1].
func (m *ChannelMeter) Push(samples []float64) {
	for _, x := range samples {
		m.push(x)
	}
}

// PushInt feeds integer samples, multiplying each by scale first.
func (m *ChannelMeter) PushInt(samples []int32, scale float64) {
	for _, s := range samples {
		m.push(float64(s) * scale)
	}
}

func (m *ChannelMeter) push(x float64) {
	y := m.highpass.process(m.shelf.process(x))
	m.sum += y * y
	m.count++
	if m.count == m.samplesPerWindow {
		m.windows = append(m.windows, Power(m.sum/float64(m.samplesPerWindow)))
		m.sum = 0
		m.count = 0
	}
}

// Windows returns the completed windows. A trailing partial window is not
// included.
func (m *ChannelMeter) Windows() Windows {
	return m.windows
}
