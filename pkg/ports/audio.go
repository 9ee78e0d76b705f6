package ports

// AudioBuffer holds decoded PCM audio as per-channel float samples in [-1, 1].
type AudioBuffer struct {
	SampleRate int
	Channels   [][]float32
}

// Length returns the number of samples per channel.
func (b AudioBuffer) Length() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Duration returns the buffer length in seconds.
func (b AudioBuffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Length()) / float64(b.SampleRate)
}

// AudioDecoder turns an encoded audio stream into PCM samples.
type AudioDecoder interface {
	Decode(data []byte) (AudioBuffer, error)
}
