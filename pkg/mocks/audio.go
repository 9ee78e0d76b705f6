package mocks

import "github.com/user/carousel/pkg/ports"

// AudioDecoder is a mock implementation of ports.AudioDecoder.
type AudioDecoder struct {
	DecodeFunc func(data []byte) (ports.AudioBuffer, error)
	Buffer     ports.AudioBuffer
}

func (m *AudioDecoder) Decode(data []byte) (ports.AudioBuffer, error) {
	if m.DecodeFunc != nil {
		return m.DecodeFunc(data)
	}
	return m.Buffer, nil
}

var _ ports.AudioDecoder = (*AudioDecoder)(nil)
