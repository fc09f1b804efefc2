package stt

import (
	"bytes"
	"encoding/binary"
)

// encodeWAV serializes float32 samples as a mono 16-bit PCM WAV file.
func encodeWAV(samples []float32, sampleRate int) []byte {
	dataSize := len(samples) * 2
	buf := bytes.NewBuffer(make([]byte, 0, 44+dataSize))

	le := binary.LittleEndian

	buf.WriteString("RIFF")
	binary.Write(buf, le, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, le, uint32(16))           // chunk size
	binary.Write(buf, le, uint16(1))            // PCM
	binary.Write(buf, le, uint16(1))            // mono
	binary.Write(buf, le, uint32(sampleRate))   // sample rate
	binary.Write(buf, le, uint32(sampleRate*2)) // byte rate
	binary.Write(buf, le, uint16(2))            // block align
	binary.Write(buf, le, uint16(16))           // bits per sample

	buf.WriteString("data")
	binary.Write(buf, le, uint32(dataSize))
	for _, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		binary.Write(buf, le, int16(s*32767))
	}

	return buf.Bytes()
}
