package ncw

import "encoding/binary"

// WriteWAV packs interleaved samples into a standard PCM WAV container at
// the header's channel count, sample rate, and bit depth. Generalizes the
// teacher's mono/16-bit/22050Hz wavHeader to arbitrary NCW channel counts
// and bit depths (16/24/32).
func (r *Reader) WriteWAV(samples []int32) []byte {
	channels := r.Header.Channels
	bitsPerSample := r.Header.BitsPerSample
	sampleRate := r.Header.SampleRate
	bytesPerSample := int(bitsPerSample) / 8

	dataLen := len(samples) * bytesPerSample
	blockAlign := channels * bitsPerSample / 8
	byteRate := sampleRate * uint32(blockAlign)
	chunkSize := uint32(36 + dataLen)

	out := make([]byte, 44+dataLen)
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], chunkSize)
	copy(out[8:16], "WAVEfmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(out[20:22], 1)  // AudioFormat == PCM
	binary.LittleEndian.PutUint16(out[22:24], channels)
	binary.LittleEndian.PutUint32(out[24:28], sampleRate)
	binary.LittleEndian.PutUint32(out[28:32], byteRate)
	binary.LittleEndian.PutUint16(out[32:34], blockAlign)
	binary.LittleEndian.PutUint16(out[34:36], bitsPerSample)
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(dataLen))

	pos := 44
	for _, s := range samples {
		v := uint32(s)
		for b := 0; b < bytesPerSample; b++ {
			out[pos] = byte(v >> (8 * b))
			pos++
		}
	}

	return out
}
