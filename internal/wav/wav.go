// Package wav frames raw linear PCM samples into canonical RIFF/WAVE
// containers and decodes them back.
//
// This is a pure framing operation: no resampling, no format conversion, no
// compression. The encoder exists because the speech synthesis API returns
// bare 16-bit mono PCM with no container, which nothing can play, seek, or
// measure until a self-describing header is attached.
package wav

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed size of the canonical PCM WAVE header.
const HeaderSize = 44

const (
	formatPCM      = 1 // uncompressed linear PCM
	channelsMono   = 1
	bitsPerSample  = 16
	bytesPerSample = bitsPerSample / 8
	fmtChunkSize   = 16
)

// Encode wraps raw 16-bit signed mono PCM samples in a 44-byte RIFF/WAVE
// header. The sample bytes are copied unmodified after the header; the input
// buffer is never mutated. sampleRate must be positive.
//
// An empty sample buffer yields a valid header-only file declaring zero data
// bytes.
func Encode(samples []byte, sampleRate int) []byte {
	blockAlign := channelsMono * bytesPerSample
	byteRate := sampleRate * blockAlign
	dataLen := len(samples)

	out := make([]byte, HeaderSize+dataLen)

	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(HeaderSize-8+dataLen)) // file size minus 8
	copy(out[8:12], "WAVE")

	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], fmtChunkSize)
	binary.LittleEndian.PutUint16(out[20:22], formatPCM)
	binary.LittleEndian.PutUint16(out[22:24], channelsMono)
	binary.LittleEndian.PutUint32(out[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:36], bitsPerSample)

	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(dataLen))

	copy(out[HeaderSize:], samples)
	return out
}

// File is a decoded PCM WAVE container.
type File struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	// Samples is the raw PCM payload, sliced from the container bytes.
	Samples []byte
}

// Duration returns the audio length in seconds.
func (f *File) Duration() float64 {
	byteRate := f.SampleRate * f.Channels * f.BitsPerSample / 8
	if byteRate <= 0 {
		return 0
	}
	return float64(len(f.Samples)) / float64(byteRate)
}

// Decode parses a canonical PCM WAVE container produced by Encode. It
// accepts only the fixed 44-byte header layout: uncompressed PCM with the
// fmt chunk directly followed by the data chunk.
func Decode(data []byte) (*File, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("wav: container too small: %d bytes", len(data))
	}

	if string(data[0:4]) != "RIFF" {
		return nil, fmt.Errorf("wav: missing RIFF tag")
	}
	if string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("wav: missing WAVE tag")
	}
	if string(data[12:16]) != "fmt " {
		return nil, fmt.Errorf("wav: missing fmt chunk")
	}
	if size := binary.LittleEndian.Uint32(data[16:20]); size != fmtChunkSize {
		return nil, fmt.Errorf("wav: unexpected fmt chunk size %d", size)
	}
	if format := binary.LittleEndian.Uint16(data[20:22]); format != formatPCM {
		return nil, fmt.Errorf("wav: unsupported encoding %d (want PCM)", format)
	}
	if string(data[36:40]) != "data" {
		return nil, fmt.Errorf("wav: missing data chunk")
	}

	dataLen := binary.LittleEndian.Uint32(data[40:44])
	if int(dataLen) != len(data)-HeaderSize {
		return nil, fmt.Errorf("wav: declared data length %d does not match payload %d", dataLen, len(data)-HeaderSize)
	}

	return &File{
		SampleRate:    int(binary.LittleEndian.Uint32(data[24:28])),
		Channels:      int(binary.LittleEndian.Uint16(data[22:24])),
		BitsPerSample: int(binary.LittleEndian.Uint16(data[34:36])),
		Samples:       data[HeaderSize:],
	}, nil
}

// Duration computes the playback length in seconds of a raw PCM payload at
// the given sample rate, assuming 16-bit mono samples.
func Duration(dataLen int, sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return float64(dataLen) / float64(sampleRate*channelsMono*bytesPerSample)
}
