package services

import (
	"bytes"
	"fmt"
	"math"
)

// Layer III, 128 kbps, 44.1 kHz plays at ~38.28 frames per second.
const framesPerSecond = 38.28

// GenerateSilentMP3 builds a minimal valid MP3 of silent frames for the given
// duration. It backs the placeholder synthesizer variant; no real synthesis
// happens here.
func GenerateSilentMP3(durationSec int) []byte {
	var buf bytes.Buffer

	// ID3v2.4 header, zero flags, zero size.
	buf.Write([]byte{0x49, 0x44, 0x33, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00})
	buf.Write(id3Frame("TIT2", fmt.Sprintf("Podcast Audio - %ds", durationSec)))

	// One silent frame: sync + header for Layer III 128kbps 44.1kHz, zero data.
	frame := make([]byte, 421)
	copy(frame, []byte{0xFF, 0xFB, 0x90, 0x00})

	framesNeeded := int(math.Ceil(float64(durationSec) * framesPerSecond))
	for i := 0; i < framesNeeded; i++ {
		buf.Write(frame)
	}

	return buf.Bytes()
}

// id3Frame encodes one ID3v2 text frame with a synchsafe size.
func id3Frame(frameID, text string) []byte {
	textBytes := []byte(text)
	frameSize := len(textBytes) + 1 // +1 for the encoding byte

	frame := make([]byte, 0, 10+frameSize)
	frame = append(frame, frameID...)
	frame = append(frame,
		byte((frameSize>>21)&0x7F),
		byte((frameSize>>14)&0x7F),
		byte((frameSize>>7)&0x7F),
		byte(frameSize&0x7F),
	)
	frame = append(frame, 0x00, 0x00) // flags
	frame = append(frame, 0x03)       // UTF-8
	frame = append(frame, textBytes...)
	return frame
}
