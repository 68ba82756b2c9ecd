package services

import (
	"context"
	"fmt"
	"os"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"

	"github.com/podgen/podcast-generator-backend/models"
)

// The synthesize API caps input at 5000 bytes per request.
const googleTTSChunkBytes = 4500

// SynthesizeGoogle renders text with Google Cloud neural TTS, chunking long
// input and concatenating the MP3 segments.
func SynthesizeGoogle(ctx context.Context, text string, settings models.VoiceSettings) ([]byte, error) {
	if len(text) == 0 {
		return nil, fmt.Errorf("text is empty")
	}

	voice := settings.Voice
	if voice == "" || voice == "default" {
		voice = "en-US-Neural2-D"
	}
	rate := settings.Speed
	if rate <= 0 {
		rate = 1.0
	}

	var client *texttospeech.Client
	var err error
	if credPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credPath != "" {
		client, err = texttospeech.NewClient(ctx, option.WithCredentialsFile(credPath))
	} else {
		client, err = texttospeech.NewClient(ctx)
	}
	if err != nil {
		return nil, err
	}
	defer client.Close()

	chunks := splitTextToChunksByByte(text, googleTTSChunkBytes)
	var allAudio []byte

	for _, chunk := range chunks {
		req := &texttospeechpb.SynthesizeSpeechRequest{
			Input: &texttospeechpb.SynthesisInput{
				InputSource: &texttospeechpb.SynthesisInput_Text{Text: chunk},
			},
			Voice: &texttospeechpb.VoiceSelectionParams{
				LanguageCode: languageCodeFromVoice(voice),
				Name:         voice,
			},
			AudioConfig: &texttospeechpb.AudioConfig{
				AudioEncoding:   texttospeechpb.AudioEncoding_MP3,
				SpeakingRate:    rate,
				Pitch:           settings.Pitch,
				VolumeGainDb:    settings.Volume*16 - 16, // map 0..1 volume onto dB gain
				SampleRateHertz: 24000,
			},
		}

		resp, err := client.SynthesizeSpeech(ctx, req)
		if err != nil {
			return nil, err
		}
		allAudio = append(allAudio, resp.AudioContent...)
	}

	return allAudio, nil
}

// languageCodeFromVoice derives "en-US" from names like "en-US-Neural2-D".
func languageCodeFromVoice(voice string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) >= 2 && len(parts[0]) == 2 {
		return parts[0] + "-" + parts[1]
	}
	return "en-US"
}

// splitTextToChunksByByte cuts on sentence boundaries where possible and
// never splits a UTF-8 sequence.
func splitTextToChunksByByte(text string, maxBytes int) []string {
	var chunks []string
	remaining := text

	for len(remaining) > 0 {
		if len(remaining) <= maxBytes {
			chunks = append(chunks, remaining)
			break
		}

		cutPos := maxBytes
		for i := cutPos; i > 0; i-- {
			if remaining[i-1] == '.' || remaining[i-1] == '!' || remaining[i-1] == '?' || remaining[i-1] == '\n' {
				cutPos = i
				break
			}
		}

		for cutPos < len(remaining) && (remaining[cutPos]&0xC0) == 0x80 {
			cutPos++
		}

		chunks = append(chunks, remaining[:cutPos])
		remaining = remaining[cutPos:]
	}

	return chunks
}
