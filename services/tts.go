package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/google/uuid"

	"github.com/podgen/podcast-generator-backend/models"
	"github.com/podgen/podcast-generator-backend/storage"
)

// AudioResult is what a successful synthesis returns: where the audio lives,
// how big it is, and how long it plays. Provider records which synthesizer
// actually produced the bytes, which may be the placeholder after a fallback.
type AudioResult struct {
	Location storage.Location
	Size     int64
	Duration int
	Provider string
}

// EstimateDuration is the baseline estimate for all providers: an average
// speaking rate of 2.5 words per second, scaled by the speed multiplier.
func EstimateDuration(wordCount int, speed float64) int {
	if speed <= 0 {
		speed = 1.0
	}
	return int(math.Ceil(float64(wordCount) / (2.5 * speed)))
}

// strictTTSErrors disables the silent-placeholder fallback so a cloud
// provider failure fails the request instead of masking it.
func strictTTSErrors() bool {
	return os.Getenv("TTS_STRICT_ERRORS") == "true"
}

// GenerateAudio turns text into a stored audio artifact under the selected
// provider. Browser synthesis never reaches this function. Unknown providers
// and (unless strict) failed cloud providers degrade to placeholder silence.
func GenerateAudio(ctx context.Context, text, provider string, settings models.VoiceSettings, userID string) (*AudioResult, error) {
	wordCount := CountWords(text)
	estimate := EstimateDuration(wordCount, settings.Speed)
	filename := uuid.New().String() + ".mp3"

	var (
		audio []byte
		err   error
		used  = provider
	)

	switch {
	case provider == models.ProviderAzure && AzureSpeechConfigured():
		audio, err = SynthesizeAzure(ctx, text, settings)
	case provider == models.ProviderGoogle || os.Getenv("USE_GOOGLE_TTS") == "true":
		used = models.ProviderGoogle
		audio, err = SynthesizeGoogle(ctx, text, settings)
	default:
		return generateMockAudio(ctx, filename, userID, estimate)
	}

	if err != nil {
		if strictTTSErrors() {
			return nil, fmt.Errorf("%s synthesis failed: %w", used, err)
		}
		log.Printf("%s synthesis failed, falling back to placeholder audio: %v", used, err)
		return generateMockAudio(ctx, filename, userID, estimate)
	}

	return storeAudio(ctx, audio, filename, userID, used)
}

// storeAudio persists synthesized bytes on the default backend and measures
// the real duration from the MP3 frames.
func storeAudio(ctx context.Context, audio []byte, filename, userID, provider string) (*AudioResult, error) {
	duration := 0
	if dur, err := MP3Duration(audio); err == nil && dur > 0 {
		duration = int(math.Ceil(dur))
	} else {
		// MP3 at 24kHz/128kbps is roughly 16KB per second.
		duration = int(math.Ceil(float64(len(audio)) / 16000))
	}

	store, err := storage.Default()
	if err != nil {
		return nil, err
	}
	loc, err := store.Upload(ctx, audio, audioKey(userID, filename), storage.UploadOptions{
		ContentType: "audio/mpeg",
		Filename:    filename,
		OwnerID:     userID,
	})
	if err != nil {
		return nil, err
	}

	return &AudioResult{
		Location: *loc,
		Size:     int64(len(audio)),
		Duration: duration,
		Provider: provider,
	}, nil
}

// generateMockAudio writes placeholder silence, floored at 20 seconds so the
// player has something visible to scrub.
func generateMockAudio(ctx context.Context, filename, userID string, estimate int) (*AudioResult, error) {
	duration := estimate
	if duration < 20 {
		duration = 20
	}
	audio := GenerateSilentMP3(duration)

	store, err := storage.Default()
	if err != nil {
		return nil, err
	}
	loc, err := store.Upload(ctx, audio, audioKey(userID, filename), storage.UploadOptions{
		ContentType: "audio/mpeg",
		Filename:    filename,
		OwnerID:     userID,
	})
	if err != nil {
		return nil, err
	}

	return &AudioResult{
		Location: *loc,
		Size:     int64(len(audio)),
		Duration: duration,
		Provider: models.ProviderMock,
	}, nil
}

func audioKey(userID, filename string) string {
	if userID == "" {
		userID = "guest"
	}
	return fmt.Sprintf("audio/%s/%s", userID, filename)
}
