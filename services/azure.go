package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/podgen/podcast-generator-backend/models"
)

var azureHTTPClient = &http.Client{Timeout: 60 * time.Second}

// AzureSpeechConfigured reports whether the Azure Speech credentials are set.
func AzureSpeechConfigured() bool {
	return os.Getenv("AZURE_SPEECH_KEY") != "" && os.Getenv("AZURE_SPEECH_REGION") != ""
}

// SynthesizeAzure renders text with the Azure Speech REST endpoint using SSML.
func SynthesizeAzure(ctx context.Context, text string, settings models.VoiceSettings) ([]byte, error) {
	key := os.Getenv("AZURE_SPEECH_KEY")
	region := os.Getenv("AZURE_SPEECH_REGION")
	if key == "" || region == "" {
		return nil, fmt.Errorf("azure speech is not configured")
	}

	voice := settings.Voice
	if voice == "" || voice == "default" {
		voice = "en-US-JennyNeural"
	}
	rate := settings.Speed
	if rate <= 0 {
		rate = 1.0
	}

	// Prosody rate/pitch are expressed as percentage offsets from normal.
	ssml := fmt.Sprintf(
		`<speak version="1.0" xmlns="http://www.w3.org/2001/10/synthesis" xml:lang="en-US">`+
			`<voice name="%s"><prosody rate="%+.0f%%" pitch="%+.0f%%">%s</prosody></voice></speak>`,
		voice, (rate-1)*100, settings.Pitch*10, xmlEscape(text),
	)

	url := fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", region)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBufferString(ssml))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", key)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", "audio-24khz-96kbitrate-mono-mp3")
	req.Header.Set("User-Agent", "podcast-generator-backend")

	resp, err := azureHTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("azure speech returned %d: %s", resp.StatusCode, string(body))
	}
	return io.ReadAll(resp.Body)
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&apos;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
