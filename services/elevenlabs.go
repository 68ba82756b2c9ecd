package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"
)

const elevenLabsBaseURL = "https://api.elevenlabs.io/v1"

var elevenLabsHTTPClient = &http.Client{Timeout: 120 * time.Second}

// ElevenLabsVoice is one entry from the provider's voice catalog.
type ElevenLabsVoice struct {
	VoiceID  string            `json:"voice_id"`
	Name     string            `json:"name"`
	Category string            `json:"category"`
	Labels   map[string]string `json:"labels"`
}

// CloneSample is one uploaded audio sample used to clone a voice.
type CloneSample struct {
	Filename string
	Data     []byte
}

// ElevenLabsConfigured reports whether an API key is set.
func ElevenLabsConfigured() bool {
	return os.Getenv("ELEVENLABS_API_KEY") != ""
}

// GetElevenLabsVoices lists the provider catalog. Without an API key it
// returns an empty catalog rather than an error, so the voices endpoint can
// still serve locally uploaded voices.
func GetElevenLabsVoices(ctx context.Context) ([]ElevenLabsVoice, error) {
	key := os.Getenv("ELEVENLABS_API_KEY")
	if key == "" {
		return []ElevenLabsVoice{}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, elevenLabsBaseURL+"/voices", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", key)

	resp, err := elevenLabsHTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("elevenlabs returned %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Voices []ElevenLabsVoice `json:"voices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return payload.Voices, nil
}

// CloneVoice submits audio samples to ElevenLabs and returns the new voice ID.
func CloneVoice(ctx context.Context, name, description string, samples []CloneSample) (string, error) {
	key := os.Getenv("ELEVENLABS_API_KEY")
	if key == "" {
		return "", fmt.Errorf("elevenlabs is not configured")
	}
	if len(samples) == 0 {
		return "", fmt.Errorf("at least one audio sample is required")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("name", name); err != nil {
		return "", err
	}
	if description != "" {
		if err := writer.WriteField("description", description); err != nil {
			return "", err
		}
	}
	for _, sample := range samples {
		part, err := writer.CreateFormFile("files", sample.Filename)
		if err != nil {
			return "", err
		}
		if _, err := part.Write(sample.Data); err != nil {
			return "", err
		}
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, elevenLabsBaseURL+"/voices/add", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("xi-api-key", key)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := elevenLabsHTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("elevenlabs returned %d: %s", resp.StatusCode, string(respBody))
	}

	var payload struct {
		VoiceID string `json:"voice_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	return payload.VoiceID, nil
}
