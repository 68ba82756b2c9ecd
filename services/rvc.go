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

// Training a retrieval-based voice conversion model takes a while.
var rvcHTTPClient = &http.Client{Timeout: 30 * time.Minute}

func rvcServiceURL() string {
	if url := os.Getenv("RVC_SERVICE_URL"); url != "" {
		return url
	}
	return "http://localhost:5000"
}

// RVCConfigured reports whether a conversion service URL is set. The default
// localhost URL only counts when explicitly configured.
func RVCConfigured() bool {
	return os.Getenv("RVC_SERVICE_URL") != ""
}

// TrainVoiceModel uploads a voice sample to the RVC service and returns the
// trained model identifier. The call blocks until training finishes.
func TrainVoiceModel(ctx context.Context, voiceID, filename string, sample []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("voice_id", voiceID); err != nil {
		return "", err
	}
	part, err := writer.CreateFormFile("audio", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(sample); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rvcServiceURL()+"/train", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := rvcHTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("voice training service returned %d: %s", resp.StatusCode, string(respBody))
	}

	var payload struct {
		ModelID string `json:"model_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.ModelID == "" {
		payload.ModelID = voiceID
	}
	return payload.ModelID, nil
}
