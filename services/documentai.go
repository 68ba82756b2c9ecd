package services

import (
	"context"
	"fmt"
	"os"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
)

// DocumentAIConfigured reports whether the optional OCR provider is set up.
func DocumentAIConfigured() bool {
	return os.Getenv("DOCAI_PROJECT_ID") != "" && os.Getenv("DOCAI_PROCESSOR_ID") != ""
}

// extractWithDocumentAI runs one synchronous process request against the
// configured processor and returns the document's full text.
func extractWithDocumentAI(ctx context.Context, data []byte, mimeType string) (string, error) {
	projectID := os.Getenv("DOCAI_PROJECT_ID")
	processorID := os.Getenv("DOCAI_PROCESSOR_ID")
	location := os.Getenv("DOCAI_LOCATION")
	if location == "" {
		location = "us"
	}

	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", location)
	client, err := documentai.NewDocumentProcessorClient(ctx, option.WithEndpoint(endpoint))
	if err != nil {
		return "", fmt.Errorf("cannot create Document AI client: %w", err)
	}
	defer client.Close()

	req := &documentaipb.ProcessRequest{
		Name: fmt.Sprintf("projects/%s/locations/%s/processors/%s", projectID, location, processorID),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: mimeType,
			},
		},
	}

	resp, err := client.ProcessDocument(ctx, req)
	if err != nil {
		return "", fmt.Errorf("Document AI process failed: %w", err)
	}

	return resp.GetDocument().GetText(), nil
}
