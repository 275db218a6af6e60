package vision

import (
	"context"
	"fmt"
	"os"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/vinylcat/sleevescan/internal/providers"
	"google.golang.org/api/option"
)

// Vision is a provider for Google Cloud Vision document text detection
type Vision struct{}

// New returns a new Vision provider
func New() *Vision {
	return &Vision{}
}

// Name reports the engine name
func (v *Vision) Name() string {
	return "vision"
}

// clientOptions resolves credentials from GOOGLE_CREDENTIALS (inline JSON) or
// GOOGLE_APPLICATION_CREDENTIALS (file path), falling back to application defaults.
func clientOptions() []option.ClientOption {
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(credJSON))}
	}
	if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		return []option.ClientOption{option.WithCredentialsFile(credFile)}
	}
	return nil
}

// ExtractText extracts text from the image using DOCUMENT_TEXT_DETECTION
func (v *Vision) ExtractText(ctx context.Context, image []byte, config providers.Config) (string, error) {
	client, err := vision.NewImageAnnotatorClient(ctx, clientOptions()...)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create vision client: %v", providers.ErrNotConfigured, err)
	}
	defer client.Close()

	feature := &visionpb.Feature{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}
	if config.Model != "" {
		feature.Model = config.Model
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image:    &visionpb.Image{Content: image},
				Features: []*visionpb.Feature{feature},
			},
		},
	}

	resp, err := client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("vision API call failed: %w", err)
	}

	if len(resp.Responses) == 0 {
		return "", fmt.Errorf("no response from Vision API")
	}

	imgResp := resp.Responses[0]
	if imgResp.Error != nil {
		return "", fmt.Errorf("vision API error: %s", imgResp.Error.Message)
	}
	if imgResp.FullTextAnnotation == nil {
		return "", nil
	}

	return imgResp.FullTextAnnotation.Text, nil
}
