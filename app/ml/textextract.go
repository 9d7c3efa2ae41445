package ml

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"google.golang.org/genai"
)

const detectTextPrompt = `Detect every piece of text visible in this image: captions, ` +
	`overlays, signs, watermarks, anything readable. Report each distinct string with a ` +
	`confidence between 0.0 and 1.0.`

// Detection is one string found in an image with the model's confidence.
type Detection struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

type detectionResponse struct {
	Detections []Detection `json:"detections"`
}

func detectTextSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"detections": {
				Type:        genai.TypeArray,
				Description: "All distinct text strings visible in the image",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"text": {
							Type:        genai.TypeString,
							Description: "The detected text string",
						},
						"confidence": {
							Type:        genai.TypeNumber,
							Description: "Detection confidence from 0.0 to 1.0",
						},
					},
					Required: []string{"text", "confidence"},
				},
			},
		},
		Required: []string{"detections"},
	}
}

// DetectText runs text detection over a single image.
func (c *Client) DetectText(ctx context.Context, image []byte) ([]Detection, error) {
	parts := []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: image}},
		{Text: detectTextPrompt},
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   detectTextSchema(),
	}

	raw, err := c.generate(ctx, parts, config)
	if err != nil {
		return nil, err
	}

	var resp detectionResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse detection response: %w", err)
	}

	return resp.Detections, nil
}

// ExtractText runs text detection over every image of a zipped collection,
// in name order, and concatenates all strings at or above the confidence
// threshold.
func (c *Client) ExtractText(ctx context.Context, archive []byte, threshold float64) (string, error) {
	images, err := UnzipImages(archive)
	if err != nil {
		return "", err
	}

	var fragments []string
	for _, image := range images {
		detections, err := c.DetectText(ctx, image)
		if err != nil {
			return "", err
		}
		fragments = append(fragments, FilterDetections(detections, threshold)...)
	}

	return strings.Join(fragments, " "), nil
}

// FilterDetections keeps detected strings at or above the threshold,
// preserving order.
func FilterDetections(detections []Detection, threshold float64) []string {
	var kept []string
	for _, d := range detections {
		if d.Confidence >= threshold && strings.TrimSpace(d.Text) != "" {
			kept = append(kept, strings.TrimSpace(d.Text))
		}
	}
	return kept
}

// UnzipImages unpacks a collection archive into its images, sorted by entry
// name so processing order matches display order.
func UnzipImages(archive []byte) ([][]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("failed to open collection archive: %w", err)
	}

	files := make([]*zip.File, len(reader.File))
	copy(files, reader.File)
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	var images [][]byte
	for _, file := range files {
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open archive entry %s: %w", file.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read archive entry %s: %w", file.Name, err)
		}
		images = append(images, data)
	}

	return images, nil
}
