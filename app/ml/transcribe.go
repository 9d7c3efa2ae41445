package ml

import (
	"context"
	"strings"

	"google.golang.org/genai"
)

const transcribePrompt = `Transcribe all spoken words in this video. ` +
	`Return only the transcription text, without timestamps, speaker labels or commentary. ` +
	`If nothing is spoken, respond with exactly [no speech].`

const noSpeechMarker = "[no speech]"

// Transcribe runs speech-to-text over a video payload.
func (c *Client) Transcribe(ctx context.Context, video []byte) (string, error) {
	parts := []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: "video/mp4", Data: video}},
		{Text: transcribePrompt},
	}

	text, err := c.generate(ctx, parts, nil)
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if strings.EqualFold(text, noSpeechMarker) {
		return "", nil
	}

	return text, nil
}
