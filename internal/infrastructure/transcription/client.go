// Package transcription sends participant recordings to AssemblyAI.
package transcription

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AssemblyAI/assemblyai-go-sdk"
)

// Result is the outcome of one transcription.
type Result struct {
	TranscriptID string
	Text         string
	Status       string
	Error        string
}

// Transcriber turns an audio file into text.
type Transcriber interface {
	TranscribeFile(ctx context.Context, path string) (*Result, error)
}

// AssemblyAIClient implements Transcriber against the AssemblyAI API.
type AssemblyAIClient struct {
	client       *assemblyai.Client
	languageCode string
}

// NewAssemblyAIClient creates a client for apiKey. An empty languageCode lets
// the service detect the language.
func NewAssemblyAIClient(apiKey, languageCode string) *AssemblyAIClient {
	return &AssemblyAIClient{
		client:       assemblyai.NewClient(apiKey),
		languageCode: languageCode,
	}
}

// TranscribeFile uploads path and waits for the transcript.
func (c *AssemblyAIClient) TranscribeFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	params := &assemblyai.TranscriptOptionalParams{}
	if c.languageCode != "" {
		params.LanguageCode = assemblyai.TranscriptLanguageCode(c.languageCode)
	} else {
		params.LanguageDetection = assemblyai.Bool(true)
	}

	transcript, err := c.client.Transcripts.TranscribeFromReader(ctx, f, params)
	if err != nil {
		return nil, fmt.Errorf("assemblyai transcription failed: %w", err)
	}

	res := &Result{
		TranscriptID: assemblyai.ToString(transcript.ID),
		Text:         assemblyai.ToString(transcript.Text),
		Status:       string(transcript.Status),
		Error:        assemblyai.ToString(transcript.Error),
	}
	if transcript.Status == assemblyai.TranscriptStatusError {
		return res, fmt.Errorf("assemblyai transcript %s failed: %s", res.TranscriptID, res.Error)
	}
	return res, nil
}
