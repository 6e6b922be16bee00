package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tonecanvas/tonecanvas-go/internal/domain/entities/session"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/performance"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/persistence/fsstore"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/pitch"
)

// PitchService renders pitch artifacts for the current stimulus and caches
// them in the temp directory.
type PitchService struct {
	navigation  *NavigationService
	tempDir     string
	params      pitch.Params
	mu          sync.Mutex
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewPitchService creates a new pitch service
func NewPitchService(navigation *NavigationService, tempDir string, params pitch.Params, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *PitchService {
	return &PitchService{
		navigation:  navigation,
		tempDir:     tempDir,
		params:      params,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// JSONPath returns the cached pitch JSON for the session's current stimulus.
func (s *PitchService) JSONPath(sess *session.Session) (string, error) {
	marker := s.perfTracker.StartOperation("pitch_json", sess.ID)
	defer marker.Complete()

	stim, err := s.navigation.Current(sess)
	if err != nil {
		marker.SetError(err)
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path, _, err := s.ensureJSON(stim)
	if err != nil {
		marker.SetError(err)
		return "", err
	}
	return path, nil
}

// AudioPath returns the cached sine resynthesis for the current stimulus.
func (s *PitchService) AudioPath(sess *session.Session) (string, error) {
	marker := s.perfTracker.StartOperation("pitch_audio", sess.ID)
	defer marker.Complete()

	stim, err := s.navigation.Current(sess)
	if err != nil {
		marker.SetError(err)
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	wavPath := s.artifactPath(stim.FileName, "_pitch.wav")
	if !pitch.StimulusNewer(stim.Path, wavPath) {
		return wavPath, nil
	}

	jsonPath, analysis, err := s.ensureJSON(stim)
	if err != nil {
		marker.SetError(err)
		return "", err
	}
	if analysis == nil {
		if analysis, err = loadAnalysis(jsonPath); err != nil {
			marker.SetError(err)
			return "", err
		}
	}

	start := time.Now()
	samples := pitch.Render(analysis, s.params)
	if err := pitch.WriteWAVFile(wavPath, samples, s.params.SynthSampleRate); err != nil {
		marker.SetError(err)
		return "", fmt.Errorf("failed to write pitch audio: %w", err)
	}
	s.logger.Pitch().Info("Successfully rendered pitch audio", "fileName", stim.FileName, "samples", len(samples), "duration", time.Since(start))
	return wavPath, nil
}

// ensureJSON returns the JSON artifact path, and the analysis when it had to
// be regenerated.
func (s *PitchService) ensureJSON(stim *Stimulus) (string, *pitch.Analysis, error) {
	jsonPath := s.artifactPath(stim.FileName, "_pitch.json")
	if !pitch.StimulusNewer(stim.Path, jsonPath) {
		s.logger.Pitch().Debug("Pitch JSON cache hit", "fileName", stim.FileName)
		return jsonPath, nil, nil
	}

	analysis, err := s.analyze(stim)
	if err != nil {
		return "", nil, err
	}
	data, err := json.Marshal(analysis)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode pitch json: %w", err)
	}
	if err := os.MkdirAll(s.tempDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	if err := fsstore.WriteFile(jsonPath, data); err != nil {
		return "", nil, err
	}
	return jsonPath, analysis, nil
}

func (s *PitchService) analyze(stim *Stimulus) (*pitch.Analysis, error) {
	start := time.Now()
	analysis, err := pitch.Analyze(stim.Path, s.params)
	if err != nil {
		s.logger.Pitch().Error("Pitch extraction failed", "fileName", stim.FileName, "error", err)
		return nil, err
	}
	s.logger.Pitch().Info("Successfully extracted pitch",
		"fileName", stim.FileName, "source", analysis.Source, "frames", len(analysis.Times),
		"segments", len(analysis.Segments), "duration", time.Since(start))
	return analysis, nil
}

func loadAnalysis(path string) (*pitch.Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pitch json: %w", err)
	}
	analysis := &pitch.Analysis{}
	if err := json.Unmarshal(data, analysis); err != nil {
		return nil, fmt.Errorf("failed to decode pitch json: %w", err)
	}
	return analysis, nil
}

func (s *PitchService) artifactPath(fileName, suffix string) string {
	stem := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	return filepath.Join(s.tempDir, stem+suffix)
}
