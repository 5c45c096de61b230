// Package clash detects overlapping building volumes and renders them as a
// GeoJSON-like feature collection.
package clash

import (
	"log"
	"time"

	"buildingclash/internal/model"
)

// Service runs the full pipeline: validation, detection, canonicalization and
// formatting. It is a pure function of its input and safe for concurrent use.
type Service struct {
	validator *InputValidator
	detector  *Detector
}

// NewService creates a pipeline evaluating pairs on up to concurrency goroutines
func NewService(concurrency int) *Service {
	return &Service{
		validator: NewInputValidator(),
		detector:  NewDetector(concurrency),
	}
}

// Validate parses raw without running any geometry work
func (s *Service) Validate(raw []byte) ([]model.BuildingFeature, error) {
	return s.validator.Parse(raw)
}

// Execute computes the rendered clash report for a raw submit body
func (s *Service) Execute(raw []byte) (model.FeatureCollection, error) {
	startTime := time.Now()

	features, err := s.validator.Parse(raw)
	if err != nil {
		return model.FeatureCollection{}, err
	}

	clashes, err := s.detector.Detect(features)
	if err != nil {
		return model.FeatureCollection{}, err
	}

	log.Printf("Clash detection: %d buildings, %d clashes in %v",
		len(features), len(clashes), time.Since(startTime))

	return FormatResults(clashes), nil
}
