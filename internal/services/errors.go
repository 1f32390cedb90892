package services

import (
	"errors"
	"fmt"

	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts/domain"
)

// DegradedMessage is published when an ingestion cycle fails as a whole
const DegradedMessage = "Unable to load market data. Please try refreshing the page."

var (
	// Ingestion errors
	ErrIngestionRunning = errors.New("ingestion already running")
	ErrNoUsableRows     = errors.New("feed produced no usable records")

	// Query errors
	ErrNoMarketData       = errors.New("no market data available")
	ErrInvalidRegion      = errors.New("invalid region")
	ErrInvalidGranularity = errors.New("invalid granularity")
)

// SourceError describes the failure of a single feed. It never aborts a
// cycle; the feed simply contributes no records.
type SourceError struct {
	Region      domain.Region
	Granularity domain.Granularity
	Locator     string
	Err         error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s %s feed: %v", e.Region, e.Granularity, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// PipelineError is a failure outside the per-feed guards. It stops the
// cycle and puts the store into the degraded state.
type PipelineError struct {
	Phase domain.Phase
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("ingestion %s phase: %v", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
