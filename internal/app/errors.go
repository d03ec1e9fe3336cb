package service

import (
	"errors"
	"fmt"

	"github.com/okian/fbstats/internal/domain/model"
)

// Stage names a step of the scrape pipeline.
type Stage string

// Pipeline stages in execution order.
const (
	StageFetch     Stage = "fetch"
	StageExtract   Stage = "extract"
	StageNormalize Stage = "normalize"
	StageJoin      Stage = "join"
	StageDerive    Stage = "derive"
	StagePersist   Stage = "persist"
)

// Sentinel kinds for service errors.
var (
	ErrPipeline        = errors.New("pipeline failed")
	ErrNotConfigured   = errors.New("service is missing a store or fetcher")
	ErrNoSource        = errors.New("no source url for category")
	ErrMissingIdentity = errors.New("table has no Player or Squad column")
	ErrNoRecords       = errors.New("no player records produced")
)

// PipelineError reports the stage, and the category where relevant, at which
// a run failed. It matches ErrPipeline with errors.Is.
type PipelineError struct {
	Stage    Stage
	Category model.Category
	Err      error
}

func (e *PipelineError) Error() string {
	if e.Category != "" {
		return fmt.Sprintf("pipeline %s %s: %v", e.Stage, e.Category, e.Err)
	}
	return fmt.Sprintf("pipeline %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// Is makes every PipelineError match ErrPipeline.
func (e *PipelineError) Is(target error) bool { return target == ErrPipeline }

// Code is the machine readable error code served to clients.
func (e *PipelineError) Code() string { return "pipeline_" + string(e.Stage) }

func stageError(stage Stage, cat model.Category, err error) *PipelineError {
	return &PipelineError{Stage: stage, Category: cat, Err: err}
}
