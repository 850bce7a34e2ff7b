// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package targeting

import (
	"errors"
	"fmt"
)

var (
	// ErrNotPrepared is returned when an operation needs LoadAndPrepare first.
	ErrNotPrepared = errors.New("targeting: dataset not prepared")

	// ErrModelsNotTrained is returned by the model ranking path before BuildPredictiveModels.
	ErrModelsNotTrained = errors.New("targeting: predictive models not trained")

	// ErrTrainingInProgress is returned when a rebuild is already running.
	ErrTrainingInProgress = errors.New("targeting: rebuild already in progress")

	// ErrInvalidArgument is wrapped by errors for out-of-range request parameters.
	ErrInvalidArgument = errors.New("targeting: invalid argument")
)

// DataLoadError reports a malformed or missing input table.
type DataLoadError struct {
	Source string
	Err    error
}

func (e *DataLoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("load data: %v", e.Err)
	}
	return fmt.Sprintf("load data from %s: %v", e.Source, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// ProfileBuildError reports an invariant violation while aggregating profiles.
type ProfileBuildError struct {
	Entity string
	ID     string
	Reason string
}

func (e *ProfileBuildError) Error() string {
	return fmt.Sprintf("build %s profile %q: %s", e.Entity, e.ID, e.Reason)
}

// InsufficientDataError reports too few samples to train a model.
// Callers recover by ranking with the model-free group path.
type InsufficientDataError struct {
	Samples  int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient training data: %d samples < %d required", e.Samples, e.Required)
}

// UnknownEntityError reports a product or group absent from the profiles.
// Operations returning it also return an empty, non-nil result.
type UnknownEntityError struct {
	Kind string
	Name string
}

func (e *UnknownEntityError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// IsUnknownEntity reports whether err is an UnknownEntityError.
func IsUnknownEntity(err error) bool {
	var target *UnknownEntityError
	return errors.As(err, &target)
}

// IsInsufficientData reports whether err is an InsufficientDataError.
func IsInsufficientData(err error) bool {
	var target *InsufficientDataError
	return errors.As(err, &target)
}
