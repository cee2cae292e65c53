package harvest

import "errors"

// ErrInvalidEntity is returned when a run is requested without a source
// entity (handle or category).
var ErrInvalidEntity = errors.New("harvest: invalid source entity")

// ErrNoCollector is returned when a run is requested without a collector
// collaborator.
var ErrNoCollector = errors.New("harvest: source has no collector")
