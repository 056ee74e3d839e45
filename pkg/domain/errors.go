package domain

import "errors"

// ErrReportNotFound is returned when a report ID cannot be found in the store.
var ErrReportNotFound = errors.New("report not found")

// ErrSameFile is returned when the schema and data uploads carry the same file name.
var ErrSameFile = errors.New("schema file and data file cannot be the same")

// ErrIdenticalContent is returned when the schema and data documents decode to the same value.
var ErrIdenticalContent = errors.New("schema and data contents are identical")

// ErrEmptyRequest is returned when a request carries no documents at all.
var ErrEmptyRequest = errors.New("no JSON data provided")

// ErrUnknownEngine is returned for an engine name that is not registered.
var ErrUnknownEngine = errors.New("unknown validation engine")
