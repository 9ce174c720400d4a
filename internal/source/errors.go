package source

import "errors"

var (
	ErrNoSourceConfig    = errors.New("no source config for file type")
	ErrNoMetricColumns   = errors.New("source config defines no metric columns")
	ErrResultsPath       = errors.New("results path does not resolve to an array")
	ErrUnterminatedQuote = errors.New("unterminated quoted field")
	ErrUnknownAggregate  = errors.New("unknown aggregation method")
)
