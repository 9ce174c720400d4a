package types

type Aggregate string

const (
	AggAvg      Aggregate = "avg"
	AggSum      Aggregate = "sum"
	AggMin      Aggregate = "min"
	AggMax      Aggregate = "max"
	AggCount    Aggregate = "count"
	AggP50      Aggregate = "p50"
	AggP90      Aggregate = "p90"
	AggP95      Aggregate = "p95"
	AggP99      Aggregate = "p99"
	AggPassRate Aggregate = "pass_rate"
	AggFailRate Aggregate = "fail_rate"
	AggFirst    Aggregate = "first"
	AggLast     Aggregate = "last"
)

// RowFilter keeps only rows whose column matches (or differs from) a
// value before a MetricColumn aggregates them.
type RowFilter struct {
	Column    string `json:"column"`
	Equals    any    `json:"equals,omitempty"`
	NotEquals any    `json:"notEquals,omitempty"`
}

// MetricColumn maps one raw column to one output metric. As renames the
// metric; when empty the column name is used.
type MetricColumn struct {
	Column    string     `json:"column"`
	Aggregate Aggregate  `json:"aggregate"`
	As        string     `json:"as,omitempty"`
	Filter    *RowFilter `json:"filter,omitempty"`
}

// EvalSourceConfig tells the source parser how to reduce raw rows to a
// NormalizedEvalResult. EvalName/RunID are literals; the *Column variants
// read the value from the first row instead.
type EvalSourceConfig struct {
	// CSV dialect. Ignored for json/jsonl sources.
	Delimiter string `json:"delimiter,omitempty"`
	Quote     string `json:"quote,omitempty"`
	Header    *bool  `json:"header,omitempty"`

	// Dot-separated path to the row array inside a JSON document.
	ResultsPath string `json:"resultsPath,omitempty"`

	EvalName        string `json:"evalName,omitempty"`
	EvalNameColumn  string `json:"evalNameColumn,omitempty"`
	RunID           string `json:"runId,omitempty"`
	RunIDColumn     string `json:"runIdColumn,omitempty"`
	TimestampColumn string `json:"timestampColumn,omitempty"`

	Metrics []MetricColumn `json:"metrics"`

	// Output metadata key -> source column, read from the first row.
	MetadataColumns map[string]string `json:"metadataColumns,omitempty"`
}

// SourcesConfig holds per-format source configs inside a contract.
type SourcesConfig struct {
	CSV   *EvalSourceConfig `json:"csv,omitempty"`
	JSON  *EvalSourceConfig `json:"json,omitempty"`
	JSONL *EvalSourceConfig `json:"jsonl,omitempty"`
}

// ForType returns the config for a detected source type, or nil.
func (s *SourcesConfig) ForType(t string) *EvalSourceConfig {
	if s == nil {
		return nil
	}
	switch t {
	case "csv":
		return s.CSV
	case "json":
		return s.JSON
	case "jsonl":
		return s.JSONL
	}
	return nil
}
