package queryflow

import (
	"errors"
	"log/slog"
	"time"

	"github.com/randalmurphal/queryflow/pkg/queryflow/backend"
	"github.com/randalmurphal/queryflow/pkg/queryflow/cache"
	"github.com/randalmurphal/queryflow/pkg/queryflow/history"
	"github.com/randalmurphal/queryflow/pkg/queryflow/llm"
	"github.com/randalmurphal/queryflow/pkg/queryflow/observability"
	"github.com/randalmurphal/queryflow/pkg/queryflow/schema"
	"github.com/randalmurphal/queryflow/pkg/queryflow/sqlcheck"
)

// Default engine tuning. Every value can be overridden with an Option.
const (
	// DefaultMaxRetries bounds recovery attempts after the initial
	// generation.
	DefaultMaxRetries = 3

	// DefaultQueryTimeout bounds one Ask call end to end.
	DefaultQueryTimeout = 300 * time.Second

	// DefaultCacheTTL is how long successful results are replayable.
	DefaultCacheTTL = time.Hour

	// DefaultTemperature keeps generation nearly deterministic. SQL
	// is checked, not admired; sampling variety only burns retries.
	DefaultTemperature = 0.1
)

// DefaultTables is the demo warehouse table set.
var DefaultTables = []string{"orders", "order_items", "products", "users"}

// Engine answers natural-language questions against a SQL backend.
// It owns the standard pipeline (classify, lookup, schema, generate,
// validate, execute, analyze) and the shared services every run uses:
// the result cache, the schema builder, the validator, and optionally
// a history store.
//
// Engine is safe for concurrent use. Runs share the cache and schema
// store but never share mutable state with each other.
type Engine struct {
	llm       llm.Client
	backend   backend.Backend
	cache     *cache.Cache
	cacheSet  bool
	ownsCache bool
	schema    *schema.Builder
	validator *sqlcheck.Validator
	history   history.Store
	logger    *slog.Logger
	metrics   observability.MetricsRecorder
	pipeline  *Pipeline

	qualifier    string
	tables       []string
	maxRetries   int
	maxJoins     int
	queryTimeout time.Duration
	cacheTTL     time.Duration
	schemaTTL    time.Duration
	temperature  float64
	runOpts      []RunOption
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. Runs enrich it with run_id,
// stage, and attempt. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithCache sets the result cache shared by every run. Passing nil
// disables result caching. Default is an engine-owned cache with lazy
// expiry.
func WithCache(c *cache.Cache) Option {
	return func(e *Engine) {
		e.cache = c
		e.cacheSet = true
		e.ownsCache = false
	}
}

// WithCacheTTL sets how long cached results stay replayable.
// Non-positive values never expire. Default is one hour.
func WithCacheTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.cacheTTL = ttl
	}
}

// WithSchemaBuilder replaces the schema builder. The builder's
// qualifier wins over WithQualifier. Useful for sharing one schema
// store across several engines on the same warehouse.
func WithSchemaBuilder(b *schema.Builder) Option {
	return func(e *Engine) {
		if b != nil {
			e.schema = b
		}
	}
}

// WithSchemaTTL sets how long introspected schema is served from the
// store before tables are re-read. Default is one hour.
func WithSchemaTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.schemaTTL = ttl
	}
}

// WithQualifier sets the schema prefix every table reference must
// carry. Default "main".
func WithQualifier(qualifier string) Option {
	return func(e *Engine) {
		if qualifier != "" {
			e.qualifier = qualifier
		}
	}
}

// WithTables sets the warehouse tables the engine may query.
// Default is the demo set: orders, order_items, products, users.
func WithTables(tables ...string) Option {
	return func(e *Engine) {
		if len(tables) > 0 {
			e.tables = append([]string(nil), tables...)
		}
	}
}

// WithMaxRetries sets the recovery budget after the initial
// generation. Zero disables recovery; negative values keep the
// default of 3.
func WithMaxRetries(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.maxRetries = n
		}
	}
}

// WithMaxJoins sets the validator's join budget. Default is 4.
func WithMaxJoins(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxJoins = n
		}
	}
}

// WithQueryTimeout bounds one Ask call end to end, covering every
// LLM call, introspection, and execution it makes. Default is 300s.
func WithQueryTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.queryTimeout = d
		}
	}
}

// WithTemperature sets the sampling temperature for every LLM call.
// Default is 0.1.
func WithTemperature(t float64) Option {
	return func(e *Engine) {
		if t >= 0 {
			e.temperature = t
		}
	}
}

// WithHistory enables run history recording. Every Ask saves one
// record; save failures are logged and never fail the run.
func WithHistory(store history.Store) Option {
	return func(e *Engine) {
		e.history = store
	}
}

// WithMetrics sets the metrics recorder used by runs and stages.
// Default records to the global OpenTelemetry meter provider.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithRunOptions appends options applied to every run the engine
// starts, e.g. WithTracing(true).
func WithRunOptions(opts ...RunOption) Option {
	return func(e *Engine) {
		e.runOpts = append(e.runOpts, opts...)
	}
}

// New creates an engine over the given LLM client and backend and
// compiles the standard pipeline.
//
// Example:
//
//	be, err := backend.OpenSQLite("warehouse.db")
//	// handle err
//	eng, err := queryflow.New(llm.NewClaudeCLI(), be,
//	    queryflow.WithQualifier("main"),
//	    queryflow.WithMaxRetries(2))
func New(client llm.Client, be backend.Backend, opts ...Option) (*Engine, error) {
	if client == nil {
		return nil, errors.New("queryflow: llm client is required")
	}
	if be == nil {
		return nil, errors.New("queryflow: backend is required")
	}

	e := &Engine{
		llm:          client,
		backend:      be,
		logger:       slog.Default(),
		metrics:      observability.NewMetricsRecorder(),
		qualifier:    "main",
		tables:       append([]string(nil), DefaultTables...),
		maxRetries:   DefaultMaxRetries,
		maxJoins:     sqlcheck.DefaultMaxJoins,
		queryTimeout: DefaultQueryTimeout,
		cacheTTL:     DefaultCacheTTL,
		schemaTTL:    schema.DefaultTTL,
		temperature:  DefaultTemperature,
	}

	for _, opt := range opts {
		opt(e)
	}

	if !e.cacheSet {
		e.cache = cache.New()
		e.ownsCache = true
	}

	if e.schema == nil {
		e.schema = schema.NewBuilder(be,
			schema.WithQualifier(e.qualifier),
			schema.WithStore(schema.NewStore(e.schemaTTL)))
	} else {
		e.qualifier = e.schema.Qualifier()
	}

	e.validator = sqlcheck.NewValidator(e.qualifier, e.tables,
		sqlcheck.WithMaxJoins(e.maxJoins))

	pipeline, err := e.buildFlow().Compile()
	if err != nil {
		return nil, err
	}
	e.pipeline = pipeline

	return e, nil
}

// buildFlow wires the standard pipeline shape.
//
//	classify -> lookup -(hit)-> analyze
//	                   -(miss)-> schema -> generate -> validate -> execute
//	generate -(recoverable)-> generate
//	execute  -(recoverable)-> generate
//	execute  -(success)----> analyze -> Done
func (e *Engine) buildFlow() *Flow {
	return NewFlow().
		AddStage(StageClassify, e.classifyStage).
		AddStage(StageLookup, e.lookupStage).
		AddStage(StageSchema, e.schemaStage).
		AddStage(StageGenerate, e.generateStage).
		AddStage(StageValidate, e.validateStage).
		AddStage(StageExecute, e.executeStage).
		AddStage(StageAnalyze, e.analyzeStage).
		AddEdge(StageClassify, StageLookup).
		AddRouter(StageLookup, routeAfterLookup).
		AddEdge(StageSchema, StageGenerate).
		AddRouter(StageGenerate, routeAfterGenerate).
		AddEdge(StageValidate, StageExecute).
		AddRouter(StageExecute, routeAfterExecute).
		AddEdge(StageAnalyze, Done).
		SetEntry(StageClassify)
}

// Pipeline returns the compiled standard pipeline, for inspection and
// for running custom initial states directly.
func (e *Engine) Pipeline() *Pipeline {
	return e.pipeline
}

// Close releases engine-owned resources: the default cache, when the
// engine created it. Injected caches, backends, and history stores
// stay open; their owners close them.
func (e *Engine) Close() {
	if e.ownsCache && e.cache != nil {
		e.cache.Close()
	}
}
