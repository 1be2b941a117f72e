package queryflow

import (
	"encoding/json"
	"fmt"
	"strings"

	qferrors "github.com/randalmurphal/queryflow/pkg/queryflow/errors"
	"github.com/randalmurphal/queryflow/pkg/queryflow/llm"
	"github.com/randalmurphal/queryflow/pkg/queryflow/prompt"
)

// confidenceThreshold is the minimum classifier confidence for a
// category to stick. Anything below falls back to general, which
// routes with the full table set.
const confidenceThreshold = 0.5

// categoryTables maps each category to the warehouse tables its SQL
// usually needs. General and unknown categories get every configured
// table.
var categoryTables = map[Category][]string{
	CategoryCustomer:   {"users", "orders"},
	CategoryProduct:    {"products", "order_items"},
	CategorySales:      {"orders", "order_items"},
	CategoryGeographic: {"users", "orders"},
}

// TablesFor returns the subset of the configured tables relevant to a
// category. Unknown categories, the general category, and subsets that
// leave no usable table all fall back to the full configured set.
func TablesFor(category Category, configured []string) []string {
	wanted, ok := categoryTables[category]
	if !ok {
		return configured
	}

	have := make(map[string]bool, len(configured))
	for _, t := range configured {
		have[t] = true
	}

	subset := make([]string, 0, len(wanted))
	for _, t := range wanted {
		if have[t] {
			subset = append(subset, t)
		}
	}
	if len(subset) == 0 {
		return configured
	}
	return subset
}

// classifyStage categorizes the question so downstream stages can pick
// tables and few-shot examples. Classification is best-effort: an LLM
// failure falls back to keyword matching, and low confidence falls
// back to the general category. This stage never fails the run.
func (e *Engine) classifyStage(ctx Context, state State) (State, error) {
	cls, err := e.classify(ctx, state.Query)
	if err != nil {
		cerr := &qferrors.ClassificationError{Query: state.Query, Err: err}
		ctx.Logger().Warn("classification failed, using keyword fallback", "error", cerr)
		cls = fallbackClassify(state.Query)
	}

	if cls.Confidence < confidenceThreshold && cls.Category != CategoryGeneral {
		ctx.Logger().Debug("classification confidence below threshold",
			"category", string(cls.Category),
			"confidence", cls.Confidence)
		cls.Category = CategoryGeneral
	}

	state.Classification = cls
	return state, nil
}

// classify asks the model to categorize the question and parses the
// JSON verdict.
func (e *Engine) classify(ctx Context, query string) (Classification, error) {
	system, user := prompt.Classification(query)
	resp, err := e.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: system,
		Messages:     llm.UserMessage(user),
		Temperature:  e.temperature,
	})
	if err != nil {
		return Classification{}, err
	}

	var cls Classification
	if err := json.Unmarshal([]byte(prompt.StripFences(resp.Content)), &cls); err != nil {
		return Classification{}, fmt.Errorf("parse classification: %w", err)
	}

	cls.Category = Category(strings.ToLower(strings.TrimSpace(string(cls.Category))))
	if !ValidCategory(cls.Category) {
		return Classification{}, fmt.Errorf("unknown category %q", cls.Category)
	}
	return cls, nil
}

// fallbackOrder fixes precedence when keyword scores tie. Geographic
// comes first: location words co-occur with sales and customer words,
// and geographic questions need the users table routed in.
var fallbackOrder = []Category{CategoryGeographic, CategoryCustomer, CategoryProduct, CategorySales}

var categoryKeywords = map[Category][]string{
	CategoryGeographic: {"country", "countries", "city", "cities", "region", "state", "location", "geographic"},
	CategoryCustomer:   {"customer", "user", "buyer", "account", "signup", "retention", "churn"},
	CategoryProduct:    {"product", "item", "brand", "inventory", "catalog", "price"},
	CategorySales:      {"sales", "revenue", "order", "sold", "purchase", "income", "spend"},
}

// fallbackClassify matches category keywords in the lowercased
// question. The score feeds the confidence so single weak matches stay
// close to the acceptance threshold.
func fallbackClassify(query string) Classification {
	q := strings.ToLower(query)

	best := CategoryGeneral
	bestScore := 0
	for _, cat := range fallbackOrder {
		score := 0
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(q, kw) {
				score++
			}
		}
		if score > bestScore {
			best = cat
			bestScore = score
		}
	}

	confidence := 0.2
	if bestScore > 0 {
		confidence = 0.5 + 0.1*float64(min(bestScore, 4))
	}

	return Classification{
		Category:   best,
		Complexity: fallbackComplexity(query),
		Confidence: confidence,
	}
}

// fallbackComplexity estimates difficulty from question length alone.
func fallbackComplexity(query string) string {
	switch words := len(strings.Fields(query)); {
	case words <= 8:
		return "simple"
	case words <= 16:
		return "moderate"
	default:
		return "complex"
	}
}
