package prompt

// classifySystem instructs the model to bucket a question into one of
// the five routing categories. The contract is JSON-only so the
// response parses without prose stripping.
const classifySystem = `You classify natural-language analytics questions about an e-commerce warehouse.

Categories:
- customer: customer demographics, signups, segments, individual buyer behavior
- product: product catalog, brands, categories, pricing, item performance
- sales: orders, revenue, order items, totals, trends over time
- geographic: anything broken down by country, state, city, or region
- general: everything else, or questions spanning many areas

Respond with a single JSON object and nothing else:
{"category": "<customer|product|sales|geographic|general>", "complexity": "<simple|moderate|complex>", "confidence": <0.0-1.0>}`

// sqlSystem is the generation system prompt. The schema block and the
// qualifier are bound per request.
const sqlSystem = `You are an expert SQL analyst answering questions over an e-commerce warehouse.

${schema}

Rules:
1. Produce exactly one SELECT statement. A WITH clause is allowed; nothing else is.
2. Never modify data. INSERT, UPDATE, DELETE, DROP, ALTER, CREATE, and TRUNCATE are forbidden.
3. Reference every table through the ${qualifier} schema, for example ${qualifier}.orders.
4. Alias tables and qualify every column that appears in a join.
5. Name the columns you need; avoid SELECT *.
6. Add a LIMIT to row-returning queries.
7. Reply with the SQL statement only. No explanation, no markdown fences.

${examples}`

// insightSystem asks for short analyst commentary over a result
// sample. Plain text, one insight per line.
const insightSystem = `You are a data analyst summarizing a query result for a business audience.

Write two or three short insights about the data. Each insight goes on
its own line, states one concrete observation, and quotes numbers from
the result. Do not restate the SQL or describe the table structure.`

// Example pairs a question with its reference SQL for few-shot
// grounding.
type Example struct {
	Question string
	SQL      string
}

// examplesByCategory holds per-category few-shot examples. The
// general category pulls one example from each specialized set
// instead of carrying its own.
var examplesByCategory = map[string][]Example{
	"customer": {
		{
			Question: "How many customers signed up from each traffic source?",
			SQL: "SELECT u.traffic_source, COUNT(*) AS signups\n" +
				"FROM ${qualifier}.users AS u\n" +
				"GROUP BY u.traffic_source\n" +
				"ORDER BY signups DESC",
		},
		{
			Question: "Who are the five most recent customers?",
			SQL: "SELECT u.first_name, u.last_name, u.created_at\n" +
				"FROM ${qualifier}.users AS u\n" +
				"ORDER BY u.created_at DESC\n" +
				"LIMIT 5",
		},
	},
	"product": {
		{
			Question: "Which brands have the highest average retail price?",
			SQL: "SELECT p.brand, AVG(p.retail_price) AS avg_price\n" +
				"FROM ${qualifier}.products AS p\n" +
				"GROUP BY p.brand\n" +
				"ORDER BY avg_price DESC\n" +
				"LIMIT 10",
		},
		{
			Question: "What are the top selling products by revenue?",
			SQL: "SELECT p.name, SUM(oi.sale_price) AS revenue\n" +
				"FROM ${qualifier}.order_items AS oi\n" +
				"JOIN ${qualifier}.products AS p ON oi.product_id = p.id\n" +
				"GROUP BY p.name\n" +
				"ORDER BY revenue DESC\n" +
				"LIMIT 10",
		},
	},
	"sales": {
		{
			Question: "What is total revenue by month?",
			SQL: "SELECT strftime('%Y-%m', oi.created_at) AS month, SUM(oi.sale_price) AS revenue\n" +
				"FROM ${qualifier}.order_items AS oi\n" +
				"GROUP BY month\n" +
				"ORDER BY month",
		},
		{
			Question: "How many orders are in each status?",
			SQL: "SELECT o.status, COUNT(*) AS orders\n" +
				"FROM ${qualifier}.orders AS o\n" +
				"GROUP BY o.status\n" +
				"ORDER BY orders DESC",
		},
	},
	"geographic": {
		{
			Question: "Which countries generate the most revenue?",
			SQL: "SELECT u.country, SUM(oi.sale_price) AS revenue\n" +
				"FROM ${qualifier}.order_items AS oi\n" +
				"JOIN ${qualifier}.users AS u ON oi.user_id = u.id\n" +
				"GROUP BY u.country\n" +
				"ORDER BY revenue DESC\n" +
				"LIMIT 10",
		},
	},
}

// examplesFor returns the few-shot set for a category. Unknown and
// general categories sample the first example of every set so the
// model still sees the house SQL style.
func examplesFor(category string) []Example {
	if examples, ok := examplesByCategory[category]; ok {
		return examples
	}
	var mixed []Example
	for _, cat := range []string{"customer", "product", "sales", "geographic"} {
		mixed = append(mixed, examplesByCategory[cat][0])
	}
	return mixed
}
