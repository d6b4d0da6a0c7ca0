package summary

import "github.com/Iron-Ham/crewview/internal/agent"

// predefinedTasks are the stock descriptions used when a line carries no
// extractable detail, and for closing synthesis.
var predefinedTasks = map[agent.Key][]string{
	agent.KeyForecasting: {
		"Analyzing historical demand data",
		"Identifying seasonal patterns",
		"Calculating optimal reorder points",
		"Building forecasting model",
		"Forecasting future demand requirements",
		"Determining safety stock levels",
	},
	agent.KeyAvailability: {
		"Checking current inventory levels",
		"Evaluating supplier lead times",
		"Assessing production capacity",
		"Analyzing supply chain risks",
		"Verifying part availability",
		"Reviewing stock allocation",
	},
	agent.KeyAltSupplier: {
		"Searching for alternative suppliers",
		"Evaluating supplier qualifications",
		"Comparing geographical locations",
		"Analyzing pricing structures",
		"Assessing quality standards",
		"Reviewing supplier capabilities",
	},
	agent.KeyPerformance: {
		"Ranking suppliers by performance",
		"Evaluating delivery reliability",
		"Analyzing quality metrics",
		"Comparing cost efficiency",
		"Assessing risk profiles",
		"Creating performance scorecards",
	},
	agent.KeyCommunication: {
		"Drafting procurement recommendations",
		"Summarizing findings for stakeholders",
		"Preparing supplier action plans",
		"Creating executive summary",
		"Drafting supplier communications",
		"Finalizing procurement strategy",
	},
}

// PredefinedTasks returns a copy of the stock descriptions for key.
func PredefinedTasks(key agent.Key) []string {
	return append([]string(nil), predefinedTasks[key]...)
}

// DefaultSequences returns the fixed per-agent display sequences of the
// condensed view. The last element of each is the completion phrase.
func DefaultSequences() map[agent.Key][]string {
	return map[agent.Key][]string{
		agent.KeyForecasting: {
			"Analyzing historical demand data",
			"Identifying seasonal patterns",
			"Building forecasting model",
			"Calculating optimal reorder points",
			"Forecasting future demand requirements",
			"Determining safety stock levels",
			"Demand forecasting completed",
		},
		agent.KeyAvailability: {
			"Checking current inventory levels",
			"Evaluating supplier lead times",
			"Assessing production capacity",
			"Analyzing supply chain risks",
			"Verifying part availability",
			"Reviewing stock allocation",
			"Supplier availability confirmed",
		},
		agent.KeyAltSupplier: {
			"Searching for alternative suppliers",
			"Evaluating supplier qualifications",
			"Comparing geographical locations",
			"Analyzing pricing structures",
			"Assessing quality standards",
			"Reviewing supplier capabilities",
			"Alternative suppliers identified",
		},
		agent.KeyPerformance: {
			"Ranking suppliers by performance",
			"Evaluating delivery reliability",
			"Analyzing quality metrics",
			"Comparing cost efficiency",
			"Assessing risk profiles",
			"Creating performance scorecards",
			"Supplier performance evaluated",
		},
		agent.KeyCommunication: {
			"Drafting procurement recommendations",
			"Summarizing findings for stakeholders",
			"Preparing supplier action plans",
			"Creating executive summary",
			"Drafting supplier communications",
			"Finalizing procurement strategy",
			"Recommendations communicated",
		},
	}
}

// variants replace a description that was already shown for the agent.
var variants = map[string][]string{
	"Checking supplier availability": {
		"Verifying supplier capacity",
		"Confirming parts availability",
		"Checking order fulfillment capability",
		"Validating supply chain readiness",
		"Assessing supplier responsiveness",
	},
	"Researching alternative suppliers": {
		"Identifying backup suppliers",
		"Exploring supply chain alternatives",
		"Searching for backup vendors",
		"Finding replacement suppliers",
		"Sourcing alternative vendors",
	},
	"Analyzing demand data": {
		"Examining usage patterns",
		"Reviewing consumption history",
		"Studying demand fluctuations",
		"Evaluating usage trends",
		"Processing consumption data",
	},
	"Analyzing supplier performance": {
		"Evaluating vendor reliability",
		"Assessing supplier track record",
		"Reviewing supplier history",
		"Comparing supplier capabilities",
		"Measuring vendor effectiveness",
	},
	"Preparing communication": {
		"Drafting procurement message",
		"Creating supply chain update",
		"Composing findings report",
		"Preparing recommendations memo",
		"Formulating action items",
	},
}

// fallbackRule matches when the lowercased line contains any of its
// keywords, or, for completion rules, when the line is a completion line.
type fallbackRule struct {
	keywords   []string
	completion bool
	desc       string
}

// fallbacks are evaluated in order; the last rule of each list always
// matches.
var fallbacks = map[agent.Key][]fallbackRule{
	agent.KeyForecasting: {
		{keywords: []string{"analyze the demand patterns"}, desc: "Analyzing demand patterns for valve"},
		{keywords: []string{"smc"}, desc: "Analyzing SMC valve demand data"},
		{keywords: []string{"historical demand data"}, desc: "Reviewing historical demand data"},
		{keywords: []string{"seasonal patterns"}, desc: "Identifying seasonal demand patterns"},
		{keywords: []string{"forecast model"}, desc: "Building forecasting model"},
		{keywords: []string{"predict future demand"}, desc: "Predicting future demand requirements"},
		{keywords: []string{"reorder point"}, desc: "Calculating optimal reorder points"},
		{completion: true, desc: "Demand forecasting completed"},
		{desc: "Analyzing demand data"},
	},
	agent.KeyAvailability: {
		{keywords: []string{"inventory level"}, desc: "Checking inventory levels"},
		{keywords: []string{"lead time"}, desc: "Evaluating supplier lead times"},
		{keywords: []string{"capacity"}, desc: "Assessing supplier production capacity"},
		{keywords: []string{"stock levels"}, desc: "Analyzing current stock levels"},
		{keywords: []string{"supply chain disruption"}, desc: "Identifying supply chain disruptions"},
		{completion: true, desc: "Supplier availability confirmed"},
		{keywords: []string{"availability"}, desc: "Checking supplier availability"},
		{desc: "Assessing supplier readiness"},
	},
	agent.KeyAltSupplier: {
		{keywords: []string{"supplier database"}, desc: "Searching supplier database"},
		{keywords: []string{"compatible part"}, desc: "Identifying compatible parts"},
		{keywords: []string{"market research"}, desc: "Conducting market research for suppliers"},
		{keywords: []string{"qualification"}, desc: "Evaluating supplier qualifications"},
		{keywords: []string{"geographical"}, desc: "Analyzing geographical supplier distribution"},
		{completion: true, desc: "Alternative suppliers identified"},
		{keywords: []string{"alternative supplier"}, desc: "Researching alternative suppliers"},
		{desc: "Exploring supply chain options"},
	},
	agent.KeyPerformance: {
		{keywords: []string{"ranking"}, desc: "Ranking suppliers by performance"},
		{keywords: []string{"quality score"}, desc: "Calculating supplier quality scores"},
		{keywords: []string{"delivery reliability"}, desc: "Analyzing delivery reliability"},
		{keywords: []string{"price comparison"}, desc: "Comparing supplier pricing structures"},
		{keywords: []string{"risk assessment"}, desc: "Conducting supplier risk assessment"},
		{completion: true, desc: "Supplier performance evaluated"},
		{keywords: []string{"metrics"}, desc: "Evaluating supplier metrics"},
		{desc: "Analyzing supplier performance"},
	},
	agent.KeyCommunication: {
		{keywords: []string{"send_email"}, desc: "Email sent with recommendations"},
		{keywords: []string{"drafting email"}, desc: "Drafting email with findings"},
		{keywords: []string{"summarizing"}, desc: "Summarizing analysis results"},
		{keywords: []string{"recommendation"}, desc: "Formulating procurement recommendations"},
		{keywords: []string{"action plan"}, desc: "Developing action plan for procurement"},
		{completion: true, desc: "Recommendations communicated"},
		{keywords: []string{"communicate", "email"}, desc: "Preparing email recommendations"},
		{desc: "Preparing communication"},
	},
}
