package model

import "fmt"

// SearchMode selects which retrieval sources the research retriever
// consults. Unknown values decode to SearchModePlanner.
type SearchMode string

const (
	SearchModePlanner SearchMode = "planner"
	SearchModeKeyword SearchMode = "keyword"
	SearchModeVector  SearchMode = "vector"
	SearchModeHybrid  SearchMode = "hybrid"
)

// ParseSearchMode validates a wire value, falling back to SearchModePlanner
// for anything unrecognized rather than rejecting the request outright.
func ParseSearchMode(s string) SearchMode {
	switch SearchMode(s) {
	case SearchModeKeyword, SearchModeVector, SearchModeHybrid, SearchModePlanner:
		return SearchMode(s)
	default:
		return SearchModePlanner
	}
}

// Source identifies a retrieval backend a SearchPlan may ask for.
type Source string

const (
	SourceKeyword Source = "keyword"
	SourceVector  Source = "vector"
)

// ValidSources is the closed set a SearchPlan.Sources must be a subset of.
var ValidSources = map[Source]bool{SourceKeyword: true, SourceVector: true}

// SearchPlan is the planner node's structured-output record.
type SearchPlan struct {
	SubQueries []string `json:"subQueries"`
	Sources    []Source `json:"sources"`
	Rationale  string   `json:"rationale"`
}

// Validate enforces the planner's output invariants: at least one
// sub-query, and sources drawn only from the closed set.
func (p SearchPlan) Validate() error {
	if len(p.SubQueries) == 0 {
		return fmt.Errorf("search plan: at least one sub-query is required")
	}
	for _, s := range p.Sources {
		if !ValidSources[s] {
			return fmt.Errorf("search plan: unknown source %q", s)
		}
	}
	return nil
}

// RetrievedDocument is one search hit, tagged with the source that produced
// it so downstream formatting can cite provenance.
type RetrievedDocument struct {
	Source    Source  `json:"source"`
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	URL       string  `json:"url,omitempty"`
	Relevance *float64 `json:"relevance,omitempty"`
}

// AnswerType is the closed label set for a ResearchAnswer.
type AnswerType string

const (
	AnswerComparison    AnswerType = "comparison"
	AnswerExplanation   AnswerType = "explanation"
	AnswerRecommendation AnswerType = "recommendation"
	AnswerSummary       AnswerType = "summary"
)

// ParseAnswerType validates a wire value, defaulting to AnswerExplanation
// when the model returns something outside the closed set.
func ParseAnswerType(s string) AnswerType {
	switch AnswerType(s) {
	case AnswerComparison, AnswerExplanation, AnswerRecommendation, AnswerSummary:
		return AnswerType(s)
	default:
		return AnswerExplanation
	}
}

// ResearchAnswer is the writer node's structured-output record.
type ResearchAnswer struct {
	Answer          string     `json:"answer"`
	AnswerType      AnswerType `json:"answerType"`
	Sources         []string   `json:"sources"`
	Confidence      float64    `json:"confidence"`
	NeedsMoreInfo   bool       `json:"needsMoreInfo"`
	FollowUps       []string   `json:"followUps,omitempty"`
}

// MaxResearchIterations bounds the planner->retriever->writer->decision
// loop.
const MaxResearchIterations = 3

// ResearchState is threaded through every node of the research graph.
type ResearchState struct {
	Query         string              `json:"query"`
	EntryContext  string              `json:"entryContext,omitempty"`
	SearchMode    SearchMode          `json:"searchMode"`
	Plan          *SearchPlan         `json:"plan,omitempty"`
	RetrievedDocs []RetrievedDocument `json:"retrievedDocs,omitempty"`
	FinalAnswer   *ResearchAnswer     `json:"finalAnswer,omitempty"`
	Iteration     int                 `json:"iteration"`
	NeedsMoreInfo bool                `json:"needsMoreInfo"`
	TraceID       string              `json:"traceId,omitempty"`
	SessionID     string              `json:"sessionId,omitempty"`
}
