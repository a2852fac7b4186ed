package types

// Block is one node of the structural document tree produced by the analysis
// backend. The tree is acyclic; table_cell nodes appear only under table_row,
// table_row only under table, description_list_item only under description_list.
type Block struct {
	Kind               string          `json:"kind"`
	Content            string          `json:"content"`
	RawContent         string          `json:"raw_content,omitempty"`
	Title              string          `json:"title,omitempty"`
	Children           []*Block        `json:"children,omitempty"`
	Attributes         map[string]any  `json:"attributes,omitempty"`
	Level              int             `json:"level,omitempty"`
	AdmonitionType     string          `json:"admonition_type,omitempty"`
	Term               string          `json:"term,omitempty"`
	Description        string          `json:"description,omitempty"`
	Errors             []AnalysisError `json:"errors,omitempty"`
	ShouldSkipAnalysis bool            `json:"should_skip_analysis,omitempty"`
}

// AttrString returns a string attribute, tolerating absent maps and non-string
// scalars (numbers are not coerced; use AttrInt for those).
func (b *Block) AttrString(name string) string {
	if b.Attributes == nil {
		return ""
	}
	if s, ok := b.Attributes[name].(string); ok {
		return s
	}
	return ""
}

// AttrInt returns an integer attribute. JSON numbers decode as float64, so both
// float64 and int are accepted. Returns (0, false) when absent or non-numeric.
func (b *Block) AttrInt(name string) (int, bool) {
	if b.Attributes == nil {
		return 0, false
	}
	switch v := b.Attributes[name].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

// AttrBool returns a boolean attribute. String forms "true"/"false" are
// accepted because some backends serialise attribute scalars as strings.
func (b *Block) AttrBool(name string) bool {
	if b.Attributes == nil {
		return false
	}
	switch v := b.Attributes[name].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

// ValidationResult carries the outcome of the backend's enhanced validation
// pass for a single error.
type ValidationResult struct {
	Decision        string   `json:"decision,omitempty"`
	ConfidenceScore *float64 `json:"confidence_score,omitempty"`
	ConsensusScore  float64  `json:"consensus_score,omitempty"`
	PassesCount     int      `json:"passes_count,omitempty"`
}

// ConfidenceCalculation explains how a consolidated error's confidence was
// derived. Rendered verbatim (pretty-printed) in the confidence details panel.
type ConfidenceCalculation struct {
	Method               string  `json:"method,omitempty"`
	WeightedAverage      float64 `json:"weighted_average,omitempty"`
	PrimaryConfidence    float64 `json:"primary_confidence,omitempty"`
	ConsolidationPenalty float64 `json:"consolidation_penalty,omitempty"`
}

// FixOption is one remediation strategy attached to an error. Scope is
// "minimal" or "broad"; Type is "quick" or "comprehensive".
type FixOption struct {
	Type        string   `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
	TextSpan    string   `json:"text_span,omitempty"`
	Scope       string   `json:"scope,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// AnalysisError is one issue flagged by the backend, attached either to a
// block node or to the flat top-level error list.
type AnalysisError struct {
	Kind                        string                 `json:"kind,omitempty"`
	Message                     string                 `json:"message,omitempty"`
	Suggestions                 []string               `json:"suggestions,omitempty"`
	Suggestion                  string                 `json:"suggestion,omitempty"`
	LineNumber                  *int                   `json:"line_number,omitempty"`
	SentenceIndex               *int                   `json:"sentence_index,omitempty"`
	Sentence                    string                 `json:"sentence,omitempty"`
	TextSegment                 string                 `json:"text_segment,omitempty"`
	Position                    *int                   `json:"position,omitempty"`
	ErrorPosition               *float64               `json:"error_position,omitempty"`
	ConfidenceScore             *float64               `json:"confidence_score,omitempty"`
	Confidence                  *float64               `json:"confidence,omitempty"`
	ValidationResult            *ValidationResult      `json:"validation_result,omitempty"`
	ConfidenceCalculation       *ConfidenceCalculation `json:"confidence_calculation,omitempty"`
	ConsolidatedFrom            []string               `json:"consolidated_from,omitempty"`
	TextSpan                    string                 `json:"text_span,omitempty"`
	ConsolidationType           string                 `json:"consolidation_type,omitempty"`
	FixOptions                  []FixOption            `json:"fix_options,omitempty"`
	EnhancedValidationAvailable bool                   `json:"enhanced_validation_available,omitempty"`
	Subtype                     string                 `json:"subtype,omitempty"`
	AmbiguityType               string                 `json:"ambiguity_type,omitempty"`
	RuleSubtype                 string                 `json:"rule_subtype,omitempty"`
}

// AllSuggestions merges the list form and the scalar alternate form.
func (e *AnalysisError) AllSuggestions() []string {
	if len(e.Suggestions) > 0 {
		return e.Suggestions
	}
	if e.Suggestion != "" {
		return []string{e.Suggestion}
	}
	return nil
}

// Statistics holds the readability metrics for the statistics sidebar.
type Statistics struct {
	WordCount                 int     `json:"word_count,omitempty"`
	SentenceCount             int     `json:"sentence_count,omitempty"`
	FleschReadingEase         float64 `json:"flesch_reading_ease,omitempty"`
	GunningFogIndex           float64 `json:"gunning_fog_index,omitempty"`
	SMOGIndex                 float64 `json:"smog_index,omitempty"`
	AutomatedReadabilityIndex float64 `json:"automated_readability_index,omitempty"`
	PassiveVoicePercentage    float64 `json:"passive_voice_percentage,omitempty"`
	AvgSentenceLength         float64 `json:"avg_sentence_length,omitempty"`
	ComplexWordsPercentage    float64 `json:"complex_words_percentage,omitempty"`
}

// TechnicalWritingMetrics holds grade-level results. The target band is 9-11.
type TechnicalWritingMetrics struct {
	EstimatedGradeLevel float64 `json:"estimated_grade_level,omitempty"`
	GradeLevelCategory  string  `json:"grade_level_category,omitempty"`
	MeetsTargetGrade    bool    `json:"meets_target_grade,omitempty"`
}

// Analysis is the top-level result record received from the backend.
// Errors is the flat fallback list used when no structural tree is present.
type Analysis struct {
	Errors                  []AnalysisError          `json:"errors,omitempty"`
	Statistics              *Statistics              `json:"statistics,omitempty"`
	TechnicalWritingMetrics *TechnicalWritingMetrics `json:"technical_writing_metrics,omitempty"`
	OverallScore            float64                  `json:"overall_score,omitempty"`
}

// AnalysisRequest is the body accepted by POST /analyses: the analysis record,
// the analysed content, and the optional structural block tree.
type AnalysisRequest struct {
	Analysis         *Analysis         `json:"analysis"`
	Content          string            `json:"content"`
	StructuralBlocks []*Block          `json:"structural_blocks,omitempty"`
	Metadata         *Metadata         `json:"metadata,omitempty"`
	Compliance       *ComplianceResult `json:"compliance,omitempty"`
	Rewrite          *RewriteResult    `json:"rewrite,omitempty"`
	Refinement       *RefinementResult `json:"refinement,omitempty"`
}
