package types

// Metadata is the document metadata record exchanged with the
// metadata-generation backend and edited in the metadata panel.
type Metadata struct {
	Title        string   `json:"title,omitempty"`
	Description  string   `json:"description,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
	TaxonomyTags []string `json:"taxonomy_tags,omitempty"`
	Audience     string   `json:"audience,omitempty"`
	Intent       string   `json:"intent,omitempty"`
	ContentType  string   `json:"content_type,omitempty"`
}

// ComplianceIssue is one finding in the modular-compliance result.
type ComplianceIssue struct {
	Severity    string   `json:"severity"`
	Message     string   `json:"message"`
	Description string   `json:"description,omitempty"`
	LineNumber  *int     `json:"line_number,omitempty"`
	FlaggedText string   `json:"flagged_text,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// ComplianceResult is the modular-compliance record for one document.
// ComplianceStatus is one of compliant, mostly_compliant, needs_improvement,
// non_compliant.
type ComplianceResult struct {
	ContentType      string          `json:"content_type,omitempty"`
	TotalIssues      int             `json:"total_issues"`
	ComplianceStatus string          `json:"compliance_status"`
	IssuesBySeverity map[string]int  `json:"issues_by_severity,omitempty"`
	Issues           []ComplianceIssue `json:"issues,omitempty"`
}

// Report is the stored unit behind one report ID: the submitted analysis
// payload plus whatever companion panels the backend included. Metadata is
// the only mutable field; the metadata editor overwrites it in place.
type Report struct {
	ID               string            `json:"id"`
	Analysis         *Analysis         `json:"analysis"`
	Content          string            `json:"content"`
	StructuralBlocks []*Block          `json:"structural_blocks,omitempty"`
	Metadata         *Metadata         `json:"metadata,omitempty"`
	Compliance       *ComplianceResult `json:"compliance,omitempty"`
	Rewrite          *RewriteResult    `json:"rewrite,omitempty"`
	Refinement       *RefinementResult `json:"refinement,omitempty"`
	CreatedAt        int64             `json:"created_at"`
}

// RewriteResult is the pass-1 output of the rewrite backend. Both field
// spellings occur in the wild; RewrittenText wins when both are set.
type RewriteResult struct {
	RewrittenText string   `json:"rewritten_text,omitempty"`
	Rewritten     string   `json:"rewritten,omitempty"`
	Improvements  []string `json:"improvements,omitempty"`
}

// Text returns whichever rewritten-content field is populated.
func (r *RewriteResult) Text() string {
	if r.RewrittenText != "" {
		return r.RewrittenText
	}
	return r.Rewritten
}

// RefinementResult is the pass-2 output of the rewrite backend.
type RefinementResult struct {
	RefinedContent string   `json:"refined_content,omitempty"`
	RefinedText    string   `json:"refined_text,omitempty"`
	Refinements    []string `json:"refinements,omitempty"`
}

// Text returns whichever refined-content field is populated.
func (r *RefinementResult) Text() string {
	if r.RefinedContent != "" {
		return r.RefinedContent
	}
	return r.RefinedText
}
