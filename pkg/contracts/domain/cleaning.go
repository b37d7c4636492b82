package domain

// IssueType categorizes a data-quality finding.
type IssueType string

const (
	IssueDuplicateRows     IssueType = "duplicate_rows"
	IssueMissingValues     IssueType = "missing_values"
	IssueWhitespace        IssueType = "whitespace"
	IssueCaseInconsistency IssueType = "case_inconsistency"
)

// Severity ranks how urgently an issue needs attention.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// CleaningIssue is a read-only finding from the quality analyzer. Issue
// categories are not mutually exclusive: one cell may appear in several.
type CleaningIssue struct {
	Type       IssueType `json:"type"`
	Column     string    `json:"column,omitempty"`
	RowIndices []int     `json:"row_indices"`
	Count      int       `json:"count"`
	Severity   Severity  `json:"severity"`
}

// CaseVariant reports one raw casing of a value that also occurs in other
// casings within the same column.
type CaseVariant struct {
	Column     string `json:"column"`
	Value      string `json:"value"`
	Count      int    `json:"count"`
	RowIndices []int  `json:"row_indices"`
}

// QualitySummary is the full output of the analyzer.
type QualitySummary struct {
	TotalRows     int             `json:"total_rows"`
	DuplicateRows []int           `json:"duplicate_rows"`
	Issues        []CleaningIssue `json:"issues"`
	CaseVariants  []CaseVariant   `json:"case_variants"`
}

// MissingStrategy selects how missing values are handled during cleaning.
type MissingStrategy string

const (
	MissingNone        MissingStrategy = "none"
	MissingRemoveRow   MissingStrategy = "remove_row"
	MissingFillEmpty   MissingStrategy = "fill_empty"
	MissingFillZero    MissingStrategy = "fill_zero"
	MissingFillCustom  MissingStrategy = "fill_custom"
	MissingFillAverage MissingStrategy = "fill_average"
	MissingFillMedian  MissingStrategy = "fill_median"
	MissingFillMode    MissingStrategy = "fill_mode"
)

// CaseMode selects case normalization for text/category cells.
type CaseMode string

const (
	CaseNone      CaseMode = "none"
	CaseLowercase CaseMode = "lowercase"
	CaseUppercase CaseMode = "uppercase"
	CaseTitlecase CaseMode = "titlecase"
)

// CleaningOptions configures a cleaning run. ColumnsToClean is the
// cleaning scope; an empty list means all columns.
type CleaningOptions struct {
	RemoveDuplicates bool            `json:"remove_duplicates"`
	RemoveEmptyRows  bool            `json:"remove_empty_rows"`
	MissingStrategy  MissingStrategy `json:"missing_strategy" validate:"omitempty,oneof=none remove_row fill_empty fill_zero fill_custom fill_average fill_median fill_mode"`
	CustomFillValue  string          `json:"custom_fill_value,omitempty"`
	TrimWhitespace   bool            `json:"trim_whitespace"`
	NormalizeCase    CaseMode        `json:"normalize_case" validate:"omitempty,oneof=none lowercase uppercase titlecase"`
	ColumnsToClean   []string        `json:"columns_to_clean,omitempty"`
}

// ChangeKind distinguishes the two mutations a cleaning run can make.
type ChangeKind string

const (
	ChangeRowRemoved   ChangeKind = "row_removed"
	ChangeCellModified ChangeKind = "cell_modified"
)

// CleaningChange is one atomic audit record. The ordered change sequence
// is the authoritative explanation of a cleaning run and is reproducible
// from (original rows, options) with no hidden state.
type CleaningChange struct {
	Kind     ChangeKind `json:"kind"`
	RowIndex int        `json:"row_index"`
	Column   string     `json:"column,omitempty"`
	Before   any        `json:"before,omitempty"`
	After    any        `json:"after,omitempty"`
	Reason   string     `json:"reason"`
}

// CleaningResult summarizes a cleaning run. RemovedRows and ModifiedCells
// are derived from the change log, never tracked independently.
type CleaningResult struct {
	RemovedRows   int              `json:"removed_rows"`
	ModifiedCells int              `json:"modified_cells"`
	Changes       []CleaningChange `json:"changes"`
}
