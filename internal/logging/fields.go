package logging

// Field name constants for structured logging.
const (
	FieldError     = "error"
	FieldComponent = "component"
	FieldPath      = "path"

	// Document and mark fields.
	FieldDoc    = "doc"
	FieldMark   = "mark"
	FieldTarget = "target"
	FieldView   = "view"
	FieldOwner  = "owner"
	FieldSeq    = "seq"
	FieldWindow = "window"
	FieldKind   = "kind"
	FieldDetail = "detail"
	FieldCount  = "count"

	// Scenario and tooling fields.
	FieldScenario = "scenario"
	FieldStep     = "step"
	FieldOps      = "ops"
	FieldSeed     = "seed"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
