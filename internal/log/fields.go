package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldOperation  = "operation"
	FieldError      = "error"
	FieldID         = "id"
	FieldDate       = "date"
	FieldAmount     = "amount"
	FieldCategory   = "category"
	FieldCount      = "count"
	FieldAccepted   = "accepted"
	FieldRejected   = "rejected"
	FieldBatchID    = "batch_id"
	FieldPath       = "path"
	FieldDurationMs = "duration_ms"
	FieldCacheHit   = "cache_hit"
	FieldFilter     = "filter"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentCSV     = "csv"
	ComponentChart   = "chart"
	ComponentCLI     = "cli"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpQuery    = "query"
	OpImport   = "import"
	OpExport   = "export"
	OpReport   = "report"
	OpRender   = "render"
	OpCategory = "category"
	OpShutdown = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithTransaction adds the fields identifying a ledger entry
func (f LogFields) WithTransaction(id int64, date, amount, category string) LogFields {
	if id > 0 {
		f[FieldID] = id
	}
	f[FieldDate] = date
	f[FieldAmount] = amount
	f[FieldCategory] = category
	return f
}

// WithImport adds the outcome of a CSV import
func (f LogFields) WithImport(batchID string, accepted, rejected int) LogFields {
	f[FieldBatchID] = batchID
	f[FieldAccepted] = accepted
	f[FieldRejected] = rejected
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
