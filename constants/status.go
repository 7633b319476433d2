package constants

// DocStatus is the canonical per-document outcome for a batch run.
type DocStatus string

// Stable values (store these exact strings in reports).
const (
	DocStatusSuccess DocStatus = "SUCCESS" // all eight fields extracted
	DocStatusPartial DocStatus = "PARTIAL" // one or more fields absent; still a valid record
	DocStatusFailed  DocStatus = "FAILED"  // acquisition failed or format unsupported
)

// MergeOutcome is the store merge decision for a record.
type MergeOutcome string

const (
	MergeInserted MergeOutcome = "INSERTED"
	MergeSkipped  MergeOutcome = "SKIPPED_DUPLICATE"
	MergeUpdated  MergeOutcome = "UPDATED"
)
