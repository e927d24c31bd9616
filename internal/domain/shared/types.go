package shared

// FailurePolicy decides what a run does after a batch fails to persist
type FailurePolicy string

const (
	FailurePolicyContinue FailurePolicy = "continue"
	FailurePolicyAbort    FailurePolicy = "abort"
)

// RerunPolicy decides what a run does when the account already has rows in the range
type RerunPolicy string

const (
	RerunPolicySkip   RerunPolicy = "skip"
	RerunPolicyAppend RerunPolicy = "append"
)

// RunStatus is the outcome of a generation run
type RunStatus string

const (
	RunStatusQueued    RunStatus = "QUEUED"
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusPartial   RunStatus = "PARTIAL"
	RunStatusSkipped   RunStatus = "SKIPPED"
	RunStatusAborted   RunStatus = "ABORTED"
)

// FailureReason defines dead-letter categories
type FailureReason string

const (
	FailureReasonInvalidRequest  FailureReason = "INVALID_REQUEST"
	FailureReasonUnknownProfile  FailureReason = "UNKNOWN_PROFILE"
	FailureReasonBatchPersist    FailureReason = "BATCH_PERSIST_FAILED"
	FailureReasonMalformedRecord FailureReason = "MALFORMED_RECORD"
	FailureReasonUnknownError    FailureReason = "UNKNOWN_ERROR"
)

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
