package crabnode

// Stage operation stage
type Stage string

const (
	StageInitializing Stage = "Initializing"
	StageUploading    Stage = "Uploading"
	StageDownloading  Stage = "Downloading"
	StageVerifying    Stage = "Verifying"
	StageCompleted    Stage = "Completed"
	StageFailed       Stage = "Failed"
)

// IsTerminal reports whether no event may follow this stage
func (stage Stage) IsTerminal() bool {
	return stage == StageCompleted || stage == StageFailed
}

// OperationProgress a single progress event of a transfer
type OperationProgress struct {
	OperationID string `json:"operation_id"`

	// Progress fraction in [0,1]. Left at its previous value while the total is unknown
	Progress float64 `json:"progress"`

	BytesProcessed uint64  `json:"bytes_processed"`
	TotalBytes     *uint64 `json:"total_bytes,omitempty"`

	Stage Stage `json:"stage"`

	// Reason is set when Stage is StageFailed
	Reason string `json:"reason,omitempty"`

	Message string `json:"message,omitempty"`
}

// ProgressObserver receives every progress event. Events of one operation are
// delivered in order from a single goroutine; different operations may be
// delivered concurrently.
type ProgressObserver func(progress OperationProgress)

// NewProgress creates an Initializing event for operationID
func NewProgress(operationID string) OperationProgress {
	return OperationProgress{
		OperationID: operationID,
		Stage:       StageInitializing,
	}
}

// WithBytes sets the byte counters and, when total is known, the fraction
func (p OperationProgress) WithBytes(processed uint64, total *uint64) OperationProgress {
	p.BytesProcessed = processed
	p.TotalBytes = total
	if total != nil && *total > 0 {
		p.Progress = float64(processed) / float64(*total)
		if p.Progress > 1 {
			p.Progress = 1
		}
	}
	return p
}

// WithStage sets the stage
func (p OperationProgress) WithStage(stage Stage) OperationProgress {
	p.Stage = stage
	if stage == StageCompleted {
		p.Progress = 1
	}
	return p
}

// WithFailure sets the Failed stage and its reason
func (p OperationProgress) WithFailure(reason string) OperationProgress {
	p.Stage = StageFailed
	p.Reason = reason
	return p
}

// WithMessage sets the human readable message
func (p OperationProgress) WithMessage(message string) OperationProgress {
	p.Message = message
	return p
}

func sizeOf(n uint64) *uint64 {
	return &n
}
