package errors

// ErrorCode is a string identifier for a specific failure condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared by all layers.
const (
	ErrCodeInternal        ErrorCode = "COMMON_001"
	ErrCodeBadRequest      ErrorCode = "COMMON_002"
	ErrCodeNotFound        ErrorCode = "COMMON_003"
	ErrCodeTimeout         ErrorCode = "COMMON_004"
	ErrCodeValidation      ErrorCode = "COMMON_005"
	ErrCodeSerialization   ErrorCode = "COMMON_006"
	ErrCodeExternalService ErrorCode = "COMMON_007"
	ErrCodeUnavailable     ErrorCode = "COMMON_008"
	ErrCodeCacheError      ErrorCode = "COMMON_009"
	ErrCodeStorageError    ErrorCode = "COMMON_010"
	ErrCodeNotImplemented  ErrorCode = "COMMON_011"
)

// Structure handling error codes.
const (
	ErrCodeStructureParseFailed ErrorCode = "PDB_001"
	ErrCodeStructureEmpty       ErrorCode = "PDB_002"
	ErrCodeStructureNoResidues  ErrorCode = "PDB_003"
)

// Ligand preparation error codes.
const (
	ErrCodeLigandInvalidSMILES ErrorCode = "LIG_001"
	ErrCodeLigandPrepFailed    ErrorCode = "LIG_002"
	ErrCodeLigandNoConformer   ErrorCode = "LIG_003"
)

// Sequence design error codes. Design-service failures are recoverable: the
// variant generator substitutes a local mutator instead of propagating them.
const (
	ErrCodeDesignServiceFailed ErrorCode = "DSGN_001"
	ErrCodeDesignEmptyResult   ErrorCode = "DSGN_002"
	ErrCodeDesignNoSequence    ErrorCode = "DSGN_003"
)

// Structure prediction error codes. Folding failures are fatal for the
// candidate being processed; no local fallback exists.
const (
	ErrCodeFoldServiceFailed ErrorCode = "FOLD_001"
	ErrCodeFoldBadStatus     ErrorCode = "FOLD_002"
	ErrCodeFoldEmptyResult   ErrorCode = "FOLD_003"
)

// Docking engine error codes. A nonzero engine exit is fatal for the
// candidate; an unparsable result file is soft (scored with a default).
const (
	ErrCodeDockingFailed     ErrorCode = "DOCK_001"
	ErrCodeDockingBadExit    ErrorCode = "DOCK_002"
	ErrCodeDockingUnparsed   ErrorCode = "DOCK_003"
	ErrCodeDockingScratchDir ErrorCode = "DOCK_004"
	ErrCodeDockingMissingBin ErrorCode = "DOCK_005"
)

// Stability engine error codes. All of these are soft: the candidate keeps a
// neutral default score and remains selectable by affinity.
const (
	ErrCodeStabilityFailed    ErrorCode = "STAB_001"
	ErrCodeStabilityUnparsed  ErrorCode = "STAB_002"
	ErrCodeStabilityNoRotamer ErrorCode = "STAB_003"
)

// Evolution session error codes.
const (
	ErrCodeGenerationEmpty  ErrorCode = "EVO_001"
	ErrCodeSessionAborted   ErrorCode = "EVO_002"
	ErrCodeSessionNotFound  ErrorCode = "EVO_003"
	ErrCodeSessionImmutable ErrorCode = "EVO_004"
)

// Run-history store error codes.
const (
	ErrCodeHistoryStoreFailed ErrorCode = "HIST_001"
	ErrCodeHistoryNotFound    ErrorCode = "HIST_002"
)

// Viewer error codes.
const (
	ErrCodeViewerNotFound ErrorCode = "VIEW_001"
	ErrCodeViewerLaunch   ErrorCode = "VIEW_002"
)

// Aliases kept short for call-site readability.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeTimeout      = ErrCodeTimeout
	CodeUnknown      = ErrorCode("")
)
