package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeChatDisabled         ErrorCode = 102
	ErrCodeInvalidUsername      ErrorCode = 103
	ErrCodeEmptyMessage         ErrorCode = 104
	ErrCodeSpamDetected         ErrorCode = 105
	ErrCodeAgentNotFound        ErrorCode = 106
	ErrCodeAgentRateLimited     ErrorCode = 107
	ErrCodeUserRateLimited      ErrorCode = 108
	ErrCodeInvalidAdvanceType   ErrorCode = 109
	ErrCodeInvalidTransition    ErrorCode = 110

	// Data/Resource errors (200-299)
	ErrCodeSimulationNotFound ErrorCode = 200
	ErrCodeSnapshotNotFound   ErrorCode = 201
	ErrCodeQueryFailed        ErrorCode = 202
	ErrCodeRoundParseFailed   ErrorCode = 203

	// Internal errors (600-699)
	ErrCodeAdvanceFailed  ErrorCode = 600
	ErrCodeSnapshotEncode ErrorCode = 601
	ErrCodeArchiveFailed  ErrorCode = 602

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataParseFailed ErrorCode = 701
	ErrCodeRelayUnavailable      ErrorCode = 702
	ErrCodeInvalidMode           ErrorCode = 703
)
