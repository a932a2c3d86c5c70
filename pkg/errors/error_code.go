package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInsufficientData     ErrorCode = 102
	ErrCodeInvalidPeriod        ErrorCode = 103
	ErrCodeInvalidInstrument    ErrorCode = 104
	ErrCodeInvalidCredentials   ErrorCode = 105

	// Exchange errors (200-299)
	ErrCodeTickerFetchFailed   ErrorCode = 200
	ErrCodeExchangeUnavailable ErrorCode = 201
	ErrCodeExchangeRejected    ErrorCode = 202
	ErrCodeMalformedResponse   ErrorCode = 203
	ErrCodeBalanceQueryFailed  ErrorCode = 204
	ErrCodeSignatureFailed     ErrorCode = 205

	// Execution errors (300-399)
	ErrCodeOrderFailed        ErrorCode = 300
	ErrCodeOrderRejected      ErrorCode = 301
	ErrCodeReserveFloorBreach ErrorCode = 302

	// Trade log errors (400-499)
	ErrCodeTradeLogWriteFailed ErrorCode = 400
	ErrCodeQueryFailed         ErrorCode = 401
)
