package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Arbitrage-specific error codes
const (
	// Network/RPC errors
	CodeRPCConnectionFailed  Code = "RPC_CONNECTION_FAILED"
	CodeRPCError             Code = "RPC_ERROR"
	CodeGasEstimationFailed  Code = "GAS_ESTIMATION_FAILED"
	CodeNetworkNotConfigured Code = "NETWORK_NOT_CONFIGURED"

	// Price oracle errors
	CodeOracleUnavailable Code = "ORACLE_UNAVAILABLE"
	CodePriceNotFound     Code = "PRICE_NOT_FOUND"
	CodeStalePrice        Code = "STALE_PRICE"

	// Exchange errors
	CodeQuoteUnavailable Code = "QUOTE_UNAVAILABLE"
	CodeSwapFailed       Code = "SWAP_FAILED"
	CodeSlippageExceeded Code = "SLIPPAGE_EXCEEDED"

	// Bridge errors
	CodeBridgeFailure  Code = "BRIDGE_FAILURE"
	CodeBridgeTimeout  Code = "BRIDGE_TIMEOUT"
	CodeBridgeRejected Code = "BRIDGE_REJECTED"

	// Execution errors
	CodeTimeout               Code = "TIMEOUT"
	CodeTransactionFailure    Code = "TRANSACTION_FAILURE"
	CodeExecutionInProgress   Code = "EXECUTION_IN_PROGRESS"
	CodeInsufficientRepayment Code = "INSUFFICIENT_REPAYMENT"
	CodeInsufficientBalance   Code = "INSUFFICIENT_BALANCE"
	CodeTokenNotListed        Code = "TOKEN_NOT_LISTED"

	// Ledger errors
	CodeLedgerStoreFailed Code = "LEDGER_STORE_FAILED"

	// Circuit breaker errors
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
