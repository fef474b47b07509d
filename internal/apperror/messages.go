package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal error",
	CodeUnknownError:  "An unknown error occurred",

	// Network/RPC errors
	CodeRPCConnectionFailed:  "Failed to connect to RPC node",
	CodeRPCError:             "RPC call failed",
	CodeGasEstimationFailed:  "Gas estimation failed",
	CodeNetworkNotConfigured: "Network is not configured",

	// Price oracle errors
	CodeOracleUnavailable: "Price oracle is unavailable",
	CodePriceNotFound:     "No price available for token",
	CodeStalePrice:        "Price data is stale",

	// Exchange errors
	CodeQuoteUnavailable: "No exchange could quote the pair",
	CodeSwapFailed:       "Swap execution failed",
	CodeSlippageExceeded: "Swap output below slippage limit",

	// Bridge errors
	CodeBridgeFailure:  "Bridge transfer failed",
	CodeBridgeTimeout:  "Bridge confirmation timed out",
	CodeBridgeRejected: "Bridge provider rejected the transfer",

	// Execution errors
	CodeTimeout:               "Operation timed out",
	CodeTransactionFailure:    "On-chain transaction failed",
	CodeExecutionInProgress:   "Another execution is already in progress",
	CodeInsufficientRepayment: "Flash loan proceeds cannot cover principal plus fee",
	CodeInsufficientBalance:   "Insufficient wallet balance",
	CodeTokenNotListed:        "Token is not listed on the requested network",

	// Ledger errors
	CodeLedgerStoreFailed: "Failed to persist ledger state",

	// Circuit breaker errors
	CodeCircuitOpen: "Circuit breaker is open",
}
