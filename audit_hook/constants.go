package audithook

// Action constants for audit events.
const (
	// Article actions
	ActionArticlePublished = "article.published"

	// Payment actions
	ActionPaymentRecorded = "payment.recorded"
	ActionPaymentRefunded = "payment.refunded"

	// Withdrawal actions
	ActionFeesWithdrawn     = "withdrawal.fees"
	ActionEarningsWithdrawn = "withdrawal.earnings"
	ActionPayoutFailed      = "payout.failed"

	// Access actions
	ActionAccessDenied = "access.denied"

	// Fee authority actions
	ActionFeeRateChanged = "fee_rate.changed"
)

// Resource constants for audit events.
const (
	ResourceArticle    = "article"
	ResourcePayment    = "payment"
	ResourceWithdrawal = "withdrawal"
	ResourceFeeRate    = "fee_rate"
	ResourceAccess     = "access"
)

// Category constants for audit events.
const (
	CategoryContent  = "content"
	CategoryPayment  = "payment"
	CategoryPayout   = "payout"
	CategoryAccess   = "access"
	CategoryPlatform = "platform"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
