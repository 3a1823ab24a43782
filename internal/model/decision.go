package model

// RejectReason identifies why a command event was not acted on.
type RejectReason string

const (
	// RejectNone means the event passed every check.
	RejectNone RejectReason = ""

	// Structural and policy rejections, in evaluation order.
	RejectMissingRecipient RejectReason = "missing-recipient"
	RejectSelfTarget       RejectReason = "self-target"
	RejectTargetsBot       RejectReason = "targets-bot"
	RejectAlreadyAnswered  RejectReason = "already-answered"
	RejectBlockListed      RejectReason = "block-listed"

	// Tier and quota rejections.
	RejectNoTier      RejectReason = "no-tier"
	RejectDailyLimit  RejectReason = "daily-limit"
	RejectUniqueLimit RejectReason = "unique-limit"
)
