package model

// GiftRecord is one approved gift. Records are append-only: never
// updated or deleted once written.
type GiftRecord struct {
	Day       string // YYYY-MM-DD, UTC
	Invoker   string
	Recipient string
	BlockNum  int64
}

// DailySummary aggregates one day's ledger activity.
type DailySummary struct {
	Day        string
	Gifts      int
	Invokers   int
	Recipients int
}
