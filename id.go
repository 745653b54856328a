package paywall

import "github.com/xraph/paywall/id"

// ID is the primary identifier type for payment records and withdrawal
// receipts. Article ids are plain sequential int64 values.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
