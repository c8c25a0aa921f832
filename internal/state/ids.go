package state

import (
	"strings"

	"github.com/google/uuid"
)

// NewId returns a short random identifier such as "txn_3f9a1c2b7".
func NewId(prefix string) string {
	return prefix + "_" + compactUUID()[:9]
}

// NewTxHash returns a pseudo transaction hash: "0x" followed by 64 hex digits.
func NewTxHash() string {
	return "0x" + compactUUID() + compactUUID()
}

func compactUUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
