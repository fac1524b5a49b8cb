// Package cache provides read-through storage for spending summaries.
package cache

import (
	"encoding/json"
	"fmt"

	"github.com/bioinsight/backend/internal/domain/ledger"
)

// KeyPrefix namespaces every summary key.
const KeyPrefix = "ledger:summary:"

func encodeSummary(s *ledger.Summary) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode summary: %w", err)
	}
	return data, nil
}

func decodeSummary(data []byte) (*ledger.Summary, error) {
	var s ledger.Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return &s, nil
}
