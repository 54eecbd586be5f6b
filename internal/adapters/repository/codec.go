package repository

import (
	"encoding/json"
	"fmt"

	"github.com/E1207/bank-transaction-ml/internal/domain/model"
)

// encodeRecord renders rec as the JSON payload stored by the Redis and
// Postgres backends.
func encodeRecord(rec model.SimulationRecord) ([]byte, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record %s: %w", rec.ID, err)
	}
	return b, nil
}

// decodeRecord rejects payloads that do not parse or do not form a valid record.
func decodeRecord(raw []byte) (model.SimulationRecord, error) {
	var rec model.SimulationRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return model.SimulationRecord{}, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if !rec.Valid() {
		return model.SimulationRecord{}, errMalformed
	}
	return rec, nil
}
