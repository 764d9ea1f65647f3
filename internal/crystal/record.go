package crystal

import (
	"encoding/json"
	"fmt"
)

// Record is the stored shape of a named configuration. The external store owns
// persistence; this package only converts between records and Params.
type Record struct {
	Name     string `json:"name"`
	Params   Params `json:"params"`
	Type     string `json:"type"`
	IsActive bool   `json:"is_active"`
}

// DecodeRecord parses a stored record. Params fields missing from the stored
// document keep their defaults, so older records remain renderable.
func DecodeRecord(data []byte) (Record, error) {
	var raw struct {
		Name     string  `json:"name"`
		Params   Overlay `json:"params"`
		Type     string  `json:"type"`
		IsActive bool    `json:"is_active"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Record{}, fmt.Errorf("decode crystal record: %w", err)
	}
	return Record{
		Name:     raw.Name,
		Params:   Merge(DefaultParams(), raw.Params),
		Type:     raw.Type,
		IsActive: raw.IsActive,
	}, nil
}

// Encode serializes the record.
func (r Record) Encode() ([]byte, error) {
	return json.Marshal(r)
}
