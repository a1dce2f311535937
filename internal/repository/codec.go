package repository

import (
	"encoding/json"
	"fmt"
)

func encodeBody(body interface{}) ([]byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	return raw, nil
}
