package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/tverberg/ikconform/internal/spatial"
)

// marshalPose converts an optional pose to JSON TEXT for storage.
// A nil pose stores as NULL.
func marshalPose(p *spatial.Pose) (sql.NullString, error) {
	if p == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal pose: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// unmarshalPose parses JSON TEXT back into an optional pose.
func unmarshalPose(s sql.NullString) (*spatial.Pose, error) {
	if !s.Valid {
		return nil, nil
	}
	var p spatial.Pose
	if err := json.Unmarshal([]byte(s.String), &p); err != nil {
		return nil, fmt.Errorf("unmarshal pose: %w", err)
	}
	return &p, nil
}
