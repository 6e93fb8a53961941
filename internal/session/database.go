package session

import (
	"encoding/json"
	"fmt"
	"log"

	"popbot-backend/internal/db"
)

// DatabasePersister keeps session snapshots in PostgreSQL, one JSONB row per
// user id. Used instead of the JSON file when DB_URL is configured.
type DatabasePersister struct {
	db *db.DB
}

func NewDatabasePersister(database *db.DB) *DatabasePersister {
	return &DatabasePersister{db: database}
}

func (dp *DatabasePersister) Load() (map[string]*Session, error) {
	rows, err := dp.db.Query(`SELECT id, data FROM sessions`)
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}
	defer rows.Close()

	sessions := make(map[string]*Session)
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		var sess Session
		if err := json.Unmarshal(data, &sess); err != nil {
			// One bad row should not take the whole store down.
			log.Printf("[session] skipping corrupt row for %s: %v", id, err)
			continue
		}
		sessions[id] = &sess
	}
	return sessions, rows.Err()
}

func (dp *DatabasePersister) Save(sessions map[string]*Session) error {
	tx, err := dp.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin session save: %w", err)
	}
	for id, sess := range sessions {
		data, err := json.Marshal(sess)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to encode session %s: %w", id, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO sessions (id, data, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (id)
			DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
		`, id, data); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to save session %s: %w", id, err)
		}
	}
	return tx.Commit()
}
