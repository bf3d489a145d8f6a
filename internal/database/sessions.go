package database

import (
	"database/sql"

	"diradmin/internal/model"
)

func (db *DB) CreateSession(s model.Session) error {
	_, err := db.conn.Exec(
		"INSERT INTO sessions (token, csrf_token, username, role, expires_at) VALUES ($1, $2, $3, $4, $5)",
		s.Token, s.CSRFToken, s.Username, s.Role, s.ExpiresAt,
	)
	return err
}

func (db *DB) GetSession(token string) (model.Session, bool, error) {
	s := model.Session{Token: token}
	err := db.conn.QueryRow(
		"SELECT username, role, csrf_token, created_at, expires_at FROM sessions WHERE token = $1", token,
	).Scan(&s.Username, &s.Role, &s.CSRFToken, &s.CreatedAt, &s.ExpiresAt)
	if err == sql.ErrNoRows {
		return model.Session{}, false, nil
	}
	if err != nil {
		return model.Session{}, false, err
	}
	return s, true, nil
}

func (db *DB) DeleteSession(token string) error {
	_, err := db.conn.Exec("DELETE FROM sessions WHERE token = $1", token)
	return err
}

func (db *DB) PurgeExpiredSessions() error {
	_, err := db.conn.Exec("DELETE FROM sessions WHERE expires_at < NOW()")
	return err
}
