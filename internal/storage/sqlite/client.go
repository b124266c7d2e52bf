// Package sqlite persists turn history and feedback.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/merchant-assistant/backend/internal/storage/models"
	"github.com/merchant-assistant/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS turns (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		turn_index INTEGER NOT NULL,
		utterance TEXT NOT NULL,
		canonical_query TEXT,
		language TEXT NOT NULL,
		intent TEXT NOT NULL,
		answer TEXT,
		grounded INTEGER NOT NULL DEFAULT 0,
		stage TEXT NOT NULL,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, turn_index);
	CREATE INDEX IF NOT EXISTS idx_turns_created ON turns(created_at);

	CREATE TABLE IF NOT EXISTS turn_passages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		turn_id TEXT NOT NULL,
		passage_id TEXT NOT NULL,
		source_doc TEXT NOT NULL,
		score REAL NOT NULL,
		FOREIGN KEY (turn_id) REFERENCES turns(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_turn_passages_turn ON turn_passages(turn_id);

	CREATE TABLE IF NOT EXISTS feedback (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		turn_id TEXT NOT NULL,
		helpful INTEGER NOT NULL,
		comment TEXT,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (turn_id) REFERENCES turns(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_feedback_turn ON feedback(turn_id);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertTurn(record *models.TurnRecord) error {
	query := `
		INSERT INTO turns (id, session_id, turn_index, utterance, canonical_query,
			language, intent, answer, grounded, stage, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	grounded := 0
	if record.Grounded {
		grounded = 1
	}

	_, err := c.db.Exec(
		query,
		record.ID,
		record.SessionID,
		record.TurnIndex,
		record.Utterance,
		record.CanonicalQuery,
		record.Language,
		record.Intent,
		record.Answer,
		grounded,
		record.Stage,
		record.LatencyMS,
		record.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert turn: %w", err)
	}

	logger.Debug("Turn recorded",
		zap.String("turn_id", record.ID),
		zap.String("session_id", record.SessionID),
		zap.String("stage", record.Stage),
	)

	return nil
}

func (c *Client) InsertTurnPassage(passage *models.TurnPassage) error {
	query := `INSERT INTO turn_passages (turn_id, passage_id, source_doc, score) VALUES (?, ?, ?, ?)`

	_, err := c.db.Exec(query, passage.TurnID, passage.PassageID, passage.SourceDoc, passage.Score)
	if err != nil {
		return fmt.Errorf("failed to insert turn passage: %w", err)
	}

	return nil
}

func (c *Client) GetSessionHistory(sessionID string, limit int) ([]models.TurnRecord, error) {
	query := `
		SELECT id, turn_index, utterance, language, intent, answer, grounded, stage, latency_ms, created_at
		FROM turns
		WHERE session_id = ?
		ORDER BY turn_index DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get session history: %w", err)
	}
	defer rows.Close()

	var records []models.TurnRecord
	for rows.Next() {
		var r models.TurnRecord
		var grounded int
		var createdAt int64

		err := rows.Scan(&r.ID, &r.TurnIndex, &r.Utterance, &r.Language, &r.Intent,
			&r.Answer, &grounded, &r.Stage, &r.LatencyMS, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r.SessionID = sessionID
		r.Grounded = grounded == 1
		r.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, r)
	}

	return records, rows.Err()
}

func (c *Client) StoreFeedback(feedback *models.Feedback) error {
	query := `INSERT INTO feedback (turn_id, helpful, comment, created_at) VALUES (?, ?, ?, ?)`

	helpful := 0
	if feedback.Helpful {
		helpful = 1
	}

	_, err := c.db.Exec(query, feedback.TurnID, helpful, feedback.Comment, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to store feedback: %w", err)
	}

	logger.Info("Feedback stored",
		zap.String("turn_id", feedback.TurnID),
		zap.Bool("helpful", feedback.Helpful),
	)

	return nil
}
