package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	_ "modernc.org/sqlite"

	"github.com/sorynlabs/soryn/internal/domain"
)

// timeLayout keeps a fixed fraction width so the TEXT columns sort
// chronologically under ORDER BY.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const titleLimit = 50

type Store struct {
	writeDB *sql.DB // Single connection for writes
	readDB  *sql.DB // Pool of connections for reads
	dbPath  string
}

func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(homeDir, ".soryn", "soryn_history.db")
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	config := DefaultConfig()

	// Open write connection (single connection)
	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open write database: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("failed to open read database: %w", err)
	}
	readDB.SetMaxOpenConns(config.ReadPoolSize)
	readDB.SetMaxIdleConns(config.ReadPoolSize)

	store := &Store{
		writeDB: writeDB,
		readDB:  readDB,
		dbPath:  dbPath,
	}

	if err := store.initializeDB(config); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := store.createTables(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

func (s *Store) initializeDB(config *Config) error {
	for _, pragma := range config.pragmas() {
		if _, err := s.writeDB.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set %s: %w", pragma, err)
		}
	}

	// Readers need foreign_keys too so cascades stay consistent
	if _, err := s.readDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys on read pool: %w", err)
	}

	return nil
}

func (s *Store) createTables() error {
	queries := []string{
		queryCreateChatsTable,
		queryCreateMessagesTable,
		queryCreateDebatesTable,
		queryCreateIndexMessagesChat,
		queryCreateIndexChatsUpdated,
		queryCreateIndexDebatesStamp,
	}

	for _, query := range queries {
		if _, err := s.writeDB.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

// CreateChat inserts a new chat plus its first user message and returns
// the generated chat ID. The title is the first message truncated.
func (s *Store) CreateChat(modelID, firstMessage string) (string, error) {
	chatID := uuid.NewString()
	now := time.Now().UTC().Format(timeLayout)

	title := firstMessage
	if runes := []rune(firstMessage); len(runes) > titleLimit {
		title = string(runes[:titleLimit]) + "..."
	}

	tx, err := s.writeDB.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(queryInsertChat, chatID, modelID, title, now, now); err != nil {
		return "", fmt.Errorf("failed to insert chat: %w", err)
	}

	if _, err := tx.Exec(queryInsertMessage, uuid.NewString(), chatID, domain.RoleUser, firstMessage, now); err != nil {
		return "", fmt.Errorf("failed to insert first message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}

	return chatID, nil
}

// AppendMessage adds a message to an existing chat and bumps its
// updated_at so the chat resurfaces at the top of the history.
func (s *Store) AppendMessage(chatID, role, content string) error {
	now := time.Now().UTC().Format(timeLayout)

	tx, err := s.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(queryInsertMessage, uuid.NewString(), chatID, role, content, now); err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	if _, err := tx.Exec(queryTouchChat, now, chatID); err != nil {
		return fmt.Errorf("failed to touch chat: %w", err)
	}

	return tx.Commit()
}

// GetChat returns a chat with its messages in timestamp order, or nil
// when no chat matches.
func (s *Store) GetChat(id string) (*domain.ChatDetail, error) {
	detail := &domain.ChatDetail{}
	var createdAt, updatedAt string

	err := s.readDB.QueryRow(querySelectChat, id).Scan(
		&detail.ID, &detail.ModelID, &detail.Title, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if detail.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if detail.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	rows, err := s.readDB.Query(querySelectMessages, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	detail.Messages = []domain.ChatMessage{}
	for rows.Next() {
		var msg domain.ChatMessage
		var stamp string
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.Role, &msg.Content, &stamp); err != nil {
			return nil, err
		}
		if msg.Timestamp, err = parseTime(stamp); err != nil {
			return nil, err
		}
		detail.Messages = append(detail.Messages, msg)
	}

	return detail, rows.Err()
}

// SaveDebate persists a finished debate and returns the row ID. The row
// gets its own UUID; the engine-assigned debate_id only lives inside
// the responses payload returned to the caller.
func (s *Store) SaveDebate(result *domain.DebateResult) (string, error) {
	debateID := uuid.NewString()
	now := time.Now().UTC().Format(timeLayout)

	responsesJSON, err := json.Marshal(result.Responses)
	if err != nil {
		return "", fmt.Errorf("failed to encode responses: %w", err)
	}

	_, err = s.writeDB.Exec(
		queryInsertDebate,
		debateID, result.Prompt, nullString(result.WinnerModelID),
		nullString(result.EvaluationReasoning), result.TotalTimeMs, now, string(responsesJSON),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert debate: %w", err)
	}

	return debateID, nil
}

// GetDebate returns a stored debate with its responses decoded, or nil
// when no debate matches.
func (s *Store) GetDebate(id string) (*domain.DebateDetail, error) {
	detail := &domain.DebateDetail{}
	var winner, reasoning sql.NullString
	var stamp, responsesJSON string

	err := s.readDB.QueryRow(querySelectDebate, id).Scan(
		&detail.ID, &detail.Prompt, &winner, &reasoning,
		&detail.TotalTimeMs, &stamp, &responsesJSON,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	detail.WinnerModelID = winner.String
	detail.EvaluationReasoning = reasoning.String

	if detail.Timestamp, err = parseTime(stamp); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(responsesJSON), &detail.Responses); err != nil {
		return nil, fmt.Errorf("failed to decode responses: %w", err)
	}

	return detail, nil
}

// History returns chat and debate previews interleaved, newest first.
func (s *Store) History() ([]domain.HistoryItem, error) {
	rows, err := s.readDB.Query(queryHistoryUnion)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.HistoryItem{}
	for rows.Next() {
		var item domain.HistoryItem
		var stamp string
		var modelID sql.NullString
		if err := rows.Scan(&item.ID, &item.Title, &stamp, &item.Kind, &modelID); err != nil {
			return nil, err
		}
		if item.SortDate, err = parseTime(stamp); err != nil {
			return nil, err
		}
		item.ModelID = modelID.String
		items = append(items, item)
	}

	return items, rows.Err()
}

// DeleteHistoryItem removes a chat or debate. Chat messages go with
// their chat through the cascade. Returns false when nothing matched.
func (s *Store) DeleteHistoryItem(id, kind string) (bool, error) {
	var query string
	switch kind {
	case domain.HistoryKindChat:
		query = queryDeleteChat
	case domain.HistoryKindDebate:
		query = queryDeleteDebate
	default:
		return false, fmt.Errorf("invalid history kind: %s", kind)
	}

	result, err := s.writeDB.Exec(query, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (s *Store) Close() error {
	var errs *multierror.Error

	if _, err := s.writeDB.Exec("PRAGMA optimize"); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("failed to optimize: %w", err))
	}

	if err := s.readDB.Close(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("failed to close read db: %w", err))
	}

	if err := s.writeDB.Close(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("failed to close write db: %w", err))
	}

	return errs.ErrorOrNil()
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
