package storage

// Database schema queries
const (
	queryCreateChatsTable = `CREATE TABLE IF NOT EXISTS chats (
		id TEXT PRIMARY KEY,
		model_id TEXT NOT NULL,
		title TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`

	queryCreateMessagesTable = `CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		chat_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		FOREIGN KEY (chat_id) REFERENCES chats (id) ON DELETE CASCADE
	)`

	queryCreateDebatesTable = `CREATE TABLE IF NOT EXISTS debates (
		id TEXT PRIMARY KEY,
		prompt TEXT NOT NULL,
		winner_model_id TEXT,
		evaluation_reasoning TEXT,
		total_time_ms INTEGER NOT NULL,
		timestamp TEXT NOT NULL,
		responses TEXT NOT NULL
	)`

	queryCreateIndexMessagesChat = `CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages(chat_id)`
	queryCreateIndexChatsUpdated = `CREATE INDEX IF NOT EXISTS idx_chats_updated ON chats(updated_at)`
	queryCreateIndexDebatesStamp = `CREATE INDEX IF NOT EXISTS idx_debates_timestamp ON debates(timestamp)`

	queryInsertChat = `INSERT INTO chats (id, model_id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`

	queryInsertMessage = `INSERT INTO messages (id, chat_id, role, content, timestamp)
		VALUES (?, ?, ?, ?, ?)`

	queryTouchChat = `UPDATE chats SET updated_at = ? WHERE id = ?`

	querySelectChat = `SELECT id, model_id, title, created_at, updated_at
		FROM chats WHERE id = ?`

	querySelectMessages = `SELECT id, chat_id, role, content, timestamp
		FROM messages WHERE chat_id = ? ORDER BY timestamp ASC`

	queryInsertDebate = `INSERT INTO debates (id, prompt, winner_model_id, evaluation_reasoning, total_time_ms, timestamp, responses)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	querySelectDebate = `SELECT id, prompt, winner_model_id, evaluation_reasoning, total_time_ms, timestamp, responses
		FROM debates WHERE id = ?`

	queryHistoryUnion = `
		SELECT id, title, updated_at AS sort_date, 'chat' AS type, model_id
		FROM chats
		UNION ALL
		SELECT id, prompt AS title, timestamp AS sort_date, 'debate' AS type, NULL AS model_id
		FROM debates
		ORDER BY sort_date DESC`

	queryDeleteChat   = `DELETE FROM chats WHERE id = ?`
	queryDeleteDebate = `DELETE FROM debates WHERE id = ?`
)
