package migrations

func init() {
	Register(Migration{
		Timestamp:   "20260601-000000",
		Description: "Initial schema",
		Up: []string{
			// Chats - one conversation per thread-formatting session
			// user_id is an auth-service user ID (no FK constraint since users live there)
			`CREATE TABLE IF NOT EXISTS chats (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				title TEXT NOT NULL,
				platform TEXT NOT NULL DEFAULT 'twitter',
				tones_json TEXT NOT NULL DEFAULT '[]',
				use_emojis INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_chats_user_id ON chats(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_chats_updated_at ON chats(updated_at)`,

			// Chat messages - user input and generated threads
			// posts_json holds the generated posts for ai messages
			`CREATE TABLE IF NOT EXISTS chat_messages (
				id TEXT PRIMARY KEY,
				chat_id TEXT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
				type TEXT NOT NULL,
				content TEXT NOT NULL,
				posts_json TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_chat_messages_chat_id ON chat_messages(chat_id)`,

			// Usage records - one row per identity per calendar day
			// identity_key is either "user:<id>" or "device:<fingerprint>"
			`CREATE TABLE IF NOT EXISTS usage_records (
				identity_key TEXT NOT NULL,
				date TEXT NOT NULL,
				count INTEGER NOT NULL DEFAULT 0,
				user_id TEXT,
				device_id TEXT,
				updated_at TEXT NOT NULL,
				PRIMARY KEY (identity_key, date)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_usage_records_date ON usage_records(date)`,

			// Subscriptions - premium access windows
			`CREATE TABLE IF NOT EXISTS subscriptions (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				plan_type TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'active',
				amount_cents INTEGER NOT NULL DEFAULT 0,
				expires_at TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_subscriptions_user_id ON subscriptions(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_subscriptions_status ON subscriptions(status)`,

			// Payments - charges against subscriptions
			`CREATE TABLE IF NOT EXISTS payments (
				id TEXT PRIMARY KEY,
				subscription_id TEXT NOT NULL REFERENCES subscriptions(id) ON DELETE CASCADE,
				user_id TEXT NOT NULL,
				amount_cents INTEGER NOT NULL,
				currency TEXT NOT NULL DEFAULT 'usd',
				status TEXT NOT NULL,
				payment_method TEXT NOT NULL,
				transaction_id TEXT,
				created_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_payments_user_id ON payments(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_payments_subscription_id ON payments(subscription_id)`,
		},
	})
}
