package database

// schemaStatements is the persisted schema. The nodes table is a single
// polymorphic index of every graph node; entity tables hang off it with
// ON DELETE CASCADE so removing the index row removes the entity, its
// incident edges, and its owned questions in one statement.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS id_counters (
		kind TEXT PRIMARY KEY,
		seq  BIGINT NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS nodes (
		id           TEXT PRIMARY KEY,
		kind         TEXT NOT NULL,
		workspace_id TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS nodes_workspace_idx ON nodes (workspace_id, kind)`,

	`CREATE TABLE IF NOT EXISTS lists (
		id           TEXT PRIMARY KEY REFERENCES nodes (id) ON DELETE CASCADE,
		workspace_id TEXT NOT NULL,
		title        TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS lists_workspace_title_idx ON lists (workspace_id, title)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id           TEXT PRIMARY KEY REFERENCES nodes (id) ON DELETE CASCADE,
		workspace_id TEXT NOT NULL,
		list_id      TEXT NOT NULL REFERENCES lists (id) ON DELETE CASCADE,
		title        TEXT NOT NULL,
		position     INTEGER NOT NULL,
		completed    BOOLEAN NOT NULL DEFAULT FALSE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS tasks_list_position_idx ON tasks (list_id, position)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS tasks_active_title_idx ON tasks (list_id, title) WHERE NOT completed`,

	`CREATE TABLE IF NOT EXISTS notes (
		id           TEXT PRIMARY KEY REFERENCES nodes (id) ON DELETE CASCADE,
		workspace_id TEXT NOT NULL,
		title        TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS notes_workspace_title_idx ON notes (workspace_id, title)`,

	`CREATE TABLE IF NOT EXISTS questions (
		id           TEXT PRIMARY KEY REFERENCES nodes (id) ON DELETE CASCADE,
		workspace_id TEXT NOT NULL,
		src_id       TEXT NOT NULL REFERENCES nodes (id) ON DELETE CASCADE,
		title        TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS questions_src_title_idx ON questions (workspace_id, src_id, title)`,
	`CREATE INDEX IF NOT EXISTS questions_src_idx ON questions (src_id)`,

	`CREATE TABLE IF NOT EXISTS edges (
		id           TEXT PRIMARY KEY,
		workspace_id TEXT NOT NULL,
		src_id       TEXT NOT NULL REFERENCES nodes (id) ON DELETE CASCADE,
		dst_id       TEXT NOT NULL REFERENCES nodes (id) ON DELETE CASCADE,
		description  TEXT NOT NULL DEFAULT '',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS edges_src_dst_idx ON edges (src_id, dst_id, workspace_id)`,
	`CREATE INDEX IF NOT EXISTS edges_workspace_idx ON edges (workspace_id)`,

	`CREATE TABLE IF NOT EXISTS reminders (
		id              TEXT PRIMARY KEY REFERENCES nodes (id) ON DELETE CASCADE,
		workspace_id    TEXT NOT NULL,
		message         TEXT NOT NULL,
		time_of_day     TEXT NOT NULL,
		timezone        TEXT NOT NULL,
		start_date      DATE NOT NULL,
		end_date        DATE,
		recurrence_type TEXT NOT NULL,
		weekly_days     INTEGER[],
		monthly_day     INTEGER,
		status          TEXT NOT NULL DEFAULT 'active',
		last_triggered  TIMESTAMPTZ,
		next_occurrence TIMESTAMPTZ NOT NULL,
		created_by      TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS reminders_due_idx ON reminders (next_occurrence) WHERE status = 'active'`,

	`CREATE TABLE IF NOT EXISTS reminder_announcements (
		id            TEXT PRIMARY KEY,
		workspace_id  TEXT NOT NULL,
		reminder_id   TEXT NOT NULL REFERENCES reminders (id) ON DELETE CASCADE,
		agent_id      TEXT NOT NULL,
		announce_at   TIMESTAMPTZ NOT NULL,
		delivered     BOOLEAN NOT NULL DEFAULT FALSE,
		delivered_at  TIMESTAMPTZ,
		missed_reason TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS announcements_agent_missed_idx ON reminder_announcements (workspace_id, agent_id) WHERE NOT delivered`,

	// Change events for the notification bus. The payload is only a trigger
	// to re-read, never the diff itself.
	`CREATE OR REPLACE FUNCTION notify_graph_change() RETURNS trigger AS $$
	DECLARE
		ws TEXT;
	BEGIN
		IF TG_OP = 'DELETE' THEN
			ws := OLD.workspace_id;
		ELSE
			ws := NEW.workspace_id;
		END IF;
		PERFORM pg_notify('graph_changes', json_build_object(
			'workspace_id', ws,
			'table_name', TG_TABLE_NAME,
			'operation', TG_OP
		)::text);
		RETURN NULL;
	END;
	$$ LANGUAGE plpgsql`,

	`DROP TRIGGER IF EXISTS lists_notify ON lists`,
	`CREATE TRIGGER lists_notify AFTER INSERT OR UPDATE OR DELETE ON lists
		FOR EACH ROW EXECUTE FUNCTION notify_graph_change()`,
	`DROP TRIGGER IF EXISTS tasks_notify ON tasks`,
	`CREATE TRIGGER tasks_notify AFTER INSERT OR UPDATE OR DELETE ON tasks
		FOR EACH ROW EXECUTE FUNCTION notify_graph_change()`,
	`DROP TRIGGER IF EXISTS notes_notify ON notes`,
	`CREATE TRIGGER notes_notify AFTER INSERT OR UPDATE OR DELETE ON notes
		FOR EACH ROW EXECUTE FUNCTION notify_graph_change()`,
	`DROP TRIGGER IF EXISTS questions_notify ON questions`,
	`CREATE TRIGGER questions_notify AFTER INSERT OR UPDATE OR DELETE ON questions
		FOR EACH ROW EXECUTE FUNCTION notify_graph_change()`,
	`DROP TRIGGER IF EXISTS edges_notify ON edges`,
	`CREATE TRIGGER edges_notify AFTER INSERT OR UPDATE OR DELETE ON edges
		FOR EACH ROW EXECUTE FUNCTION notify_graph_change()`,
}

// GraphChannel is the LISTEN/NOTIFY channel carrying graph change events
const GraphChannel = "graph_changes"
