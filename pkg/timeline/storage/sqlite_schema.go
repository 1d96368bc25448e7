package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the policy database schema.
const Schema = `
-- Retention policies
CREATE TABLE IF NOT EXISTS policies (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    recurrence_rule TEXT NOT NULL,
    retention INTEGER NOT NULL CHECK (retention >= 0),
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

-- Policy to volume attachments
CREATE TABLE IF NOT EXISTS attachments (
    policy_id INTEGER NOT NULL REFERENCES policies(id),
    volume_id TEXT NOT NULL,
    attached_at TIMESTAMP NOT NULL,
    PRIMARY KEY (policy_id, volume_id)
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_attachments_volume_id ON attachments(volume_id);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const (
	insertPolicy = `
INSERT INTO policies (name, recurrence_rule, retention, created_at, updated_at)
VALUES (?, ?, ?, ?, ?);
`
	updatePolicy = `
UPDATE policies SET name = ?, recurrence_rule = ?, retention = ?, updated_at = ?
WHERE id = ?;
`
	deleteDetachedPolicy = `
DELETE FROM policies
WHERE id = ? AND NOT EXISTS (SELECT 1 FROM attachments WHERE policy_id = ?);
`

	policyExists = `SELECT 1 FROM policies WHERE id = ?;`

	countAttachments = `SELECT COUNT(*) FROM attachments WHERE policy_id = ?;`

	insertAttachment = `
INSERT INTO attachments (policy_id, volume_id, attached_at)
VALUES (?, ?, ?)
ON CONFLICT(policy_id, volume_id) DO NOTHING;
`
	deleteAttachment = `DELETE FROM attachments WHERE policy_id = ? AND volume_id = ?;`

	selectAttached = `
SELECT p.id, p.name, p.recurrence_rule, p.retention
FROM policies p
JOIN attachments a ON a.policy_id = p.id
WHERE a.volume_id = ?
ORDER BY p.id;
`
	selectPolicies = `
SELECT id, name, recurrence_rule, retention FROM policies ORDER BY id;
`
)
