package postgres

// Embedded migrations, applied in version order at startup.

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_assessments",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "index_assessments",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
	}
}

const migration001Up = `
CREATE TABLE IF NOT EXISTS assessments (
	id               UUID PRIMARY KEY,
	created_at       TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

	-- Input summary
	school           TEXT NOT NULL,
	sex              TEXT NOT NULL,
	age              SMALLINT NOT NULL CHECK (age BETWEEN 15 AND 22),
	g1               SMALLINT NOT NULL CHECK (g1 BETWEEN 0 AND 20),
	g2               SMALLINT NOT NULL CHECK (g2 BETWEEN 0 AND 20),
	failures         SMALLINT NOT NULL CHECK (failures BETWEEN 0 AND 4),
	absences         SMALLINT NOT NULL CHECK (absences BETWEEN 0 AND 93),

	-- Outcome
	risk_category        TEXT NOT NULL CHECK (risk_category IN ('High', 'Low', 'Medium')),
	estimated_grade      SMALLINT NOT NULL CHECK (estimated_grade BETWEEN 0 AND 20),
	confidence           DOUBLE PRECISION NOT NULL CHECK (confidence >= 0 AND confidence <= 1),
	attribution_fallback BOOLEAN NOT NULL DEFAULT FALSE,
	advice_fallback      BOOLEAN NOT NULL DEFAULT FALSE
);
`

const migration001Down = `
DROP TABLE IF EXISTS assessments;
`

const migration002Up = `
CREATE INDEX IF NOT EXISTS idx_assessments_created_at
	ON assessments (created_at DESC);

CREATE INDEX IF NOT EXISTS idx_assessments_risk_category
	ON assessments (risk_category);
`

const migration002Down = `
DROP INDEX IF EXISTS idx_assessments_risk_category;
DROP INDEX IF EXISTS idx_assessments_created_at;
`
