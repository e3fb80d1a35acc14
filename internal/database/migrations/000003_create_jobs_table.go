package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// CreateJobsTable creates the persisted background job table
func CreateJobsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000003_create_jobs_table",
		Migrate: func(tx *gorm.DB) error {
			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS jobs (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					type VARCHAR(100) NOT NULL,
					payload JSONB,
					status VARCHAR(20) NOT NULL DEFAULT 'pending',
					retry_count INTEGER DEFAULT 0,
					max_retries INTEGER DEFAULT 3,
					next_retry TIMESTAMP WITH TIME ZONE,
					error TEXT,
					result JSONB,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
				);

				CREATE INDEX idx_jobs_status ON jobs(status);
				CREATE INDEX idx_jobs_type ON jobs(type);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS jobs").Error
		},
	}
}
