package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// CreateUsersTable creates the users and ledger tables
func CreateUsersTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_users_table",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.Exec(`
				CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

				CREATE TABLE IF NOT EXISTS users (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					email VARCHAR(255) NOT NULL UNIQUE,
					username VARCHAR(50) UNIQUE,
					first_name VARCHAR(100),
					last_name VARCHAR(100),
					password_hash VARCHAR(255) NOT NULL,
					balance DECIMAL(20, 2) DEFAULT 0,
					commission_balance DECIMAL(20, 2) DEFAULT 0,
					referral_code VARCHAR(20) NOT NULL UNIQUE,
					referred_by UUID REFERENCES users(id),
					two_factor_secret VARCHAR(64),
					two_factor_enabled BOOLEAN DEFAULT FALSE,
					is_admin BOOLEAN DEFAULT FALSE,
					is_active BOOLEAN DEFAULT TRUE,
					last_login_at TIMESTAMP WITH TIME ZONE,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE INDEX idx_users_referral_code ON users(referral_code);
				CREATE INDEX idx_users_referred_by ON users(referred_by);
			`).Error; err != nil {
				return err
			}

			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS ledger_entries (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					user_id UUID NOT NULL REFERENCES users(id),
					type VARCHAR(50) NOT NULL,
					amount DECIMAL(20, 2) NOT NULL,
					reference VARCHAR(100),
					description TEXT,
					meta_data JSONB,
					balance_before DECIMAL(20, 2),
					balance_after DECIMAL(20, 2),
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE INDEX idx_ledger_entries_user_id ON ledger_entries(user_id);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			if err := tx.Exec("DROP TABLE IF EXISTS ledger_entries").Error; err != nil {
				return err
			}
			return tx.Exec("DROP TABLE IF EXISTS users").Error
		},
	}
}
