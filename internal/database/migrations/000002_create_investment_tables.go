package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// CreateInvestmentTables creates products, investments, commissions, deposits
// and withdrawals
func CreateInvestmentTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_create_investment_tables",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS products (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					name VARCHAR(100) NOT NULL,
					slug VARCHAR(120) NOT NULL UNIQUE,
					price DECIMAL(20, 2) NOT NULL,
					daily_yield_rate DECIMAL(8, 5) NOT NULL,
					duration_days INTEGER NOT NULL,
					purchase_limit INTEGER DEFAULT 0,
					status VARCHAR(20) NOT NULL DEFAULT 'active',
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);
			`).Error; err != nil {
				return err
			}

			if err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS investments (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					user_id UUID NOT NULL REFERENCES users(id),
					product_id UUID NOT NULL REFERENCES products(id),
					amount DECIMAL(20, 2) NOT NULL,
					daily_yield DECIMAL(20, 2) NOT NULL,
					duration_days INTEGER NOT NULL,
					days_paid INTEGER NOT NULL DEFAULT 0,
					total_returned DECIMAL(20, 2) NOT NULL DEFAULT 0,
					last_yield_at TIMESTAMP WITH TIME ZONE,
					next_yield_at TIMESTAMP WITH TIME ZONE,
					reference VARCHAR(100) NOT NULL UNIQUE,
					status VARCHAR(20) NOT NULL DEFAULT 'pending',
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE INDEX idx_investments_user_id ON investments(user_id);
				CREATE INDEX idx_investments_status ON investments(status);
				CREATE INDEX idx_investments_next_yield_at ON investments(next_yield_at);
			`).Error; err != nil {
				return err
			}

			if err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS commissions (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					beneficiary_id UUID NOT NULL REFERENCES users(id),
					source_user_id UUID NOT NULL REFERENCES users(id),
					investment_id UUID NOT NULL REFERENCES investments(id),
					level INTEGER NOT NULL,
					percentage DECIMAL(8, 5) NOT NULL,
					amount DECIMAL(20, 2) NOT NULL,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE,
					UNIQUE(investment_id, level)
				);

				CREATE INDEX idx_commissions_beneficiary_id ON commissions(beneficiary_id);
				CREATE INDEX idx_commissions_created_at ON commissions(created_at);
			`).Error; err != nil {
				return err
			}

			if err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS deposits (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					user_id UUID NOT NULL REFERENCES users(id),
					method VARCHAR(20) NOT NULL,
					amount DECIMAL(20, 2) NOT NULL,
					reference VARCHAR(100) NOT NULL UNIQUE,
					provider_tx_id VARCHAR(191),
					pix_qr_code TEXT,
					crypto_tx_hash VARCHAR(120),
					status VARCHAR(20) NOT NULL DEFAULT 'pending',
					paid_at TIMESTAMP WITH TIME ZONE,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE INDEX idx_deposits_user_id ON deposits(user_id);
				CREATE INDEX idx_deposits_provider_tx_id ON deposits(provider_tx_id);
			`).Error; err != nil {
				return err
			}

			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS withdrawals (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					user_id UUID NOT NULL REFERENCES users(id),
					amount DECIMAL(20, 2) NOT NULL,
					method VARCHAR(20) NOT NULL,
					destination VARCHAR(191) NOT NULL,
					reference VARCHAR(100) NOT NULL UNIQUE,
					status VARCHAR(20) NOT NULL DEFAULT 'pending',
					processed_at TIMESTAMP WITH TIME ZONE,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE INDEX idx_withdrawals_user_id ON withdrawals(user_id);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			for _, table := range []string{"withdrawals", "deposits", "commissions", "investments", "products"} {
				if err := tx.Exec("DROP TABLE IF EXISTS " + table).Error; err != nil {
					return err
				}
			}
			return nil
		},
	}
}
