package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	settingsdomain "github.com/smallbiznis/robobooks/internal/settings/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) settingsdomain.Repository {
	return &repository{db: db}
}

func (r *repository) FindByOrg(ctx context.Context, orgID snowflake.ID) (*settingsdomain.CompanySettings, error) {
	var settings settingsdomain.CompanySettings
	err := r.db.WithContext(ctx).Raw(
		`SELECT org_id, legal_name, gstin, state, default_tax_rate, created_at, updated_at
		 FROM company_settings
		 WHERE org_id = ?`,
		orgID,
	).Scan(&settings).Error
	if err != nil {
		return nil, err
	}
	if settings.OrgID == 0 {
		return nil, nil
	}
	settings.Stored = true
	return &settings, nil
}

// Upsert keeps created_at of an existing row.
func (r *repository) Upsert(ctx context.Context, settings *settingsdomain.CompanySettings) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "org_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"legal_name", "gstin", "state", "default_tax_rate", "updated_at"}),
	}).Create(settings).Error
}
