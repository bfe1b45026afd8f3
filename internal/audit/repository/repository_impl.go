package repository

import (
	"context"
	"strings"

	"github.com/smallbiznis/robobooks/internal/audit/domain"
	"github.com/smallbiznis/robobooks/pkg/db/option"
	"github.com/smallbiznis/robobooks/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// Insert is append-only. Audit rows are never updated.
func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.AuditLog) error {
	if entry == nil {
		return nil
	}
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]*domain.AuditLog, error) {
	stmt := db.WithContext(ctx).Model(&domain.AuditLog{}).
		Where("org_id = ?", filter.OrgID).
		Scopes(
			columnEquals("action", filter.Action),
			columnEquals("target_type", filter.TargetType),
			columnEquals("target_id", filter.TargetID),
			createdWithin(filter),
		)

	var logs []*domain.AuditLog
	if err := option.ApplyPagination(page).Apply(stmt).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func columnEquals(column, value string) func(*gorm.DB) *gorm.DB {
	value = strings.TrimSpace(value)
	return func(stmt *gorm.DB) *gorm.DB {
		if value == "" {
			return stmt
		}
		return stmt.Where(column+" = ?", value)
	}
}

func createdWithin(filter domain.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(stmt *gorm.DB) *gorm.DB {
		if filter.StartAt != nil {
			stmt = stmt.Where("created_at >= ?", filter.StartAt.UTC())
		}
		if filter.EndAt != nil {
			stmt = stmt.Where("created_at <= ?", filter.EndAt.UTC())
		}
		return stmt
	}
}
