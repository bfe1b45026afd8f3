package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/robobooks/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, quote *Quote) error
	// UpdateVersioned writes the quote only while its version still equals
	// expectedVersion and reports whether a row changed.
	UpdateVersioned(ctx context.Context, db *gorm.DB, quote *Quote, expectedVersion int64) (bool, error)
	// UpdateStatus reports false when the stored version no longer equals
	// expectedVersion.
	UpdateStatus(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, status Status, expectedVersion int64, updatedAt time.Time) (bool, error)
	ReplaceItems(ctx context.Context, db *gorm.DB, quote *Quote) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Quote, error)
	ListItems(ctx context.Context, db *gorm.DB, orgID snowflake.ID, quoteIDs []snowflake.ID) ([]QuoteItem, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListQuoteFilter, page pagination.Pagination) ([]*Quote, error)
	// ExpireDue moves up to limit DRAFT or SENT quotes whose expiry date is
	// before cutoff to EXPIRED and returns how many changed.
	ExpireDue(ctx context.Context, db *gorm.DB, cutoff, updatedAt time.Time, limit int) (int64, error)
	NextQuoteNumber(ctx context.Context, db *gorm.DB, orgID snowflake.ID, now time.Time) (int64, error)
}
