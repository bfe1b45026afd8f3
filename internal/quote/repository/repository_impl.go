package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/robobooks/internal/quote/domain"
	"github.com/smallbiznis/robobooks/pkg/db/option"
	"github.com/smallbiznis/robobooks/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const quoteColumns = `id, org_id, customer_id, quote_number, reference_number, quote_date, expiry_date, status,
	subject, salesperson, customer_notes, terms_and_conditions,
	company_state, place_of_supply_state, is_intra_state,
	discount, discount_type, additional_tax_type, additional_tax_rate, adjustment,
	sub_total, discount_amount, cgst_total, sgst_total, igst_total, tax_amount, additional_tax_amount, total,
	metadata, version, created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, quote *domain.Quote) error {
	err := db.WithContext(ctx).Exec(
		`INSERT INTO quotes (`+quoteColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		quote.ID,
		quote.OrgID,
		quote.CustomerID,
		quote.QuoteNumber,
		quote.ReferenceNumber,
		quote.QuoteDate,
		quote.ExpiryDate,
		quote.Status,
		quote.Subject,
		quote.Salesperson,
		quote.CustomerNotes,
		quote.TermsAndConditions,
		quote.CompanyState,
		quote.PlaceOfSupplyState,
		quote.IsIntraState,
		quote.Discount,
		quote.DiscountType,
		quote.AdditionalTaxType,
		quote.AdditionalTaxRate,
		quote.Adjustment,
		quote.SubTotal,
		quote.DiscountAmount,
		quote.CGSTTotal,
		quote.SGSTTotal,
		quote.IGSTTotal,
		quote.TaxAmount,
		quote.AdditionalTaxAmount,
		quote.Total,
		quote.Metadata,
		quote.Version,
		quote.CreatedAt,
		quote.UpdatedAt,
	).Error
	if err != nil {
		return err
	}
	return r.insertItems(ctx, db, quote.Items)
}

func (r *repo) UpdateVersioned(ctx context.Context, db *gorm.DB, quote *domain.Quote, expectedVersion int64) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE quotes
		 SET customer_id = ?, reference_number = ?, quote_date = ?, expiry_date = ?,
		     subject = ?, salesperson = ?, customer_notes = ?, terms_and_conditions = ?,
		     company_state = ?, place_of_supply_state = ?, is_intra_state = ?,
		     discount = ?, discount_type = ?, additional_tax_type = ?, additional_tax_rate = ?, adjustment = ?,
		     sub_total = ?, discount_amount = ?, cgst_total = ?, sgst_total = ?, igst_total = ?,
		     tax_amount = ?, additional_tax_amount = ?, total = ?,
		     metadata = ?, version = version + 1, updated_at = ?
		 WHERE org_id = ? AND id = ? AND version = ?`,
		quote.CustomerID,
		quote.ReferenceNumber,
		quote.QuoteDate,
		quote.ExpiryDate,
		quote.Subject,
		quote.Salesperson,
		quote.CustomerNotes,
		quote.TermsAndConditions,
		quote.CompanyState,
		quote.PlaceOfSupplyState,
		quote.IsIntraState,
		quote.Discount,
		quote.DiscountType,
		quote.AdditionalTaxType,
		quote.AdditionalTaxRate,
		quote.Adjustment,
		quote.SubTotal,
		quote.DiscountAmount,
		quote.CGSTTotal,
		quote.SGSTTotal,
		quote.IGSTTotal,
		quote.TaxAmount,
		quote.AdditionalTaxAmount,
		quote.Total,
		quote.Metadata,
		quote.UpdatedAt,
		quote.OrgID,
		quote.ID,
		expectedVersion,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateStatus applies the transition only while the stored version still
// equals expectedVersion.
func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, status domain.Status, expectedVersion int64, updatedAt time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE quotes
		 SET status = ?, version = version + 1, updated_at = ?
		 WHERE org_id = ? AND id = ? AND version = ?`,
		status,
		updatedAt,
		orgID,
		id,
		expectedVersion,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ExpireDue picks the batch first and updates by id list; mysql rejects a
// LIMIT subquery over the table being updated.
func (r *repo) ExpireDue(ctx context.Context, db *gorm.DB, cutoff, updatedAt time.Time, limit int) (int64, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).Raw(
		`SELECT id FROM quotes
		 WHERE status IN (?, ?) AND expiry_date < ?
		 ORDER BY expiry_date ASC, id ASC
		 LIMIT ?`,
		domain.StatusDraft,
		domain.StatusSent,
		cutoff,
		limit,
	).Scan(&ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	res := db.WithContext(ctx).Exec(
		`UPDATE quotes
		 SET status = ?, version = version + 1, updated_at = ?
		 WHERE id IN ? AND status IN (?, ?)`,
		domain.StatusExpired,
		updatedAt,
		ids,
		domain.StatusDraft,
		domain.StatusSent,
	)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// ReplaceItems drops every stored line of the quote and writes quote.Items.
func (r *repo) ReplaceItems(ctx context.Context, db *gorm.DB, quote *domain.Quote) error {
	err := db.WithContext(ctx).Exec(
		`DELETE FROM quote_items WHERE org_id = ? AND quote_id = ?`,
		quote.OrgID,
		quote.ID,
	).Error
	if err != nil {
		return err
	}
	return r.insertItems(ctx, db, quote.Items)
}

func (r *repo) insertItems(ctx context.Context, db *gorm.DB, items []domain.QuoteItem) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&items).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Quote, error) {
	var quote domain.Quote
	err := db.WithContext(ctx).Raw(
		`SELECT `+quoteColumns+`
		 FROM quotes WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&quote).Error
	if err != nil {
		return nil, err
	}
	if quote.ID == 0 {
		return nil, nil
	}

	items, err := r.ListItems(ctx, db, orgID, []snowflake.ID{quote.ID})
	if err != nil {
		return nil, err
	}
	quote.Items = items
	return &quote, nil
}

func (r *repo) ListItems(ctx context.Context, db *gorm.DB, orgID snowflake.ID, quoteIDs []snowflake.ID) ([]domain.QuoteItem, error) {
	if len(quoteIDs) == 0 {
		return nil, nil
	}
	var items []domain.QuoteItem
	err := db.WithContext(ctx).
		Where("org_id = ? AND quote_id IN ?", orgID, quoteIDs).
		Order("quote_id, position").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListQuoteFilter, page pagination.Pagination) ([]*domain.Quote, error) {
	var quotes []*domain.Quote
	stmt := db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("org_id = ?", orgID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != 0 {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.QuoteDateFrom != nil {
		stmt = stmt.Where("quote_date >= ?", *filter.QuoteDateFrom)
	}
	if filter.QuoteDateTo != nil {
		stmt = stmt.Where("quote_date <= ?", *filter.QuoteDateTo)
	}
	if err := option.ApplyPagination(page).Apply(stmt).Find(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}

// NextQuoteNumber allocates the next number inside the caller's transaction.
// The counter row stays locked until that transaction ends.
func (r *repo) NextQuoteNumber(ctx context.Context, db *gorm.DB, orgID snowflake.ID, now time.Time) (int64, error) {
	counter := domain.QuoteCounter{OrgID: orgID, LastNumber: 1, UpdatedAt: now}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "org_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"last_number": gorm.Expr("quote_counters.last_number + 1"),
			"updated_at":  now,
		}),
	}).Create(&counter).Error
	if err != nil {
		return 0, err
	}

	var number int64
	err = db.WithContext(ctx).Raw(
		`SELECT last_number FROM quote_counters WHERE org_id = ?`,
		orgID,
	).Scan(&number).Error
	if err != nil {
		return 0, err
	}
	return number, nil
}
