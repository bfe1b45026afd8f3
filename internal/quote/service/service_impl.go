package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/robobooks/internal/audit/domain"
	"github.com/smallbiznis/robobooks/internal/clock"
	"github.com/smallbiznis/robobooks/internal/config"
	customerdomain "github.com/smallbiznis/robobooks/internal/customer/domain"
	"github.com/smallbiznis/robobooks/internal/observability/logger"
	"github.com/smallbiznis/robobooks/internal/observability/metrics"
	"github.com/smallbiznis/robobooks/internal/orgcontext"
	"github.com/smallbiznis/robobooks/internal/providers/pdf"
	"github.com/smallbiznis/robobooks/internal/quote/domain"
	"github.com/smallbiznis/robobooks/internal/quotetax"
	settingsdomain "github.com/smallbiznis/robobooks/internal/settings/domain"
	"github.com/smallbiznis/robobooks/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SaveLocker serializes saves of one quote.
type SaveLocker interface {
	TryLockQuote(ctx context.Context, quoteID snowflake.ID) (string, bool, error)
	ReleaseQuote(ctx context.Context, quoteID snowflake.ID, token string) error
}

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	Customers customerdomain.Service
	Settings  settingsdomain.Service
	TaxConfig *config.TaxConfigHolder
	Lock      SaveLocker
	PDF       pdf.Provider
	Metrics   *metrics.Metrics   `optional:"true"`
	Audit     auditdomain.Service `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	customers customerdomain.Service
	settings  settingsdomain.Service
	taxConfig *config.TaxConfigHolder
	lock      SaveLocker
	pdf       pdf.Provider
	metrics   *metrics.Metrics
	audit     auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("quote.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		customers: p.Customers,
		settings:  p.Settings,
		taxConfig: p.TaxConfig,
		lock:      p.Lock,
		pdf:       p.PDF,
		metrics:   p.Metrics,
		audit:     p.Audit,
	}
}

// Preview recomputes an unsaved quote. It never persists and accepts
// incomplete input so the editor can call it on every keystroke.
func (s *Service) Preview(ctx context.Context, req domain.PreviewRequest) (quotetax.Result, error) {
	if _, ok := orgcontext.OrgIDFromContext(ctx); !ok {
		return quotetax.Result{}, domain.ErrInvalidOrganization
	}

	companySettings, err := s.settings.Get(ctx)
	if err != nil {
		return quotetax.Result{}, err
	}
	companyState := companySettings.State
	if state := strings.TrimSpace(req.CompanyState); state != "" {
		companyState = state
	}

	placeOfSupply := strings.TrimSpace(req.PlaceOfSupplyState)
	if placeOfSupply == "" && strings.TrimSpace(req.CustomerID) != "" {
		customer, err := s.loadCustomer(ctx, req.CustomerID)
		if err != nil {
			return quotetax.Result{}, err
		}
		placeOfSupply = customer.PlaceOfSupply()
	}

	input, err := engineInput(req.QuoteInput, companyState, placeOfSupply, companySettings.DefaultTaxRate, false)
	if err != nil {
		return quotetax.Result{}, err
	}
	return s.recompute(ctx, "preview", input), nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateQuoteRequest) (domain.Quote, error) {
	quote, err := s.create(ctx, req)
	s.metrics.RecordQuoteSave(ctx, "create", saveStatus(err))
	return quote, err
}

func (s *Service) create(ctx context.Context, req domain.CreateQuoteRequest) (domain.Quote, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return domain.Quote{}, domain.ErrInvalidOrganization
	}
	if strings.TrimSpace(req.CustomerID) == "" {
		return domain.Quote{}, domain.ErrInvalidCustomer
	}
	customer, err := s.loadCustomer(ctx, req.CustomerID)
	if err != nil {
		return domain.Quote{}, err
	}

	now := s.clock.Now()
	quote := domain.Quote{
		ID:         s.genID.Generate(),
		OrgID:      orgID,
		CustomerID: customer.ID,
		Status:     domain.StatusDraft,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.applyInput(ctx, &quote, customer, req.QuoteInput, "create"); err != nil {
		return domain.Quote{}, err
	}

	prefix := s.taxConfig.Get().QuoteNumberPrefix
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.repo.NextQuoteNumber(ctx, tx, orgID, now)
		if err != nil {
			return err
		}
		quote.QuoteNumber = formatQuoteNumber(prefix, number)
		return s.repo.Insert(ctx, tx, &quote)
	})
	if err != nil {
		s.log.Error("insert quote", zap.Error(err), zap.String("org_id", orgID.String()))
		return domain.Quote{}, err
	}

	logger.WithQuote(logger.WithContext(ctx, s.log), quote.ID.String(), quote.QuoteNumber).
		Info("quote created", zap.String("total", quote.Total.String()))
	s.recordAudit(ctx, "quote.create", quote.ID, map[string]any{
		"quote_number": quote.QuoteNumber,
		"customer_id":  quote.CustomerID.String(),
		"total":        quote.Total.String(),
	})
	return quote, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateQuoteRequest) (domain.Quote, error) {
	quote, err := s.update(ctx, req)
	s.metrics.RecordQuoteSave(ctx, "update", saveStatus(err))
	return quote, err
}

func (s *Service) update(ctx context.Context, req domain.UpdateQuoteRequest) (domain.Quote, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return domain.Quote{}, domain.ErrInvalidOrganization
	}
	id, err := parseID(req.ID)
	if err != nil {
		return domain.Quote{}, err
	}

	token, locked, err := s.lock.TryLockQuote(ctx, id)
	if err != nil {
		return domain.Quote{}, err
	}
	if !locked {
		s.metrics.RecordSaveLockConflict(ctx)
		return domain.Quote{}, domain.ErrConflict
	}
	defer func() {
		if err := s.lock.ReleaseQuote(context.WithoutCancel(ctx), id, token); err != nil {
			s.log.Warn("release quote lock", zap.Error(err), zap.String("quote_id", id.String()))
		}
	}()

	current, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Quote{}, err
	}
	if current == nil {
		return domain.Quote{}, domain.ErrNotFound
	}
	if !current.Status.Editable() {
		return domain.Quote{}, domain.ErrInvalidStatus
	}
	if req.ExpectedVersion != nil && *req.ExpectedVersion != current.Version {
		return domain.Quote{}, domain.ErrConflict
	}

	customerID := strings.TrimSpace(req.CustomerID)
	if customerID == "" {
		customerID = current.CustomerID.String()
	}
	customer, err := s.loadCustomer(ctx, customerID)
	if err != nil {
		return domain.Quote{}, err
	}

	quote := *current
	quote.CustomerID = customer.ID
	quote.UpdatedAt = s.clock.Now()
	input := req.QuoteInput
	if input.QuoteDate == nil {
		input.QuoteDate = &current.QuoteDate
	}
	if input.ExpiryDate == nil && input.QuoteDate.Equal(current.QuoteDate) {
		input.ExpiryDate = &current.ExpiryDate
	}
	if input.Metadata == nil {
		input.Metadata = current.Metadata
	}
	if err := s.applyInput(ctx, &quote, customer, input, "update"); err != nil {
		return domain.Quote{}, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updated, err := s.repo.UpdateVersioned(ctx, tx, &quote, current.Version)
		if err != nil {
			return err
		}
		if !updated {
			return domain.ErrConflict
		}
		return s.repo.ReplaceItems(ctx, tx, &quote)
	})
	if err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			s.log.Error("update quote", zap.Error(err), zap.String("quote_id", id.String()))
		}
		return domain.Quote{}, err
	}
	quote.Version = current.Version + 1

	logger.WithQuote(logger.WithContext(ctx, s.log), quote.ID.String(), quote.QuoteNumber).
		Info("quote updated", zap.Int64("version", quote.Version), zap.String("total", quote.Total.String()))
	s.recordAudit(ctx, "quote.update", quote.ID, map[string]any{
		"version": quote.Version,
		"total":   quote.Total.String(),
	})
	return quote, nil
}

func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (domain.Quote, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return domain.Quote{}, domain.ErrInvalidOrganization
	}
	id, err := parseID(req.ID)
	if err != nil {
		return domain.Quote{}, err
	}
	next, ok := domain.ParseStatus(req.Status)
	if !ok {
		return domain.Quote{}, domain.ErrInvalidStatus
	}

	current, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Quote{}, err
	}
	if current == nil {
		return domain.Quote{}, domain.ErrNotFound
	}
	if !current.Status.CanTransitionTo(next) {
		return domain.Quote{}, domain.ErrInvalidStatusTransition
	}

	now := s.clock.Now()
	updated, err := s.repo.UpdateStatus(ctx, s.db, orgID, id, next, current.Version, now)
	if err != nil {
		return domain.Quote{}, err
	}
	if !updated {
		return domain.Quote{}, domain.ErrConflict
	}

	logger.WithQuote(logger.WithContext(ctx, s.log), current.ID.String(), current.QuoteNumber).
		Info("quote status changed", zap.String("from", string(current.Status)), zap.String("to", string(next)))
	s.recordAudit(ctx, "quote.status", current.ID, map[string]any{
		"from": string(current.Status),
		"to":   string(next),
	})

	current.Status = next
	current.Version++
	current.UpdatedAt = now
	return *current, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetQuoteRequest) (domain.Quote, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return domain.Quote{}, domain.ErrInvalidOrganization
	}
	id, err := parseID(req.ID)
	if err != nil {
		return domain.Quote{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Quote{}, err
	}
	if item == nil {
		return domain.Quote{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListQuoteRequest) (domain.ListQuoteResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return domain.ListQuoteResponse{}, domain.ErrInvalidOrganization
	}

	filter := domain.ListQuoteFilter{
		QuoteDateFrom: req.QuoteDateFrom,
		QuoteDateTo:   req.QuoteDateTo,
	}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		status, ok := domain.ParseStatus(raw)
		if !ok {
			return domain.ListQuoteResponse{}, domain.ErrInvalidStatus
		}
		filter.Status = status
	}
	if raw := strings.TrimSpace(req.CustomerID); raw != "" {
		customerID, err := snowflake.ParseString(raw)
		if err != nil || customerID == 0 {
			return domain.ListQuoteResponse{}, domain.ErrInvalidCustomer
		}
		filter.CustomerID = customerID
	}

	page := pagination.Pagination{PageToken: req.PageToken, PageSize: int(req.PageSize)}
	items, err := s.repo.List(ctx, s.db, orgID, filter, page)
	if err != nil {
		return domain.ListQuoteResponse{}, err
	}

	pageSize := page.Size()
	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(quote *domain.Quote) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: quote.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})
	if len(items) > pageSize {
		items = items[:pageSize]
	}

	ids := make([]snowflake.ID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	lines, err := s.repo.ListItems(ctx, s.db, orgID, ids)
	if err != nil {
		return domain.ListQuoteResponse{}, err
	}
	byQuote := make(map[snowflake.ID][]domain.QuoteItem, len(items))
	for _, line := range lines {
		byQuote[line.QuoteID] = append(byQuote[line.QuoteID], line)
	}

	quotes := make([]domain.Quote, 0, len(items))
	for _, item := range items {
		item.Items = byQuote[item.ID]
		quotes = append(quotes, *item)
	}

	return domain.ListQuoteResponse{PageInfo: *pageInfo, Quotes: quotes}, nil
}

// applyInput validates the payload, recomputes it and writes every editable
// and derived field onto quote.
func (s *Service) applyInput(ctx context.Context, quote *domain.Quote, customer customerdomain.Customer, in domain.QuoteInput, operation string) error {
	companySettings, err := s.settings.Get(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(companySettings.State) == "" {
		return domain.ErrInvalidCompanyState
	}

	placeOfSupply := strings.TrimSpace(in.PlaceOfSupplyState)
	if placeOfSupply == "" {
		placeOfSupply = customer.PlaceOfSupply()
	}

	input, err := engineInput(in, companySettings.State, placeOfSupply, companySettings.DefaultTaxRate, true)
	if err != nil {
		return err
	}
	result := s.recompute(ctx, operation, input)
	if field, err := checkTotals(in.Totals, result.Totals); err != nil {
		s.metrics.RecordTotalsMismatch(ctx, field)
		return err
	}

	quoteDate := quote.CreatedAt
	if in.QuoteDate != nil {
		quoteDate = in.QuoteDate.UTC()
	}
	expiryDate := quoteDate.AddDate(0, 0, s.taxConfig.Get().QuoteValidityDays)
	if in.ExpiryDate != nil {
		expiryDate = in.ExpiryDate.UTC()
	}
	if expiryDate.Before(quoteDate) {
		return domain.ErrInvalidExpiryDate
	}

	metadata := datatypes.JSONMap{}
	for k, v := range in.Metadata {
		metadata[k] = v
	}

	quote.ReferenceNumber = strings.TrimSpace(in.ReferenceNumber)
	quote.QuoteDate = quoteDate
	quote.ExpiryDate = expiryDate
	quote.Subject = strings.TrimSpace(in.Subject)
	quote.Salesperson = strings.TrimSpace(in.Salesperson)
	quote.CustomerNotes = strings.TrimSpace(in.CustomerNotes)
	quote.TermsAndConditions = strings.TrimSpace(in.TermsAndConditions)
	quote.CompanyState = input.CompanyState
	quote.Discount = input.Discount
	quote.DiscountType = string(input.DiscountType)
	quote.AdditionalTaxType = string(input.AdditionalTax.Type)
	quote.AdditionalTaxRate = input.AdditionalTax.Rate
	quote.Adjustment = input.Adjustment
	quote.Metadata = metadata
	quote.ApplyResult(result)

	for i := range quote.Items {
		quote.Items[i].ID = s.genID.Generate()
		quote.Items[i].CreatedAt = quote.UpdatedAt
	}
	return nil
}

func (s *Service) recompute(ctx context.Context, operation string, input quotetax.Input) quotetax.Result {
	started := time.Now()
	result := quotetax.RecomputeAll(input)
	s.metrics.RecordRecompute(ctx, operation, result.IsIntraState, time.Since(started))
	if n := len(result.ModeOverrides); n > 0 {
		s.metrics.RecordModeOverrides(ctx, n)
		logger.WithContext(ctx, s.log).Debug("tax mode overridden by place of supply",
			zap.String("operation", operation),
			zap.Int("lines", n),
			zap.String("place_of_supply", result.PlaceOfSupplyState),
		)
	}
	return result
}

// recordAudit never fails the caller; the quote is already committed.
func (s *Service) recordAudit(ctx context.Context, action string, quoteID snowflake.ID, metadata map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, auditdomain.Entry{
		Action:     action,
		TargetType: "quote",
		TargetID:   quoteID.String(),
		Metadata:   metadata,
	})
	if err != nil {
		s.log.Warn("record audit log", zap.Error(err), zap.String("action", action), zap.String("quote_id", quoteID.String()))
	}
}

func (s *Service) loadCustomer(ctx context.Context, id string) (customerdomain.Customer, error) {
	customer, err := s.customers.GetByID(ctx, customerdomain.GetCustomerRequest{ID: id})
	if err != nil {
		if errors.Is(err, customerdomain.ErrNotFound) || errors.Is(err, customerdomain.ErrInvalidID) {
			return customerdomain.Customer{}, domain.ErrInvalidCustomer
		}
		return customerdomain.Customer{}, err
	}
	return customer, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func formatQuoteNumber(prefix string, number int64) string {
	return fmt.Sprintf("%s%06d", prefix, number)
}

func saveStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
