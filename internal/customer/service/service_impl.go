package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/robobooks/internal/audit/domain"
	"github.com/smallbiznis/robobooks/internal/clock"
	"github.com/smallbiznis/robobooks/internal/customer/domain"
	"github.com/smallbiznis/robobooks/internal/orgcontext"
	"github.com/smallbiznis/robobooks/internal/quotetax"
	"github.com/smallbiznis/robobooks/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultCurrency = "INR"

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
	Audit auditdomain.Service `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
	audit auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		audit: p.Audit,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return domain.Customer{}, domain.ErrInvalidOrganization
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Customer{}, domain.ErrInvalidName
	}

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return domain.Customer{}, err
	}

	gstin, err := normalizeGSTIN(req.GSTIN)
	if err != nil {
		return domain.Customer{}, err
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	if len(currency) != 3 {
		return domain.Customer{}, domain.ErrInvalidCurrency
	}

	metadata := datatypes.JSONMap{}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	now := s.clock.Now()
	customer := domain.Customer{
		ID:            s.genID.Generate(),
		OrgID:         orgID,
		Name:          name,
		Email:         email,
		Phone:         strings.TrimSpace(req.Phone),
		GSTIN:         gstin,
		BillingState:  strings.TrimSpace(req.BillingState),
		ShippingState: strings.TrimSpace(req.ShippingState),
		Currency:      currency,
		Metadata:      metadata,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, &customer); err != nil {
		s.log.Error("insert customer", zap.Error(err))
		return domain.Customer{}, err
	}

	s.recordAudit(ctx, "customer.create", customer)
	return customer, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateCustomerRequest) (domain.Customer, error) {
	current, err := s.GetByID(ctx, domain.GetCustomerRequest{ID: req.ID})
	if err != nil {
		return domain.Customer{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Customer{}, domain.ErrInvalidName
		}
		current.Name = name
	}
	if req.Email != nil {
		email, err := normalizeEmail(*req.Email)
		if err != nil {
			return domain.Customer{}, err
		}
		current.Email = email
	}
	if req.Phone != nil {
		current.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.GSTIN != nil {
		gstin, err := normalizeGSTIN(*req.GSTIN)
		if err != nil {
			return domain.Customer{}, err
		}
		current.GSTIN = gstin
	}
	if req.BillingState != nil {
		current.BillingState = strings.TrimSpace(*req.BillingState)
	}
	if req.ShippingState != nil {
		current.ShippingState = strings.TrimSpace(*req.ShippingState)
	}
	if req.Metadata != nil {
		if current.Metadata == nil {
			current.Metadata = datatypes.JSONMap{}
		}
		for k, v := range req.Metadata {
			current.Metadata[k] = v
		}
	}
	current.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, &current); err != nil {
		s.log.Error("update customer", zap.Error(err), zap.String("customer_id", current.ID.String()))
		return domain.Customer{}, err
	}
	s.recordAudit(ctx, "customer.update", current)
	return current, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomerRequest) (domain.ListCustomerResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return domain.ListCustomerResponse{}, domain.ErrInvalidOrganization
	}

	filter := domain.ListCustomerFilter{
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.TrimSpace(req.Email),
		GSTIN:       quotetax.NormalizeGSTIN(req.GSTIN),
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
	}

	page := pagination.Pagination{PageToken: req.PageToken, PageSize: int(req.PageSize)}
	items, err := s.repo.List(ctx, s.db, orgID, filter, page)
	if err != nil {
		return domain.ListCustomerResponse{}, err
	}

	pageSize := page.Size()
	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(customer *domain.Customer) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: customer.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})
	if len(items) > pageSize {
		items = items[:pageSize]
	}

	customers := make([]domain.Customer, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		customers = append(customers, *item)
	}

	return domain.ListCustomerResponse{PageInfo: *pageInfo, Customers: customers}, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetCustomerRequest) (domain.Customer, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return domain.Customer{}, domain.ErrInvalidOrganization
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Customer{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if item == nil {
		return domain.Customer{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" || !strings.Contains(email, "@") {
		return "", domain.ErrInvalidEmail
	}
	return email, nil
}

// normalizeGSTIN accepts an empty value for unregistered buyers.
func normalizeGSTIN(raw string) (string, error) {
	gstin := quotetax.NormalizeGSTIN(raw)
	if gstin == "" {
		return "", nil
	}
	if !quotetax.ValidGSTIN(gstin) {
		return "", domain.ErrInvalidGSTIN
	}
	return gstin, nil
}

func (s *Service) recordAudit(ctx context.Context, action string, customer domain.Customer) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, auditdomain.Entry{
		Action:     action,
		TargetType: "customer",
		TargetID:   customer.ID.String(),
		Metadata: map[string]any{
			"name":  customer.Name,
			"email": customer.Email,
			"gstin": customer.GSTIN,
		},
	})
	if err != nil {
		s.log.Warn("record audit log", zap.Error(err), zap.String("action", action))
	}
}
