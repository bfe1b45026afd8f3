package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/robobooks/internal/audit/domain"
	"github.com/smallbiznis/robobooks/internal/clock"
	"github.com/smallbiznis/robobooks/internal/config"
	"github.com/smallbiznis/robobooks/internal/orgcontext"
	"github.com/smallbiznis/robobooks/internal/quotetax"
	settingsdomain "github.com/smallbiznis/robobooks/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var maxTaxRate = decimal.NewFromInt(100)

type Params struct {
	fx.In

	Log       *zap.Logger
	Clock     clock.Clock
	TaxConfig *config.TaxConfigHolder
	Repo      settingsdomain.Repository
	Audit     auditdomain.Service `optional:"true"`
}

type Service struct {
	log       *zap.Logger
	clock     clock.Clock
	taxConfig *config.TaxConfigHolder
	repo      settingsdomain.Repository
	audit     auditdomain.Service
}

func NewService(p Params) settingsdomain.Service {
	return &Service{
		log:       p.Log.Named("settings.service"),
		clock:     p.Clock,
		taxConfig: p.TaxConfig,
		repo:      p.Repo,
		audit:     p.Audit,
	}
}

// Get falls back to the tax config defaults until the organization saves its
// own profile.
func (s *Service) Get(ctx context.Context) (settingsdomain.CompanySettings, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return settingsdomain.CompanySettings{}, settingsdomain.ErrInvalidOrganization
	}

	stored, err := s.repo.FindByOrg(ctx, orgID)
	if err != nil {
		return settingsdomain.CompanySettings{}, err
	}
	if stored != nil {
		return *stored, nil
	}

	defaults := s.taxConfig.Get()
	return settingsdomain.CompanySettings{
		OrgID:          orgID,
		State:          defaults.CompanyState,
		DefaultTaxRate: defaults.DefaultRate,
	}, nil
}

func (s *Service) Upsert(ctx context.Context, req settingsdomain.UpsertRequest) (settingsdomain.CompanySettings, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return settingsdomain.CompanySettings{}, settingsdomain.ErrInvalidOrganization
	}

	gstin := quotetax.NormalizeGSTIN(req.GSTIN)
	if gstin != "" && !quotetax.ValidGSTIN(gstin) {
		return settingsdomain.CompanySettings{}, settingsdomain.ErrInvalidGSTIN
	}

	state := strings.TrimSpace(req.State)
	if state == "" && gstin != "" {
		state, _ = quotetax.StateFromGSTIN(gstin)
	}
	if state == "" {
		return settingsdomain.CompanySettings{}, settingsdomain.ErrInvalidState
	}
	// A GSTIN registered in another state cannot back this seller state.
	if gstin != "" {
		gstinCode, _ := quotetax.StateCodeFromGSTIN(gstin)
		if code, known := quotetax.StateCode(state); known && code != gstinCode {
			return settingsdomain.CompanySettings{}, settingsdomain.ErrInvalidGSTIN
		}
	}

	rate := s.taxConfig.Get().DefaultRate
	if req.DefaultTaxRate != nil {
		rate = *req.DefaultTaxRate
	}
	if rate.IsNegative() || rate.GreaterThan(maxTaxRate) {
		return settingsdomain.CompanySettings{}, settingsdomain.ErrInvalidTaxRate
	}

	now := s.clock.Now()
	record := &settingsdomain.CompanySettings{
		OrgID:          orgID,
		LegalName:      strings.TrimSpace(req.LegalName),
		GSTIN:          gstin,
		State:          state,
		DefaultTaxRate: rate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		s.log.Error("upsert company settings", zap.Error(err), zap.String("org_id", orgID.String()))
		return settingsdomain.CompanySettings{}, err
	}

	if s.audit != nil {
		err := s.audit.Record(ctx, auditdomain.Entry{
			Action:     "settings.tax.update",
			TargetType: "company_settings",
			TargetID:   orgID.String(),
			Metadata: map[string]any{
				"gstin":            gstin,
				"state":            state,
				"default_tax_rate": rate.String(),
			},
		})
		if err != nil {
			s.log.Warn("record audit log", zap.Error(err))
		}
	}

	return s.Get(ctx)
}
