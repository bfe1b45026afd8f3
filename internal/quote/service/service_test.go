package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/robobooks/internal/clock"
	"github.com/smallbiznis/robobooks/internal/config"
	customerdomain "github.com/smallbiznis/robobooks/internal/customer/domain"
	customerrepository "github.com/smallbiznis/robobooks/internal/customer/repository"
	customerservice "github.com/smallbiznis/robobooks/internal/customer/service"
	"github.com/smallbiznis/robobooks/internal/orgcontext"
	"github.com/smallbiznis/robobooks/internal/providers/pdf"
	"github.com/smallbiznis/robobooks/internal/quote/domain"
	"github.com/smallbiznis/robobooks/internal/quote/repository"
	"github.com/smallbiznis/robobooks/internal/quotetax"
	settingsdomain "github.com/smallbiznis/robobooks/internal/settings/domain"
	settingsrepository "github.com/smallbiznis/robobooks/internal/settings/repository"
	settingsservice "github.com/smallbiznis/robobooks/internal/settings/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testNow = time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

type fakeLock struct {
	deny     bool
	acquired int
	released int
}

func (l *fakeLock) TryLockQuote(ctx context.Context, quoteID snowflake.ID) (string, bool, error) {
	if l.deny {
		return "", false, nil
	}
	l.acquired++
	return "token", true, nil
}

func (l *fakeLock) ReleaseQuote(ctx context.Context, quoteID snowflake.ID, token string) error {
	l.released++
	return nil
}

type fakePDF struct {
	doc pdf.QuoteDocument
	err error
}

func (p *fakePDF) GenerateQuote(ctx context.Context, data pdf.QuoteDocument) (io.Reader, error) {
	p.doc = data
	if p.err != nil {
		return nil, p.err
	}
	return strings.NewReader("%PDF-1.3"), nil
}

type testEnv struct {
	svc       domain.Service
	customers customerdomain.Service
	settings  settingsdomain.Service
	lock      *fakeLock
	pdf       *fakePDF
	ctx       context.Context
}

// sweepingRepo expires every open quote right after the first FindByID,
// standing in for a scheduler run that commits mid-request.
type sweepingRepo struct {
	domain.Repository
	swept int64
	done  bool
}

func (r *sweepingRepo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Quote, error) {
	quote, err := r.Repository.FindByID(ctx, db, orgID, id)
	if err != nil || r.done {
		return quote, err
	}
	r.done = true
	r.swept, err = r.Repository.ExpireDue(ctx, db, testNow.AddDate(1, 0, 0), testNow, 100)
	return quote, err
}

func setupEnv(t *testing.T, wrap ...func(domain.Repository) domain.Repository) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&customerdomain.Customer{},
		&settingsdomain.CompanySettings{},
		&domain.Quote{},
		&domain.QuoteItem{},
		&domain.QuoteCounter{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()
	clk := clock.NewFakeClock(testNow)
	taxConfig := config.NewStaticTaxConfigHolder(config.DefaultTaxConfig())

	customers := customerservice.New(customerservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: clk,
		Repo:  customerrepository.Provide(),
	})
	settings := settingsservice.NewService(settingsservice.Params{
		Log:       log,
		Clock:     clk,
		TaxConfig: taxConfig,
		Repo:      settingsrepository.NewRepository(db),
	})

	env := &testEnv{
		customers: customers,
		settings:  settings,
		lock:      &fakeLock{},
		pdf:       &fakePDF{},
		ctx:       orgcontext.WithOrgID(context.Background(), snowflake.ID(1001)),
	}
	repo := repository.Provide()
	for _, w := range wrap {
		repo = w(repo)
	}
	env.svc = New(Params{
		DB:        db,
		Log:       log,
		GenID:     node,
		Clock:     clk,
		Repo:      repo,
		Customers: customers,
		Settings:  settings,
		TaxConfig: taxConfig,
		Lock:      env.lock,
		PDF:       env.pdf,
	})
	return env
}

func (e *testEnv) seedSettings(t *testing.T, state string, rate *decimal.Decimal) {
	t.Helper()
	_, err := e.settings.Upsert(e.ctx, settingsdomain.UpsertRequest{LegalName: "RoboBooks Pvt Ltd", State: state, DefaultTaxRate: rate})
	require.NoError(t, err)
}

func (e *testEnv) seedCustomer(t *testing.T, billing, shipping string) customerdomain.Customer {
	t.Helper()
	customer, err := e.customers.Create(e.ctx, customerdomain.CreateCustomerRequest{
		Name:          "Acme Traders",
		Email:         "accounts@acme.in",
		BillingState:  billing,
		ShippingState: shipping,
	})
	require.NoError(t, err)
	return customer
}

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "%s: want %s, got %s", field, want, got.String())
}

func consultingInput(customerID string) domain.QuoteInput {
	return domain.QuoteInput{
		CustomerID:   customerID,
		Subject:      "Annual retainer",
		Items:        []domain.ItemInput{{Name: "Consulting", HSNCode: "998311", Quantity: d("1"), Rate: d("100000"), TaxMode: "GST"}},
		Discount:     d("10"),
		DiscountType: "percentage",
	}
}

func TestCreate_InterStateQuote(t *testing.T) {
	env := setupEnv(t)
	env.seedSettings(t, "Karnataka", nil)
	customer := env.seedCustomer(t, "Karnataka", "Maharashtra")

	quote, err := env.svc.Create(env.ctx, domain.CreateQuoteRequest{QuoteInput: consultingInput(customer.ID.String())})
	require.NoError(t, err)

	assert.Equal(t, "QT-000001", quote.QuoteNumber)
	assert.Equal(t, domain.StatusDraft, quote.Status)
	assert.Equal(t, int64(1), quote.Version)
	assert.Equal(t, "Maharashtra", quote.PlaceOfSupplyState)
	assert.False(t, quote.IsIntraState)
	assert.True(t, quote.QuoteDate.Equal(testNow))
	assert.True(t, quote.ExpiryDate.Equal(testNow.AddDate(0, 0, 30)))
	assertDecimal(t, "100000", quote.SubTotal, "subTotal")
	assertDecimal(t, "10000", quote.DiscountAmount, "discountAmount")
	assertDecimal(t, "16200", quote.IGSTTotal, "igstTotal")
	assertDecimal(t, "0", quote.CGSTTotal, "cgstTotal")
	assertDecimal(t, "106200", quote.Total, "total")

	stored, err := env.svc.GetByID(env.ctx, domain.GetQuoteRequest{ID: quote.ID.String()})
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "IGST", stored.Items[0].TaxMode)
	assertDecimal(t, "18", stored.Items[0].TaxRate, "stored rate")
	assertDecimal(t, "90000", stored.Items[0].TaxableAmount, "taxable")
	assertDecimal(t, "106200", stored.Total, "stored total")

	second, err := env.svc.Create(env.ctx, domain.CreateQuoteRequest{QuoteInput: consultingInput(customer.ID.String())})
	require.NoError(t, err)
	assert.Equal(t, "QT-000002", second.QuoteNumber)
}

func TestCreate_NumbersArePerOrganization(t *testing.T) {
	env := setupEnv(t)
	env.seedSettings(t, "Karnataka", nil)
	customer := env.seedCustomer(t, "Karnataka", "")

	_, err := env.svc.Create(env.ctx, domain.CreateQuoteRequest{QuoteInput: consultingInput(customer.ID.String())})
	require.NoError(t, err)

	other := *env
	other.ctx = orgcontext.WithOrgID(context.Background(), snowflake.ID(2002))
	other.seedSettings(t, "Goa", nil)
	otherCustomer := other.seedCustomer(t, "Goa", "")

	quote, err := other.svc.Create(other.ctx, domain.CreateQuoteRequest{QuoteInput: consultingInput(otherCustomer.ID.String())})
	require.NoError(t, err)
	assert.Equal(t, "QT-000001", quote.QuoteNumber)
}

func TestCreate_DefaultRateFromSettings(t *testing.T) {
	env := setupEnv(t)
	rate := d("12")
	env.seedSettings(t, "Karnataka", &rate)
	customer := env.seedCustomer(t, "karnataka ", "")

	quote, err := env.svc.Create(env.ctx, domain.CreateQuoteRequest{QuoteInput: domain.QuoteInput{
		CustomerID: customer.ID.String(),
		Items: []domain.ItemInput{
			{Name: "Widget", Quantity: d("2"), Rate: d("500"), TaxMode: "IGST"},
			{Name: "Freight", Quantity: d("1"), Rate: d("100"), TaxMode: "NO_GST"},
		},
	}})
	require.NoError(t, err)

	assert.True(t, quote.IsIntraState)
	require.Len(t, quote.Items, 2)
	assert.Equal(t, "GST", quote.Items[0].TaxMode)
	assertDecimal(t, "60", quote.CGSTTotal, "cgst")
	assertDecimal(t, "60", quote.SGSTTotal, "sgst")
	assertDecimal(t, "0", quote.Items[1].TaxRate, "no gst rate")
	assertDecimal(t, "1220", quote.Total, "total")
}

func TestCreate_Validation(t *testing.T) {
	env := setupEnv(t)
	env.seedSettings(t, "Karnataka", nil)
	customer := env.seedCustomer(t, "Karnataka", "")
	id := customer.ID.String()

	tests := []struct {
		name   string
		mutate func(*domain.QuoteInput)
		err    error
	}{
		{name: "no customer", mutate: func(in *domain.QuoteInput) { in.CustomerID = "" }, err: domain.ErrInvalidCustomer},
		{name: "unknown customer", mutate: func(in *domain.QuoteInput) { in.CustomerID = "999" }, err: domain.ErrInvalidCustomer},
		{name: "no items", mutate: func(in *domain.QuoteInput) { in.Items = nil }, err: domain.ErrInvalidItems},
		{name: "negative quantity", mutate: func(in *domain.QuoteInput) { in.Items[0].Quantity = d("-1") }, err: domain.ErrInvalidQuantity},
		{name: "negative rate", mutate: func(in *domain.QuoteInput) { in.Items[0].Rate = d("-5") }, err: domain.ErrInvalidRate},
		{name: "unknown tax mode", mutate: func(in *domain.QuoteInput) { in.Items[0].TaxMode = "VAT" }, err: domain.ErrInvalidTaxMode},
		{name: "tax rate above 100", mutate: func(in *domain.QuoteInput) { r := d("120"); in.Items[0].TaxRate = &r }, err: domain.ErrInvalidTaxRate},
		{name: "percentage above 100", mutate: func(in *domain.QuoteInput) { in.Discount = d("150") }, err: domain.ErrInvalidDiscount},
		{name: "unknown discount type", mutate: func(in *domain.QuoteInput) { in.DiscountType = "bogo" }, err: domain.ErrInvalidDiscountType},
		{name: "unknown additional tax", mutate: func(in *domain.QuoteInput) { in.AdditionalTaxType = "VAT" }, err: domain.ErrInvalidAdditionalTax},
		{name: "expiry before quote date", mutate: func(in *domain.QuoteInput) {
			expiry := testNow.AddDate(0, 0, -1)
			in.ExpiryDate = &expiry
		}, err: domain.ErrInvalidExpiryDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := consultingInput(id)
			tt.mutate(&in)
			_, err := env.svc.Create(env.ctx, domain.CreateQuoteRequest{QuoteInput: in})
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestCreate_RequiresCompanyState(t *testing.T) {
	env := setupEnv(t)
	customer := env.seedCustomer(t, "Karnataka", "")

	_, err := env.svc.Create(env.ctx, domain.CreateQuoteRequest{QuoteInput: consultingInput(customer.ID.String())})
	assert.ErrorIs(t, err, domain.ErrInvalidCompanyState)
}

func TestCreate_ClientTotalsMustMatch(t *testing.T) {
	env := setupEnv(t)
	env.seedSettings(t, "Karnataka", nil)
	customer := env.seedCustomer(t, "Karnataka", "")

	in := consultingInput(customer.ID.String())
	in.Totals = &quotetax.Totals{
		SubTotal:       d("100000"),
		DiscountAmount: d("10000"),
		CGSTTotal:      d("8100"),
		SGSTTotal:      d("8100"),
		TaxAmount:      d("16200"),
		Total:          d("106200.009"),
	}
	_, err := env.svc.Create(env.ctx, domain.CreateQuoteRequest{QuoteInput: in})
	require.NoError(t, err, "within one paisa")

	in.Totals.Total = d("106300")
	_, err = env.svc.Create(env.ctx, domain.CreateQuoteRequest{QuoteInput: in})
	assert.ErrorIs(t, err, domain.ErrInvalidTotals)
	assert.Contains(t, err.Error(), "total")
}

func TestUpdate_RecomputesAndBumpsVersion(t *testing.T) {
	env := setupEnv(t)
	env.seedSettings(t, "Karnataka", nil)
	customer := env.seedCustomer(t, "Karnataka", "Maharashtra")

	created, err := env.svc.Create(env.ctx, domain.CreateQuoteRequest{QuoteInput: consultingInput(customer.ID.String())})
	require.NoError(t, err)

	in := consultingInput("")
	in.Items[0].Quantity = d("2")
	in.AdditionalTaxType = "TDS"
	in.AdditionalTaxRate = d("10")
	version := int64(1)

	updated, err := env.svc.Update(env.ctx, domain.UpdateQuoteRequest{ID: created.ID.String(), ExpectedVersion: &version, QuoteInput: in})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, created.QuoteNumber, updated.QuoteNumber)
	assert.Equal(t, customer.ID, updated.CustomerID)
	assert.True(t, updated.ExpiryDate.Equal(created.ExpiryDate))
	assertDecimal(t, "180000", updated.Items[0].TaxableAmount, "taxable")
	assertDecimal(t, "18000", updated.AdditionalTaxAmount, "tds")
	assertDecimal(t, "194400", updated.Total, "total")
	assert.Equal(t, 1, env.lock.acquired)
	assert.Equal(t, 1, env.lock.released)

	stored, err := env.svc.GetByID(env.ctx, domain.GetQuoteRequest{ID: created.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Version)
	require.Len(t, stored.Items, 1)
	assertDecimal(t, "2", stored.Items[0].Quantity, "quantity")

	_, err = env.svc.Update(env.ctx, domain.UpdateQuoteRequest{ID: created.ID.String(), ExpectedVersion: &version, QuoteInput: in})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUpdate_LockedQuoteConflicts(t *testing.T) {
	env := setupEnv(t)
	env.seedSettings(t, "Karnataka", nil)
	customer := env.seedCustomer(t, "Karnataka", "")

	created, err := env.svc.Create(env.ctx, domain.CreateQuoteRequest{QuoteInput: consultingInput(customer.ID.String())})
	require.NoError(t, err)

	env.lock.deny = true
	_, err = env.svc.Update(env.ctx, domain.UpdateQuoteRequest{ID: created.ID.String(), QuoteInput: consultingInput("")})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Zero(t, env.lock.released)
}

func TestUpdate_NotFound(t *testing.T) {
	env := setupEnv(t)

	_, err := env.svc.Update(env.ctx, domain.UpdateQuoteRequest{ID: "123", QuoteInput: consultingInput("")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.svc.Update(env.ctx, domain.UpdateQuoteRequest{ID: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestUpdateStatus_Transitions(t *testing.T) {
	env := setupEnv(t)
	env.seedSettings(t, "Karnataka", nil)
	customer := env.seedCustomer(t, "Karnataka", "")

	created, err := env.svc.Create(env.ctx, domain.CreateQuoteRequest{QuoteInput: consultingInput(customer.ID.String())})
	require.NoError(t, err)
	id := created.ID.String()

	_, err = env.svc.UpdateStatus(env.ctx, domain.UpdateStatusRequest{ID: id, Status: "ACCEPTED"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)

	_, err = env.svc.UpdateStatus(env.ctx, domain.UpdateStatusRequest{ID: id, Status: "LOST"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	sent, err := env.svc.UpdateStatus(env.ctx, domain.UpdateStatusRequest{ID: id, Status: "sent"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSent, sent.Status)

	_, err = env.svc.Update(env.ctx, domain.UpdateQuoteRequest{ID: id, QuoteInput: consultingInput("")})
	require.NoError(t, err, "sent quotes stay editable")

	accepted, err := env.svc.UpdateStatus(env.ctx, domain.UpdateStatusRequest{ID: id, Status: "ACCEPTED"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, accepted.Status)

	_, err = env.svc.Update(env.ctx, domain.UpdateQuoteRequest{ID: id, QuoteInput: consultingInput("")})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	invoiced, err := env.svc.UpdateStatus(env.ctx, domain.UpdateStatusRequest{ID: id, Status: "INVOICED"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInvoiced, invoiced.Status)

	stored, err := env.svc.GetByID(env.ctx, domain.GetQuoteRequest{ID: id})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInvoiced, stored.Status)
}

func TestUpdateStatus_LosesToConcurrentExpiry(t *testing.T) {
	sweeper := &sweepingRepo{}
	env := setupEnv(t, func(repo domain.Repository) domain.Repository {
		sweeper.Repository = repo
		sweeper.done = true
		return sweeper
	})
	env.seedSettings(t, "Karnataka", nil)
	customer := env.seedCustomer(t, "Karnataka", "")

	created, err := env.svc.Create(env.ctx, domain.CreateQuoteRequest{QuoteInput: consultingInput(customer.ID.String())})
	require.NoError(t, err)

	sweeper.done = false
	_, err = env.svc.UpdateStatus(env.ctx, domain.UpdateStatusRequest{ID: created.ID.String(), Status: "SENT"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.EqualValues(t, 1, sweeper.swept)

	stored, err := env.svc.GetByID(env.ctx, domain.GetQuoteRequest{ID: created.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExpired, stored.Status)
	assert.EqualValues(t, 2, stored.Version)
}

func TestPreview(t *testing.T) {
	env := setupEnv(t)
	env.seedSettings(t, "Karnataka", nil)
	customer := env.seedCustomer(t, "Kerala", "")

	in := consultingInput(customer.ID.String())
	in.Items = append(in.Items, domain.ItemInput{Name: "Bad line", Quantity: d("-3"), Rate: d("10"), TaxMode: "GST"})

	result, err := env.svc.Preview(env.ctx, domain.PreviewRequest{QuoteInput: in})
	require.NoError(t, err)
	assert.Equal(t, "Kerala", result.PlaceOfSupplyState)
	assert.False(t, result.IsIntraState)
	require.Len(t, result.ModeOverrides, 2)
	assertDecimal(t, "0", result.Items[1].Amount, "coerced line")
	assertDecimal(t, "106200", result.Total, "total")

	result, err = env.svc.Preview(env.ctx, domain.PreviewRequest{QuoteInput: in, CompanyState: "Kerala"})
	require.NoError(t, err)
	assert.True(t, result.IsIntraState)
	assertDecimal(t, "8100", result.CGSTTotal, "cgst")

	noCustomer := consultingInput("")
	noCustomer.PlaceOfSupplyState = "Karnataka"
	result, err = env.svc.Preview(env.ctx, domain.PreviewRequest{QuoteInput: noCustomer})
	require.NoError(t, err)
	assert.True(t, result.IsIntraState)
	assert.Empty(t, result.ModeOverrides)

	_, err = env.svc.Preview(context.Background(), domain.PreviewRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
}

func TestList(t *testing.T) {
	env := setupEnv(t)
	env.seedSettings(t, "Karnataka", nil)
	first := env.seedCustomer(t, "Karnataka", "")
	second := env.seedCustomer(t, "Goa", "")

	var ids []snowflake.ID
	for _, customer := range []customerdomain.Customer{first, first, second} {
		quote, err := env.svc.Create(env.ctx, domain.CreateQuoteRequest{QuoteInput: consultingInput(customer.ID.String())})
		require.NoError(t, err)
		ids = append(ids, quote.ID)
	}
	_, err := env.svc.UpdateStatus(env.ctx, domain.UpdateStatusRequest{ID: ids[0].String(), Status: "SENT"})
	require.NoError(t, err)

	page, err := env.svc.List(env.ctx, domain.ListQuoteRequest{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page.Quotes, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, ids[2], page.Quotes[0].ID)
	assert.Len(t, page.Quotes[0].Items, 1)

	byCustomer, err := env.svc.List(env.ctx, domain.ListQuoteRequest{CustomerID: first.ID.String()})
	require.NoError(t, err)
	assert.Len(t, byCustomer.Quotes, 2)

	sent, err := env.svc.List(env.ctx, domain.ListQuoteRequest{Status: "sent"})
	require.NoError(t, err)
	require.Len(t, sent.Quotes, 1)
	assert.Equal(t, ids[0], sent.Quotes[0].ID)

	_, err = env.svc.List(env.ctx, domain.ListQuoteRequest{Status: "LOST"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestRenderPDF(t *testing.T) {
	env := setupEnv(t)
	env.seedSettings(t, "Karnataka", nil)
	customer := env.seedCustomer(t, "Karnataka", "Maharashtra")

	in := consultingInput(customer.ID.String())
	in.AdditionalTaxType = "TCS"
	in.AdditionalTaxRate = d("1")
	quote, err := env.svc.Create(env.ctx, domain.CreateQuoteRequest{QuoteInput: in})
	require.NoError(t, err)

	rendered, err := env.svc.RenderPDF(env.ctx, domain.GetQuoteRequest{ID: quote.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, "QT-000001.pdf", rendered.FileName)

	doc := env.pdf.doc
	assert.Equal(t, "RoboBooks Pvt Ltd", doc.SellerName)
	assert.Equal(t, "Acme Traders", doc.CustomerName)
	assert.Equal(t, "01 Apr 2024", doc.QuoteDate)
	assert.Equal(t, "107100.00", doc.Total)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, "IGST 18%", doc.Items[0].TaxLabel)

	labels := make([]string, 0, len(doc.Totals))
	for _, line := range doc.Totals {
		labels = append(labels, line.Label)
	}
	assert.Equal(t, []string{"Sub total", "Discount (10%)", "IGST", "TCS (1%)"}, labels)

	env.pdf.err = errors.New("renderer down")
	_, err = env.svc.RenderPDF(env.ctx, domain.GetQuoteRequest{ID: quote.ID.String()})
	assert.Error(t, err)
}
