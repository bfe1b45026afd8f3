package quotetax

import "github.com/shopspring/decimal"

// State is the editable quote held by an editing session. It is only ever
// advanced through Apply, which always finishes with a full recompute.
type State struct {
	Items              []LineItem
	Discount           decimal.Decimal
	DiscountType       DiscountType
	AdditionalTax      AdditionalTax
	Adjustment         decimal.Decimal
	CompanyState       string
	PlaceOfSupplyState string

	Result Result
}

// Event is a single editor mutation.
type Event interface {
	apply(s *State)
}

// NewState returns an empty, already computed state for a seller state.
func NewState(companyState string) State {
	return Apply(State{
		CompanyState: companyState,
		DiscountType: DiscountTypePercentage,
	}, nil)
}

// Input returns the engine input described by the state.
func (s State) Input() Input {
	return Input{
		Items:              s.Items,
		Discount:           s.Discount,
		DiscountType:       s.DiscountType,
		AdditionalTax:      s.AdditionalTax,
		Adjustment:         s.Adjustment,
		CompanyState:       s.CompanyState,
		PlaceOfSupplyState: s.PlaceOfSupplyState,
	}
}

// Apply returns the state that follows prev after ev. prev is not modified.
// A nil event only recomputes.
func Apply(prev State, ev Event) State {
	next := prev
	next.Items = make([]LineItem, len(prev.Items))
	copy(next.Items, prev.Items)

	if ev != nil {
		ev.apply(&next)
	}

	next.Result = RecomputeAll(next.Input())
	// Resolved modes and derived fields become the stored values.
	next.Items = next.Result.Items
	return next
}

type AddItem struct {
	Item LineItem
}

func (e AddItem) apply(s *State) {
	s.Items = append(s.Items, e.Item)
}

type RemoveItem struct {
	Index int
}

func (e RemoveItem) apply(s *State) {
	if !s.hasItem(e.Index) {
		return
	}
	s.Items = append(s.Items[:e.Index], s.Items[e.Index+1:]...)
}

type SetItemQuantity struct {
	Index    int
	Quantity decimal.Decimal
}

func (e SetItemQuantity) apply(s *State) {
	if !s.hasItem(e.Index) {
		return
	}
	s.Items[e.Index].Quantity = e.Quantity
	s.Items[e.Index].AmountOverridden = false
}

type SetItemRate struct {
	Index int
	Rate  decimal.Decimal
}

func (e SetItemRate) apply(s *State) {
	if !s.hasItem(e.Index) {
		return
	}
	s.Items[e.Index].Rate = e.Rate
	s.Items[e.Index].AmountOverridden = false
}

// SetItemAmount overrides Quantity × Rate until quantity or rate change again.
type SetItemAmount struct {
	Index  int
	Amount decimal.Decimal
}

func (e SetItemAmount) apply(s *State) {
	if !s.hasItem(e.Index) {
		return
	}
	s.Items[e.Index].Amount = e.Amount
	s.Items[e.Index].AmountOverridden = true
}

type SetItemTaxMode struct {
	Index int
	Mode  TaxMode
}

func (e SetItemTaxMode) apply(s *State) {
	if !s.hasItem(e.Index) {
		return
	}
	item := &s.Items[e.Index]
	wasGST := item.TaxMode.IsGSTFamily()
	item.TaxMode = e.Mode
	// A line moving into GST starts from the default rate.
	if !wasGST && ParseTaxMode(string(e.Mode)).IsGSTFamily() {
		item.TaxRate = nil
	}
}

// SetItemTaxRate sets an explicit rate; nil restores the default.
type SetItemTaxRate struct {
	Index int
	Rate  *decimal.Decimal
}

func (e SetItemTaxRate) apply(s *State) {
	if !s.hasItem(e.Index) {
		return
	}
	s.Items[e.Index].TaxRate = e.Rate
}

type SetDiscount struct {
	Discount     decimal.Decimal
	DiscountType DiscountType
}

func (e SetDiscount) apply(s *State) {
	s.Discount = e.Discount
	s.DiscountType = e.DiscountType
}

type SetAdditionalTax struct {
	Type AdditionalTaxType
	Rate decimal.Decimal
}

func (e SetAdditionalTax) apply(s *State) {
	s.AdditionalTax = AdditionalTax{Type: e.Type, Rate: e.Rate}
}

type SetAdjustment struct {
	Adjustment decimal.Decimal
}

func (e SetAdjustment) apply(s *State) {
	s.Adjustment = e.Adjustment
}

// SetPlaceOfSupply may move every GST line between CGST/SGST and IGST.
type SetPlaceOfSupply struct {
	State string
}

func (e SetPlaceOfSupply) apply(s *State) {
	s.PlaceOfSupplyState = e.State
}

type SetCompanyState struct {
	State string
}

func (e SetCompanyState) apply(s *State) {
	s.CompanyState = e.State
}

func (s *State) hasItem(i int) bool {
	return i >= 0 && i < len(s.Items)
}
