package model

// LineItem is one row of a repair quotation, derived from a board while
// the quotation is being assembled. It is never persisted on its own.
type LineItem struct {
	BoardID   string
	ModuleNo  string
	RunningNo string

	// Issue is the single category picked for the row, as free text.
	Issue    string
	Quantity int
}

// QuotationMeta is the header information printed on every quotation page.
type QuotationMeta struct {
	QuotationID string
	ProjectName string
	ProjectCode string
	ModulesCode string

	// TotalRepairModules is entered by the user and may be blank or
	// non-numeric, in which case the item quantities are summed.
	TotalRepairModules string

	DateRequest string
	Pixel       string
}
