package domain

// TaxBreakdown is the result of pricing a subtotal. All values are minor
// currency units (cents) to avoid floating-point money arithmetic.
// Total == Subtotal + Tax always holds. Never persisted; recomputed whenever
// the amount or billing address changes.
type TaxBreakdown struct {
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

// Jurisdiction identifies where a booking is taxed. ServiceAddress wins over
// the billing postal code: for a mobile, location-performed service the
// taxable jurisdiction is where the work happens, not where the payer lives.
type Jurisdiction struct {
	PostalCode     string `json:"zip_code"`
	Region         string `json:"state,omitempty"`
	ServiceAddress string `json:"service_address,omitempty"`
}
