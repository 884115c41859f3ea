package domain

// Security is a purchasable instrument. TotalValue and ExpectedReturn are
// decimal strings as stored upstream.
type Security struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	TotalValue     string  `json:"total_value"`
	ExpectedReturn *string `json:"expected_return,omitempty"`
	RiskGrade      string  `json:"risk_grade"`
	Duration       string  `json:"duration"`
}
