package domain

// RuleConfig holds the keyword lists used by the criticality calculator and the
// compliance rules. It is loaded once at start-up and shared read-only.
type RuleConfig struct {
	// SensitiveTechnologies raise an asset's technology score when any detected
	// technology equals one of them, case-insensitively.
	SensitiveTechnologies []string `yaml:"sensitive_technologies" json:"sensitive_technologies"`

	AdminIndicators   []string `yaml:"admin_indicators" json:"admin_indicators"`
	PrivacyIndicators []string `yaml:"privacy_indicators" json:"privacy_indicators"`
	CookieIndicators  []string `yaml:"cookie_indicators" json:"cookie_indicators"`

	// CardKeywords are case-insensitive regular expression fragments matched
	// against page title, content type and URL.
	CardKeywords []string `yaml:"card_keywords" json:"card_keywords"`
}
