package models

// Keys of the settings table used by the tally assembly. All six must
// be configured before a tally can be generated.
const (
	TallyE2ETemplateKey  = "tally_end_to_end_template"
	TallyPurposeKey      = "tally_purpose"
	TallyCreditorNameKey = "tally_creditor_name"
	TallyCreditorIBANKey = "tally_creditor_iban"
	TallyCreditorBICKey  = "tally_creditor_bic"
	TallyCreditorIDKey   = "tally_creditor_identification"
)

// Setting is a named string value from the settings table.
type Setting struct {
	Name  string
	Value string
}

// CreditorInfo bundles the creditor identity used in the payment
// initiation message.
type CreditorInfo struct {
	Name           string
	IBAN           string
	BIC            string
	Identification string
}
