package queue

import (
	"strings"

	"coldreach/models"
)

// BlankBodyTemplate is the fill-in-the-blanks body used when no global
// template has been saved.
const BlankBodyTemplate = `<p>Hi [Contact Name],</p><br><br><p>Best,</p><p>[Your Name]</p><p>[Your Company]</p><p>[Phone Number]</p><p>[Email]</p>`

// Fallback values for prospect tokens with no data behind them.
const (
	FallbackContactName = "Valued Customer"
	FallbackCompany     = "their company"
)

// Render substitutes placeholder tokens in template with prospect and sender
// fields. Replacement is literal, case-sensitive and global; tokens with no
// matching field are left untouched, except the contact-name and company
// tokens which fall back to fixed defaults when the prospect field is empty.
// The template is trusted markup: no HTML escaping is performed.
//
// Render is a pure function. The draft store relies on it being deterministic
// to decide whether a draft still matches its derived default.
func Render(template string, prospect models.Prospect, sender models.SenderInfo) string {
	contactName := prospect.ContactName
	if contactName == "" {
		contactName = FallbackContactName
	}
	companyName := prospect.CompanyName
	if companyName == "" {
		companyName = FallbackCompany
	}

	replacer := strings.NewReplacer(
		"[Contact Name]", contactName,
		"[NAME]", contactName,
		"[CONTACT_NAME]", contactName,
		"[COMPANY]", companyName,
		"[COMPANY_NAME]", companyName,
		"[Your Name]", sender.Name,
		"[YOUR_NAME]", sender.Name,
		"[Your Company]", sender.Company,
		"[YOUR_COMPANY]", sender.Company,
		"[Phone Number]", sender.Phone,
		"[YOUR_PHONE]", sender.Phone,
		"[PHONE]", sender.Phone,
		"[Email]", sender.Email,
		"[YOUR_EMAIL]", sender.Email,
		"[EMAIL]", sender.Email,
	)

	return replacer.Replace(template)
}
