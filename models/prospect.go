package models

// Prospect is a target contact/company record in the outreach queue.
// Prospects are immutable within a session; replacing the prospect list
// resets all derived state.
type Prospect struct {
	ID               int      `json:"id"`
	CompanyName      string   `json:"company_name"`
	CompanyOverview  string   `json:"company_overview"`
	DiscoveredEmails []string `json:"discovered_emails"`
	SubjectiveInfo   string   `json:"subjective_info"`
	WebsiteURL       string   `json:"website_url"`
	ContactName      string   `json:"contact_name"`
	ContactEmail     string   `json:"contact_email"`
	PhoneNumber      string   `json:"phone_number"`
	Revenue          string   `json:"revenue"`
	Location         string   `json:"location"`
}

// HasEmail reports whether the prospect has a usable contact address.
func (p Prospect) HasEmail() bool {
	return p.ContactEmail != ""
}

// SenderInfo describes the authenticated sender used for token substitution
// and the From header of outgoing mail.
type SenderInfo struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}
