package models

// Draft is the editable recipient/subject/body triple for one prospect.
// A draft is either derived on demand from the active template or saved
// explicitly because it differs from the derived default.
type Draft struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Equal reports exact string equality on all three fields.
func (d Draft) Equal(other Draft) bool {
	return d.To == other.To && d.Subject == other.Subject && d.Body == other.Body
}
