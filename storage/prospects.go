package storage

import (
	"encoding/json"
	"os"
	"strings"

	"coldreach/models"
	"coldreach/utils"
)

// importRecord is the shape accepted from uploaded prospect files. Only
// company_name, name and email are expected; anything else is ignored.
type importRecord struct {
	CompanyName string `json:"company_name"`
	Name        string `json:"name"`
	Email       string `json:"email"`
}

const (
	placeholderCompany = "Unknown Company"
	placeholderContact = "Unknown Contact"
)

// ParseImport decodes an uploaded JSON prospect list. The payload must be a
// JSON array; each element becomes a prospect with placeholder values for any
// missing field. Records are numbered from 1000 so their ids never collide
// with a seed file loaded at startup.
func ParseImport(data []byte) ([]models.Prospect, error) {
	var records []importRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, utils.MalformedImportError("uploaded file is not a JSON array of prospects", err)
	}

	prospects := make([]models.Prospect, 0, len(records))
	for i, rec := range records {
		company := strings.TrimSpace(utils.SanitizeField(rec.CompanyName))
		if company == "" {
			company = placeholderCompany
		}
		contact := strings.TrimSpace(utils.SanitizeField(rec.Name))
		if contact == "" {
			contact = placeholderContact
		}
		email := strings.TrimSpace(rec.Email)

		p := models.Prospect{
			ID:              1000 + i,
			CompanyName:     company,
			CompanyOverview: "Uploaded prospect data",
			SubjectiveInfo:  "Uploaded via JSON file",
			ContactName:     contact,
			ContactEmail:    email,
		}
		if email != "" {
			p.DiscoveredEmails = []string{email}
		}
		prospects = append(prospects, p)
	}

	return prospects, nil
}

// LoadSeedFile reads a prospect seed file from disk. The file uses the full
// prospect shape, so richer fields like company_overview and revenue survive.
// A missing file is not an error; the queue just starts empty.
func LoadSeedFile(path string) ([]models.Prospect, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, utils.MalformedImportError("failed to read seed file", err)
	}

	var prospects []models.Prospect
	if err := json.Unmarshal(data, &prospects); err != nil {
		return nil, utils.MalformedImportError("seed file is not a JSON array of prospects", err)
	}

	for i := range prospects {
		if prospects[i].ID == 0 {
			prospects[i].ID = i + 1
		}
		if prospects[i].CompanyName == "" {
			prospects[i].CompanyName = placeholderCompany
		}
		if prospects[i].ContactName == "" {
			prospects[i].ContactName = placeholderContact
		}
		if prospects[i].ContactEmail == "" && len(prospects[i].DiscoveredEmails) > 0 {
			prospects[i].ContactEmail = prospects[i].DiscoveredEmails[0]
		}
	}

	return prospects, nil
}
