package utils

import (
	"os"
	"strings"
)

// LoadAllowedEmails returns the set of addresses permitted to log in. The
// ALLOWED_EMAILS environment variable (comma separated) takes precedence;
// otherwise the given file is read, one address per line, with blank lines
// and #-comments ignored. An empty result means nobody can log in.
func LoadAllowedEmails(path string) (map[string]struct{}, error) {
	allowed := make(map[string]struct{})

	if env := os.Getenv("ALLOWED_EMAILS"); env != "" {
		for _, entry := range strings.Split(env, ",") {
			addr := strings.ToLower(strings.TrimSpace(entry))
			if addr != "" {
				allowed[addr] = struct{}{}
			}
		}
		return allowed, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return allowed, nil
		}
		return nil, err
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		allowed[strings.ToLower(line)] = struct{}{}
	}

	return allowed, nil
}

// EmailAllowed reports whether an address appears in the allow list,
// case-insensitively.
func EmailAllowed(allowed map[string]struct{}, email string) bool {
	_, ok := allowed[strings.ToLower(strings.TrimSpace(email))]
	return ok
}
