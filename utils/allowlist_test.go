package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAllowedEmailsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allowed_emails.txt")
	content := "# team accounts\nsam@example.com\n\n  Lee@Example.COM  \n# trailing comment\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	allowed, err := LoadAllowedEmails(path)
	require.NoError(t, err)
	assert.Len(t, allowed, 2)

	assert.True(t, EmailAllowed(allowed, "sam@example.com"))
	assert.True(t, EmailAllowed(allowed, "LEE@example.com"), "matching is case-insensitive")
	assert.False(t, EmailAllowed(allowed, "intruder@example.com"))
}

func TestLoadAllowedEmailsEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allowed_emails.txt")
	require.NoError(t, os.WriteFile(path, []byte("file@example.com\n"), 0644))

	t.Setenv("ALLOWED_EMAILS", "env1@example.com, Env2@Example.com")

	allowed, err := LoadAllowedEmails(path)
	require.NoError(t, err)
	assert.True(t, EmailAllowed(allowed, "env1@example.com"))
	assert.True(t, EmailAllowed(allowed, "env2@example.com"))
	assert.False(t, EmailAllowed(allowed, "file@example.com"))
}

func TestLoadAllowedEmailsMissingFile(t *testing.T) {
	allowed, err := LoadAllowedEmails(filepath.Join(t.TempDir(), "absent.txt"))
	require.NoError(t, err)
	assert.Empty(t, allowed)
}
