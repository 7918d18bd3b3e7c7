package config

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

type ServerConfig struct {
	Port int `toml:"port"`
}

type SMTPConfig struct {
	Server      string `toml:"server"`
	Port        int    `toml:"port"`
	UseSTARTTLS bool   `toml:"use_starttls"` // true for port 587, false for port 465
}

type IMAPConfig struct {
	Server      string `toml:"server"`
	Port        int    `toml:"port"`
	VerifyLogin bool   `toml:"verify_login"` // check credentials against the mailbox at login
	SaveToSent  bool   `toml:"save_to_sent"` // append delivered mail to the Sent folder
}

type MailConfig struct {
	CIDDomain      string `toml:"cid_domain"`      // domain part of inline-image content identifiers
	DefaultSubject string `toml:"default_subject"` // initial global subject line
}

type SenderConfig struct {
	Company string `toml:"company"` // sender company for template tokens
	Phone   string `toml:"phone"`
}

type AuthConfig struct {
	AllowedEmailsFile string `toml:"allowed_emails_file"`
	JWTSecret         string `toml:"jwt_secret"`
	EncryptionKey     string `toml:"encryption_key"` // key material for session credential encryption
	MinPasswordLen    int    `toml:"min_password_len"`
}

type ProspectsConfig struct {
	SeedFile string `toml:"seed_file"` // optional JSON list loaded at session start
}

// FallbackConfig holds the server-side relay account used when a session
// carries no credentials of its own. Populated from the environment, never
// from the config file.
type FallbackConfig struct {
	User string
	Pass string
	Host string
	Port int
}

type Config struct {
	Server    ServerConfig    `toml:"server"`
	SMTP      SMTPConfig      `toml:"smtp"`
	IMAP      IMAPConfig      `toml:"imap"`
	Mail      MailConfig      `toml:"mail"`
	Sender    SenderConfig    `toml:"sender"`
	Auth      AuthConfig      `toml:"auth"`
	Prospects ProspectsConfig `toml:"prospects"`
	Fallback  FallbackConfig  `toml:"-"`
}

func LoadConfig(filepath string) (*Config, error) {
	var config Config

	// Set default values
	config.Server.Port = 3000
	config.SMTP.Server = "smtp.gmail.com"
	config.SMTP.Port = 587 // Default to STARTTLS port
	config.SMTP.UseSTARTTLS = true
	config.IMAP.Port = 993
	config.Auth.AllowedEmailsFile = "allowed_emails.txt"
	config.Auth.MinPasswordLen = 16

	// Load config file; a missing file leaves the defaults in place
	if _, err := os.Stat(filepath); err == nil {
		if _, err := toml.DecodeFile(filepath, &config); err != nil {
			return nil, err
		}
	}

	// If IMAP server is not specified, derive it from the SMTP server
	if config.IMAP.Server == "" {
		config.IMAP.Server = config.SMTP.Server
		if len(config.IMAP.Server) > 5 && config.IMAP.Server[:5] == "smtp." {
			config.IMAP.Server = "imap" + config.IMAP.Server[4:]
		}
	}

	config.Fallback = loadFallbackFromEnv(config.SMTP)

	return &config, nil
}

// loadFallbackFromEnv reads the server-configured relay account. Session
// credentials take precedence over these at send time.
func loadFallbackFromEnv(smtp SMTPConfig) FallbackConfig {
	fb := FallbackConfig{
		User: os.Getenv("EMAIL_USER"),
		Pass: os.Getenv("EMAIL_PASS"),
		Host: os.Getenv("EMAIL_HOST"),
		Port: smtp.Port,
	}
	if fb.Host == "" {
		fb.Host = smtp.Server
	}
	if p := os.Getenv("EMAIL_PORT"); p != "" {
		if port, err := strconv.Atoi(p); err == nil {
			fb.Port = port
		}
	}
	return fb
}

// HasFallback reports whether a server-side relay account is configured.
func (c *Config) HasFallback() bool {
	return c.Fallback.User != "" && c.Fallback.Pass != ""
}

// GetPort returns the SMTP port appropriate for the encryption mode.
func (c *SMTPConfig) GetPort() int {
	if c.Port != 0 {
		return c.Port
	}
	if c.UseSTARTTLS {
		return 587 // STARTTLS port
	}
	return 465 // SSL/TLS port
}
