package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ochronus/gopushbullet/internal/config"
)

const configTemplate = `# Required when running 'gopushbullet serve'. Credentials that relay clients
# use to connect.
username = "myusername"
password = "mypassword"

# Optional bind address, default "0.0.0.0"
bind_address = "0.0.0.0"

# Optional TCP port, default 8066
port = 8066

# Optional log level, default "info"
loglevel = "info"

# Optional number of relay workers, default 4. This controls how many pushes
# are delivered in parallel.
relay_workers = 4

# Optional relay queue size, default 100. Pushes submitted while the queue is
# full are rejected.
queue_size = 100

[pushbullet]
# Required. PushBullet access token. Create one at
# https://www.pushbullet.com/#settings/account
# The PUSHBULLET_TOKEN environment variable takes precedence when set.
api_key = "{{PUSHBULLET_API_KEY}}"
`

// GenerateConfig writes a starter configuration file. If the PUSHBULLET_TOKEN
// environment variable is set, the token is filled in; otherwise a
// placeholder is left for the user to edit.
func GenerateConfig(configPath string) error {
	fmt.Printf("Generating config %s\n", configPath)

	apiKey := config.TokenFromEnv()
	if apiKey == "" {
		apiKey = "MYPUSHBULLETTOKEN"
	}

	content := strings.Replace(configTemplate, "{{PUSHBULLET_API_KEY}}", apiKey, 1)

	// Check if config file already exists and back it up
	if _, err := os.Stat(configPath); err == nil {
		backupPath := configPath + ".bak"
		fmt.Printf("Backing up config %s\n", configPath)
		if err := os.Rename(configPath, backupPath); err != nil {
			return fmt.Errorf("failed to backup config: %w", err)
		}
	}

	// Create parent directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	fmt.Printf("Writing %s\n", configPath)
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
