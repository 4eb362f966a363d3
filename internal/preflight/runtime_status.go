package preflight

import (
	"fmt"
	"strings"

	"reelforge/internal/config"
	"reelforge/internal/music"
)

// CheckStorage evaluates the Cloudinary credentials. Storage is optional;
// without it generated and scraped URLs are stored as-is.
func CheckStorage(cfg *config.Config) Result {
	const name = "Media storage"

	if cfg == nil {
		return Result{Name: name, Optional: true, Detail: "Unknown"}
	}
	if cfg.StorageConfigured() {
		return Result{Name: name, Passed: true, Optional: true, Detail: fmt.Sprintf("cloud %s, folder %s", cfg.Storage.CloudName, cfg.Storage.FolderPrefix)}
	}
	if cfg.Storage.CloudName != "" || cfg.Storage.APIKey != "" || cfg.Storage.APISecret != "" {
		return Result{Name: name, Detail: "Partial credentials (cloud name, api key and secret are all required)"}
	}
	return Result{Name: name, Passed: true, Optional: true, Detail: "Not configured (urls kept as-is)"}
}

// CheckNotifications reports whether ntfy notifications are configured.
func CheckNotifications(cfg *config.Config) Result {
	const name = "Notifications"

	if cfg == nil {
		return Result{Name: name, Optional: true, Detail: "Unknown"}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return Result{Name: name, Passed: true, Optional: true, Detail: "Disabled"}
	}
	return Result{Name: name, Passed: true, Optional: true, Detail: topic}
}

// CheckMusicCatalog verifies that the configured catalog file parses.
func CheckMusicCatalog(path string) Result {
	const name = "Music catalog"

	path = strings.TrimSpace(path)
	if path == "" {
		return Result{Name: name, Passed: true, Optional: true, Detail: "Not configured (no background music)"}
	}
	catalog, err := music.LoadCatalog(path)
	if err != nil {
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Optional: true, Detail: fmt.Sprintf("%s (%d tracks)", path, catalog.Len())}
}
