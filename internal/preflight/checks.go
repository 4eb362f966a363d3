package preflight

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"reelforge/internal/config"
	"reelforge/internal/reeljob"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckStore opens the configured job store, lists it and closes it again.
// A file store held by another process fails with an "in use" detail.
func CheckStore(ctx context.Context, cfg *config.Config) Result {
	name := "Job store"
	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	name = fmt.Sprintf("Job store (%s)", cfg.Store.Backend)

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	store, err := reeljob.Open(checkCtx, cfg)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	defer store.Close()

	jobs, err := store.List(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("list failed (%v)", err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d jobs)", storeLocation(cfg), len(jobs))}
}

func storeLocation(cfg *config.Config) string {
	switch cfg.Store.Backend {
	case "redis":
		return RedactURL(cfg.Store.RedisURL)
	case "sqlite":
		return cfg.Store.SQLitePath
	default:
		return cfg.Store.FilePath
	}
}

// RedactURL hides the userinfo part of a connection URL.
func RedactURL(raw string) string {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return raw
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = "***@" + rest[at+1:]
	}
	return scheme + "://" + rest
}

// CheckVendors reports credential presence for every vendor. The primary
// synthesizer is required; everything else is optional.
func CheckVendors(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{
		keyResult("Voice synthesis", cfg.TTS.APIKey, false, true),
		keyResult("Voice fallback", cfg.TTSFallback.APIKey, true, cfg.TTSFallback.Enabled),
		keyResult("Image generation", cfg.Images.APIKey, true, cfg.Images.Enabled),
		keyResult("Image fallback", cfg.ImagesFallback.APIKey, true, cfg.ImagesFallback.Enabled),
		keyResult("Image verification", cfg.Vision.APIKey, true, cfg.Vision.Enabled),
		CheckStorage(cfg),
		CheckNotifications(cfg),
	}
	if !cfg.Images.Enabled && !cfg.ImagesFallback.Enabled {
		results = append(results, Result{Name: "Image generators", Detail: "no image generator enabled"})
	}
	return results
}

func keyResult(name, key string, optional, enabled bool) Result {
	if !enabled {
		return Result{Name: name, Passed: true, Optional: optional, Detail: "Disabled"}
	}
	if strings.TrimSpace(key) == "" {
		return Result{Name: name, Optional: optional, Detail: "Missing API key"}
	}
	return Result{Name: name, Passed: true, Optional: optional, Detail: "API key present"}
}
