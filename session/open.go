package session

import (
	"fmt"
	"log/slog"

	"barkeep"
)

// Open builds the backend named by cfg.Backend ("memory", "file", "redis" or "s3").
// s3c is only used by the s3 backend and may be nil otherwise.
func Open(cfg barkeep.StoreConfig, s3c s3API) (Backend, error) {
	slog.Info("SESSION: Opening backend", "backend", cfg.Backend)
	switch cfg.Backend {
	case "memory":
		return NewMemoryBackend(), nil
	case "file", "":
		return NewFileBackend(cfg.FileDir)
	case "redis":
		return NewRedisBackend(NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), cfg.RedisTTL), nil
	case "s3":
		if s3c == nil {
			return nil, fmt.Errorf("s3 session backend needs an S3 client")
		}
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 session backend needs SESSION_S3_BUCKET")
		}
		return NewS3Backend(s3c, cfg.S3Bucket, cfg.S3Prefix), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}
