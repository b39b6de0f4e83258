package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/giftbay/giftbay-api/internal/config"
	"github.com/giftbay/giftbay-api/internal/pkg/database"
	"github.com/giftbay/giftbay-api/internal/pkg/imagequeue"
	"github.com/giftbay/giftbay-api/internal/pkg/imaging"
	"github.com/giftbay/giftbay-api/internal/pkg/logger"
	"github.com/giftbay/giftbay-api/internal/pkg/storage"
)

const popTimeout = 5 * time.Second

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().Msg("Starting image-worker")

	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	if rdb == nil {
		log.Fatal().Msg("REDIS_URL is required for the image worker")
	}
	defer database.CloseRedis(rdb)

	var store storage.ObjectStorage
	if cfg.S3AccessKey != "" {
		store, err = storage.NewS3Storage(storage.Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create S3 storage")
		}
	} else {
		store, err = storage.NewLocalStorage("./uploads", cfg.AppBaseURL+"/uploads")
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create local storage")
		}
		log.Warn().Msg("S3 not configured, processing uploads on local disk")
	}

	queue := imagequeue.New(rdb)
	processor := imaging.NewProcessor(imaging.DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigChan
		log.Info().Msg("Shutdown signal received")
		cancel()
	}()

	for {
		if ctx.Err() != nil {
			log.Info().Msg("image-worker stopped")
			return
		}

		key, ok, err := queue.Dequeue(ctx, popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				log.Info().Msg("image-worker stopped")
				return
			}
			log.Error().Err(err).Msg("Redis error while waiting for jobs")
			time.Sleep(time.Second)
			continue
		}
		if !ok {
			continue
		}

		start := time.Now()
		width, height, err := processOne(ctx, store, processor, key)
		if err != nil {
			// The original upload stays usable either way; drop the
			// job rather than retry a broken image forever.
			log.Error().Err(err).Str("key", key).Msg("Processing failed")
			continue
		}

		log.Info().
			Str("key", key).
			Dur("took", time.Since(start)).
			Int("width", width).
			Int("height", height).
			Msg("Processing done")
	}
}

// processOne rewrites the stored original as a web-optimized variant
// and stores a card-list thumbnail next to it under "<key>_thumb".
func processOne(ctx context.Context, store storage.ObjectStorage, proc *imaging.Processor, key string) (int, int, error) {
	rc, err := store.Get(ctx, key)
	if err != nil {
		return 0, 0, fmt.Errorf("download: %w", err)
	}
	defer rc.Close()

	img, err := proc.Process(rc)
	if err != nil {
		return 0, 0, fmt.Errorf("process: %w", err)
	}

	if err := store.Put(ctx, key, bytes.NewReader(img.Original), img.ContentType); err != nil {
		return 0, 0, fmt.Errorf("upload optimized: %w", err)
	}
	if err := store.Put(ctx, key+"_thumb", bytes.NewReader(img.Thumbnail), img.ContentType); err != nil {
		return 0, 0, fmt.Errorf("upload thumb: %w", err)
	}

	return img.Width, img.Height, nil
}
