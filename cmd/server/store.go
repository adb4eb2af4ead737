package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// analysisRecord is one append-only row per completed detection.
//
// Schema:
//
//	CREATE TABLE analyses (
//	    id         UUID PRIMARY KEY,
//	    image_ref  TEXT NOT NULL,
//	    disease    TEXT NOT NULL,
//	    confidence DOUBLE PRECISION NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type analysisRecord struct {
	ID         uuid.UUID
	ImageRef   string
	Disease    string
	Confidence float64
}

type analysisStore struct {
	pool *pgxpool.Pool
}

func newAnalysisStore(ctx context.Context, url string) (*analysisStore, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return &analysisStore{pool: pool}, nil
}

func (s *analysisStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *analysisStore) Close() {
	s.pool.Close()
}

func (s *analysisStore) InsertAnalysis(ctx context.Context, rec analysisRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO analyses (id, image_ref, disease, confidence) VALUES ($1, $2, $3, $4)`,
		rec.ID, rec.ImageRef, rec.Disease, rec.Confidence)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}
