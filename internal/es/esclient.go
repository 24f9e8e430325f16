// Package es builds the Elasticsearch client used for product search.
package es

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/logging"
)

var ErrNotConfigured = errors.New("elasticsearch not configured")

// NewClient connects to ES_URL and checks the cluster answers. It returns
// ErrNotConfigured when no URL is set; search then falls back to the database.
func NewClient(ctx context.Context, cfg *config.Config) (*elasticsearch.Client, error) {
	l := logging.FromContext(ctx).With("component", "es")
	if cfg.ESURL == "" {
		return nil, ErrNotConfigured
	}
	l.Info("connecting", "url", cfg.ESURL, "user", cfg.ESUser)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ESURL},
		Username:  cfg.ESUser,
		Password:  cfg.ESPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("es client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("es info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		l.Error("info_failed", "status", res.Status(), "body", string(body))
		return nil, fmt.Errorf("es info: %s", res.Status())
	}

	l.Info("connected")
	return client, nil
}
