// File: cmd/healthcheck/main.go
//
// healthcheck probes the service's /health endpoint and exits 0 on HTTP 200,
// 1 otherwise. It is meant for container HEALTHCHECK directives and CI smoke tests.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
)

type options struct {
	url            string
	retries        uint
	timeout        time.Duration
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

func main() {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}
	host := os.Getenv("APP_HOST")
	if host == "" {
		host = "localhost"
	}

	var opts options
	flag.StringVar(&opts.url, "url", fmt.Sprintf("http://%s:%s/health", host, port), "health endpoint URL")
	flag.UintVar(&opts.retries, "retries", 0, "additional attempts after the first failure")
	flag.DurationVar(&opts.timeout, "timeout", 5*time.Second, "per-request timeout")
	flag.DurationVar(&opts.initialBackoff, "initial-backoff", time.Second, "delay before the first retry; doubles on each retry")
	flag.DurationVar(&opts.maxBackoff, "max-backoff", 10*time.Second, "upper bound of the retry delay")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	body, err := probe(context.Background(), &http.Client{Timeout: opts.timeout}, opts, &logger)
	if err != nil {
		logger.Error().Err(err).Str("url", opts.url).Msg("health check failed")
		os.Exit(1)
	}
	logger.Info().Str("url", opts.url).Str("response", string(body)).Msg("health check passed")
}

// probe GETs opts.url until it answers 200 or the retry budget is spent.
func probe(ctx context.Context, client *http.Client, opts options, logger *zerolog.Logger) ([]byte, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = opts.initialBackoff
	b.MaxInterval = opts.maxBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0

	attempt := 0
	op := func() ([]byte, error) {
		attempt++
		body, err := checkOnce(ctx, client, opts.url)
		if err != nil {
			logger.Warn().Err(err).Int("attempt", attempt).Msg("health check attempt failed")
		}
		return body, err
	}
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(opts.retries+1),
	)
}

func checkOnce(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return body, nil
}
