package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrReportNotFound = errors.New("assessment report not found")

const (
	defaultStoreKeyPrefix = "sentinel:report:"
	defaultStoreTTL       = 7 * 24 * time.Hour
	maxResponseSizeBytes  = 2 << 20
)

// Store is the archive contract used by the pipeline. Reports are audit
// artifacts: saved once per run, looked up by run id.
type Store interface {
	Load(ctx context.Context, runID string) (*AssessmentReport, error)
	Save(ctx context.Context, report *AssessmentReport) error
	Delete(ctx context.Context, runID string) error
}

// StoreOption customizes UpstashRedisStore.
type StoreOption func(*UpstashRedisStore)

func WithKeyPrefix(prefix string) StoreOption {
	return func(s *UpstashRedisStore) {
		if p := strings.TrimSpace(prefix); p != "" {
			s.keyPrefix = p
		}
	}
}

func WithTTL(ttl time.Duration) StoreOption {
	return func(s *UpstashRedisStore) {
		s.ttl = ttl
	}
}

func WithHTTPClient(client *http.Client) StoreOption {
	return func(s *UpstashRedisStore) {
		if client != nil {
			s.httpClient = client
		}
	}
}

type UpstashRedisConfig struct {
	URL     string        `envconfig:"URL" split_words:"true" required:"true"`
	Token   string        `envconfig:"TOKEN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// UpstashRedisStore archives AssessmentReports in Upstash Redis over its
// REST endpoint, one JSON-encoded report per run id.
type UpstashRedisStore struct {
	baseURL    string
	token      string
	httpClient *http.Client
	keyPrefix  string
	ttl        time.Duration
}

func NewUpstashRedisStore(cfg UpstashRedisConfig, opts ...StoreOption) (*UpstashRedisStore, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	token := strings.TrimSpace(cfg.Token)
	switch {
	case baseURL == "":
		return nil, errors.New("upstash redis url is required")
	case token == "":
		return nil, errors.New("upstash redis token is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid redis rest url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	store := &UpstashRedisStore{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		keyPrefix:  defaultStoreKeyPrefix,
		ttl:        defaultStoreTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	if store.ttl < 0 {
		return nil, errors.New("ttl must be >= 0")
	}
	return store, nil
}

func (s *UpstashRedisStore) Save(ctx context.Context, report *AssessmentReport) error {
	if report == nil {
		return ErrNilReport
	}
	key, err := s.redisKey(report.RunID)
	if err != nil {
		return err
	}

	// The archive closes the run: an unset completion time means nothing
	// stamped it earlier, so stamp it here.
	completed := report.CompletedAt
	if completed.IsZero() {
		completed = time.Now()
	}
	report.CompletedAt = completed.UTC()

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal assessment report: %w", err)
	}

	cmd := make([]any, 0, 5)
	cmd = append(cmd, "SET", key, string(payload))
	if s.ttl > 0 {
		cmd = append(cmd, "EX", ttlSeconds(s.ttl))
	}

	_, err = s.call(ctx, cmd)
	return err
}

func (s *UpstashRedisStore) Load(ctx context.Context, runID string) (*AssessmentReport, error) {
	key, err := s.redisKey(runID)
	if err != nil {
		return nil, err
	}

	result, err := s.call(ctx, []any{"GET", key})
	if err != nil {
		return nil, err
	}
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return nil, ErrReportNotFound
	}

	// GET returns the stored value as a JSON string, so the report is
	// double-encoded on the wire.
	var stored string
	if err := json.Unmarshal(result, &stored); err != nil {
		return nil, fmt.Errorf("decode report payload: %w", err)
	}
	var report AssessmentReport
	if err := json.Unmarshal([]byte(stored), &report); err != nil {
		return nil, fmt.Errorf("unmarshal assessment report: %w", err)
	}
	if err := report.Validate(); err != nil {
		return nil, fmt.Errorf("invalid assessment report loaded from archive: %w", err)
	}
	return &report, nil
}

func (s *UpstashRedisStore) Delete(ctx context.Context, runID string) error {
	key, err := s.redisKey(runID)
	if err != nil {
		return err
	}
	_, err = s.call(ctx, []any{"DEL", key})
	return err
}

func (s *UpstashRedisStore) redisKey(runID string) (string, error) {
	if strings.TrimSpace(runID) == "" {
		return "", ErrInvalidRunID
	}
	return strings.TrimSpace(s.keyPrefix) + runID, nil
}

type restEnvelope struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// call posts one Redis command to the REST endpoint and returns the
// trimmed result payload. A non-2xx status or an error field in the
// envelope is an error.
func (s *UpstashRedisStore) call(ctx context.Context, cmd []any) (json.RawMessage, error) {
	if s == nil || s.httpClient == nil {
		return nil, errors.New("nil report store")
	}
	if len(cmd) == 0 {
		return nil, errors.New("empty redis command")
	}

	body, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("marshal redis command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build redis request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute redis request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read redis response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("redis http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var envelope restEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode redis response: %w", err)
	}
	if envelope.Error != "" {
		return nil, errors.New(envelope.Error)
	}
	return bytes.TrimSpace(envelope.Result), nil
}

func ttlSeconds(ttl time.Duration) int64 {
	seconds := int64((ttl + time.Second - 1) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}
