package clients

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spacesedan/ecsa/internal/models"
	"github.com/valkey-io/valkey-go"
)

const (
	VALKEY_PRICE_PREFIX = "ecsa:prices:"
	VALKEY_PRICE_TTL    = 86400
)

type ValkeyOptions struct {
	Address  string
	Password string
	UseTLS   bool
}

// ValkeyClient caches price series between runs.
type ValkeyClient struct {
	Client valkey.Client
	opts   ValkeyOptions
	mu     sync.Mutex
}

func NewValkeyClient(opts ValkeyOptions) (*ValkeyClient, error) {
	client, err := connectValkey(opts)
	if err != nil {
		return nil, err
	}

	slog.Info("[ValkeyClient] Successfully connected to valkey",
		slog.String("address", opts.Address))
	return &ValkeyClient{Client: client, opts: opts}, nil
}

func connectValkey(opts ValkeyOptions) (valkey.Client, error) {
	clientOpts := valkey.ClientOption{
		InitAddress: []string{
			opts.Address,
		},
		Password:         opts.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}

	if opts.UseTLS {
		clientOpts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := valkey.NewClient(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}
	return client, nil
}

func (vc *ValkeyClient) recreateClient() {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	slog.Warn("[ValkeyClient] Attempting to recreate Valkey client...")
	client, err := connectValkey(vc.opts)
	if err != nil {
		slog.Error("[ValkeyClient] Recreate failed", slog.String("error", err.Error()))
		return
	}
	vc.Client.Close()
	vc.Client = client
	slog.Info("[ValkeyClient] Successfully reconnected to valkey")
}

func (vc *ValkeyClient) current() valkey.Client {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	return vc.Client
}

func (vc *ValkeyClient) Close() {
	vc.current().Close()
}

// GetPrices returns a cached price series. A miss or any error is reported as
// not found.
func (vc *ValkeyClient) GetPrices(ctx context.Context, key string) ([]models.PricePoint, bool) {
	res := vc.DoWithRetry(ctx, func(c valkey.Client) valkey.Completed {
		return c.B().Get().Key(VALKEY_PRICE_PREFIX + key).Build()
	}, 3)

	raw, err := res.ToString()
	if err != nil {
		if !valkey.IsValkeyNil(err) {
			slog.Warn("[ValkeyClient] Price lookup failed",
				slog.String("key", key),
				slog.String("error", err.Error()))
			if isConnectionError(err) {
				vc.recreateClient()
			}
		}
		return nil, false
	}

	var points []models.PricePoint
	if err := json.Unmarshal([]byte(raw), &points); err != nil {
		slog.Warn("[ValkeyClient] Cached price series is corrupt",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, false
	}
	return points, true
}

// SetPrices stores a price series for one day.
func (vc *ValkeyClient) SetPrices(ctx context.Context, key string, points []models.PricePoint) error {
	payload, err := json.Marshal(points)
	if err != nil {
		return fmt.Errorf("failed to marshal prices: %w", err)
	}

	fullKey := VALKEY_PRICE_PREFIX + key
	build := func(c valkey.Client) []valkey.Completed {
		return []valkey.Completed{
			c.B().Set().Key(fullKey).Value(string(payload)).Build(),
			c.B().Expire().Key(fullKey).Seconds(VALKEY_PRICE_TTL).Build(),
		}
	}

	for _, res := range vc.DoMultiWithRetry(ctx, build, 3) {
		if err := res.Error(); err != nil {
			return err
		}
	}

	slog.Debug("[ValkeyClient] Cached price series", slog.String("key", key))
	return nil
}

// Commands are rebuilt on every attempt; a built command cannot be reused
// after it has been sent.
func (vc *ValkeyClient) DoMultiWithRetry(ctx context.Context, build func(valkey.Client) []valkey.Completed, retries int) []valkey.ValkeyResult {
	var results []valkey.ValkeyResult

	for i := 0; i < retries; i++ {
		client := vc.current()
		results = client.DoMulti(ctx, build(client)...)
		hasErr := false
		for _, r := range results {
			if r.Error() != nil {
				hasErr = true
				slog.Warn("[ValkeyClient] Do Multi failed",
					slog.Int("attempt", i+1),
					slog.String("error", r.Error().Error()))
				if isConnectionError(r.Error()) {
					vc.recreateClient()
				}
				break
			}
		}
		if !hasErr {
			break
		}
		time.Sleep(time.Millisecond * 250)
	}

	return results
}

func (vc *ValkeyClient) DoWithRetry(ctx context.Context, build func(valkey.Client) valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		client := vc.current()
		result = client.Do(ctx, build(client))
		if err := result.Error(); err == nil || valkey.IsValkeyNil(err) {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", result.Error().Error()))

		time.Sleep(250 * time.Millisecond)
	}

	return result
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
