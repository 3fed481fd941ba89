package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/roboco-io/feishu2html/internal/config"
	"github.com/roboco-io/feishu2html/internal/docref"
	"github.com/roboco-io/feishu2html/internal/feishu"
)

// resolveRefs parses document references into ids. URLs select the API
// host; references pointing at different hosts cannot share one client.
func resolveRefs(args []string, fallbackBase string) ([]string, string, error) {
	ids := make([]string, 0, len(args))
	base := ""
	for _, arg := range args {
		ref, err := docref.Parse(arg)
		if err != nil {
			return nil, "", err
		}
		if b := ref.APIBaseURL(); b != "" {
			if base != "" && base != b {
				return nil, "", fmt.Errorf("documents from different hosts (%s, %s) cannot be exported together", base, b)
			}
			base = b
		}
		ids = append(ids, ref.Token)
	}
	if base == "" {
		base = fallbackBase
	}
	return ids, base, nil
}

// newClient builds a client whose limiter, retry policy and requests all log
// under the "feishu" name.
func newClient(cfg *config.Config, baseURL string, logger *zap.Logger) (*feishu.Client, error) {
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}
	logger = logger.Named("feishu")
	limiter := feishu.NewRateLimiter(feishu.RateLimitConfig{
		Limit:        cfg.API.RateLimit,
		MaxRetries:   cfg.API.MaxRetries,
		InitialDelay: cfg.API.InitialDelay,
		MaxDelay:     cfg.API.MaxDelay,
	}, feishu.WithLimiterLogger(logger))

	return feishu.New(feishu.Config{
		AppID:     cfg.App.ID,
		AppSecret: cfg.App.Secret,
		BaseURL:   baseURL,
		Timeout:   cfg.API.Timeout,
	},
		feishu.WithLogger(logger),
		feishu.WithRateLimiter(limiter),
		feishu.WithRetryPolicy(feishu.Policy{
			MaxAttempts:  cfg.API.MaxRetries + 1,
			InitialDelay: cfg.API.InitialDelay,
			MaxDelay:     cfg.API.MaxDelay,
		}),
		feishu.WithPageSize(cfg.API.PageSize),
	)
}
