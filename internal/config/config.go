package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Server contains runtime configuration of the HTTP service.
type Server struct {
	Addr     string
	DBURL    string            // empty selects the in-memory store
	APIKeys  map[string]string // apiKey -> tenantID
	CacheTTL time.Duration
	// CacheSize bounds the number of cached moving-average responses.
	CacheSize int
}

// LoadServer reads the service configuration from v.
// DB_URL and API_KEYS are read unprefixed; API_KEYS format: "tenant1:key1,tenant2:key2".
func LoadServer(v *viper.Viper) (Server, error) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("cache.size", 256)
	v.SetDefault("cache.ttl", 30*time.Second)
	_ = v.BindEnv("db_url", "DB_URL")
	_ = v.BindEnv("api_keys", "API_KEYS")

	apiKeys, err := parseAPIKeys(v.GetString("api_keys"))
	if err != nil {
		return Server{}, err
	}

	// Local dev fallback so the service runs out-of-the-box.
	if len(apiKeys) == 0 {
		apiKeys["tenant-key-123"] = "tenant1"
	}

	size := v.GetInt("cache.size")
	if size <= 0 {
		return Server{}, errors.New("cache.size must be positive")
	}

	return Server{
		Addr:      v.GetString("addr"),
		DBURL:     strings.TrimSpace(v.GetString("db_url")),
		APIKeys:   apiKeys,
		CacheTTL:  v.GetDuration("cache.ttl"),
		CacheSize: size,
	}, nil
}

func parseAPIKeys(raw string) (map[string]string, error) {
	apiKeys := map[string]string{}
	for _, p := range strings.Split(strings.TrimSpace(raw), ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parts := strings.SplitN(p, ":", 2)
		if len(parts) != 2 {
			return nil, errors.New(`API_KEYS must be "tenant:key,tenant:key"`)
		}
		tenant := strings.TrimSpace(parts[0])
		key := strings.TrimSpace(parts[1])
		if tenant == "" || key == "" {
			return nil, errors.New(`API_KEYS must be "tenant:key,tenant:key"`)
		}
		apiKeys[key] = tenant
	}
	return apiKeys, nil
}
