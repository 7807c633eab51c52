package config

const (
	defaultBankRoot = "."

	defaultMaxDepth = 5

	defaultCacheTTL    = "5m"
	defaultLRUCapacity = 500

	defaultMaxConcurrent = 8
	defaultTimeout       = "30s"
	defaultMaxAttempts   = 3
	defaultBaseDelay     = "500ms"

	defaultAPIListen = ":8081"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Bank: BankConfig{
			Root: defaultBankRoot,
		},
		Resolver: ResolverConfig{
			MaxDepth: defaultMaxDepth,
		},
		Cache: CacheConfig{
			TTL:         defaultCacheTTL,
			LRUCapacity: defaultLRUCapacity,
		},
		Admission: AdmissionConfig{
			MaxConcurrent: defaultMaxConcurrent,
			Timeout:       defaultTimeout,
			MaxAttempts:   defaultMaxAttempts,
			BaseDelay:     defaultBaseDelay,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Watch: WatchConfig{
			Enabled: true,
		},
	}
}
