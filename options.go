package codemap

import "go.uber.org/zap"

// Option configures the Client.
type Option func(*clientConfig)

// SystemFile describes one terminology system to load into the client.
type SystemFile struct {
	// IndexPath is the JSON index file produced by the offline builder.
	IndexPath string
	// TopK is the final result count; 0 means the default of 10.
	TopK int
	// IncludeEnglish carries the translated label on candidates.
	IncludeEnglish bool
}

type clientConfig struct {
	systems map[string]SystemFile

	embedder Embedder

	openAIKey     string
	openAIBaseURL string
	openAIModel   string
	openAIDims    int

	redisAddrs    []string
	redisPassword string
	keyPrefix     string

	logger *zap.Logger
}

// WithSystem registers a terminology system by name.
func WithSystem(name string, file SystemFile) Option {
	return func(c *clientConfig) {
		if c.systems == nil {
			c.systems = make(map[string]SystemFile)
		}
		c.systems[name] = file
	}
}

// WithEmbedder sets the query vectorizer. It must be the same provider and
// model that produced the systems' embedding tables.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) {
		c.embedder = e
	}
}

// WithOpenAI builds the query vectorizer from an OpenAI-compatible embedding
// endpoint. Ignored when WithEmbedder is also given.
func WithOpenAI(apiKey, baseURL, model string, dimensions int) Option {
	return func(c *clientConfig) {
		c.openAIKey = apiKey
		c.openAIBaseURL = baseURL
		c.openAIModel = model
		c.openAIDims = dimensions
	}
}

// WithRedis connects the selection-history store. Without it Search ranks on
// raw scores and RecordSelection returns an error.
func WithRedis(addr, password string) Option {
	return func(c *clientConfig) {
		c.redisAddrs = []string{addr}
		c.redisPassword = password
	}
}

// WithKeyPrefix namespaces the selection-history keys. Default "codemap:".
func WithKeyPrefix(prefix string) Option {
	return func(c *clientConfig) {
		c.keyPrefix = prefix
	}
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}
