package redis

const (
	DefaultRequestStream = "guard-requests"
	DefaultResultStream  = "guard-results"
	DefaultGroup         = "guard-workers"
	DefaultResultMaxLen  = 10000
)

type RedisStreamConfig struct {
	RedisAddr     string
	RedisPassword string
	Stream        string
	ResultStream  string
	Group         string
	ConsumerName  string
	ResultMaxLen  int64
}

func NewRedisStreamConfig(redisAddr string, redisPassword string, stream string, resultStream string, group string, consumerName string) *RedisStreamConfig {
	cfg := &RedisStreamConfig{
		RedisAddr:     redisAddr,
		RedisPassword: redisPassword,
		Stream:        stream,
		ResultStream:  resultStream,
		Group:         group,
		ConsumerName:  consumerName,
		ResultMaxLen:  DefaultResultMaxLen,
	}
	if cfg.Stream == "" {
		cfg.Stream = DefaultRequestStream
	}
	if cfg.ResultStream == "" {
		cfg.ResultStream = DefaultResultStream
	}
	if cfg.Group == "" {
		cfg.Group = DefaultGroup
	}
	return cfg
}
