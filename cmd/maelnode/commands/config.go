package commands

// Config holds the run command's settings. Everything here is ambient:
// the protocol itself needs nothing but stdin and stdout.
type Config struct {
	LogLevel      string   `mapstructure:"log-level"`
	MetricsListen string   `mapstructure:"metrics-listen"`
	Etcd          []string `mapstructure:"etcd"`
	EtcdTTL       int64    `mapstructure:"etcd-ttl"`
}

func NewDefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		EtcdTTL:  10,
	}
}
