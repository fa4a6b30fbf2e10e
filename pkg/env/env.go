package env

import (
	"github.com/kelseyhightower/envconfig"
	"log"
	"log/slog"
	"sync"
	"time"
)

const prefix = "app"

type Specification struct {
	Version  int
	Env      string `default:"production"`
	LogLevel string `default:"info" split_words:"true"`

	ServerPort                 string        `default:":8080" split_words:"true"`
	ServerReadTimeoutInSecond  time.Duration `default:"10s" split_words:"true"`
	ServerWriteTimeoutInSecond time.Duration `default:"30s" split_words:"true"`
	ServerMaxHeaderBytes       int           `default:"1048576" split_words:"true"`

	// Only read when the subscription rate limiter uses the redis storage.
	RedisAddr     string `default:"localhost:6379" split_words:"true"`
	RedisPassword string `default:"" split_words:"true"`
	RedisDb       int    `default:"0" split_words:"true"`
	RedisPoolSize int    `default:"100" split_words:"true"`

	BrevoApiKey  string        `default:"" split_words:"true"`
	BrevoListId  int64         `default:"1" split_words:"true"`
	BrevoApiUrl  string        `default:"https://api.brevo.com/v3" split_words:"true"`
	BrevoTimeout time.Duration `default:"10s" split_words:"true"`

	ConfigFile string `default:"./config.yaml" split_words:"true"`
}

func (s *Specification) IsProduction() bool {
	return s.Env == "production"
}

// Load reads the specification from APP_* environment variables.
func Load() (*Specification, error) {
	var spec Specification
	if err := envconfig.Process(prefix, &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

var (
	once        sync.Once
	envInstance *Specification
)

func GetEnv() *Specification {
	once.Do(func() {
		slog.Info("initializing env...")
		spec, err := Load()
		if err != nil {
			log.Fatal(err.Error())
		}
		envInstance = spec
	})

	return envInstance
}
