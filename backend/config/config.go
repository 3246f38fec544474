package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host string
	Port int
}

type DB struct {
	Host string
	Port int
	User string
	Pass string
	Name string
}

type Redis struct {
	Addr string
}

type JWT struct {
	Secret string
	Issuer string
	ExpMin int
}

type Queue struct {
	SyncDelaySeconds int
}

type Machines struct {
	// MatchBy selects how a machine reporting without an id is matched to an
	// existing record: "name", "fqdn", "host", "resolvedhost", or empty for
	// any-field matching.
	MatchBy             string
	OfflineAfterMinutes int
}

type Config struct {
	HTTP     HTTP
	DB       DB
	Redis    Redis
	JWT      JWT
	Queue    Queue
	Machines Machines
}

func (q Queue) SyncDelay() time.Duration {
	return time.Duration(q.SyncDelaySeconds) * time.Second
}

func (m Machines) OfflineAfter() time.Duration {
	return time.Duration(m.OfflineAfterMinutes) * time.Minute
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.db.host", "127.0.0.1")
	v.SetDefault("server.db.port", 3306)
	v.SetDefault("server.db.user", "root")
	v.SetDefault("server.db.pass", "")
	v.SetDefault("server.db.name", "mirage")
	v.SetDefault("server.redis.addr", "")
	v.SetDefault("server.queue.sync_delay_seconds", 10)
	v.SetDefault("server.machines.match_by", "")
	v.SetDefault("server.machines.offline_after_minutes", 30)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{
		HTTP: HTTP{Host: v.GetString("server.host"), Port: v.GetInt("server.port")},
		DB: DB{
			Host: v.GetString("server.db.host"),
			Port: v.GetInt("server.db.port"),
			User: v.GetString("server.db.user"),
			Pass: v.GetString("server.db.pass"),
			Name: v.GetString("server.db.name"),
		},
		Redis: Redis{Addr: v.GetString("server.redis.addr")},
		Queue: Queue{SyncDelaySeconds: v.GetInt("server.queue.sync_delay_seconds")},
		Machines: Machines{
			MatchBy:             v.GetString("server.machines.match_by"),
			OfflineAfterMinutes: v.GetInt("server.machines.offline_after_minutes"),
		},
	}
	if cfg.Queue.SyncDelaySeconds <= 0 {
		cfg.Queue.SyncDelaySeconds = 10
	}
	if cfg.Machines.OfflineAfterMinutes <= 0 {
		cfg.Machines.OfflineAfterMinutes = 30
	}
	cfg.JWT.Secret = v.GetString("server.jwt.secret")
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = "dev-secret"
	}
	cfg.JWT.Issuer = v.GetString("server.jwt.issuer")
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "mirage"
	}
	cfg.JWT.ExpMin = v.GetInt("server.jwt.exp_min")
	if cfg.JWT.ExpMin <= 0 {
		cfg.JWT.ExpMin = 60
	}
	return cfg, nil
}
