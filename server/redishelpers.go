package server

import (
	"github.com/mediocregopher/radix/v3"
	"github.com/pkg/errors"
)

//ConnectRedis returns nil client when redis is not configured
func ConnectRedis(config *Config) (radix.Client, error) {
	if config.RedisConfig.ConnString == "" {
		return nil, nil
	}

	if config.RedisConfig.CluesterEnabled {
		cluster, err := radix.NewCluster([]string{config.RedisConfig.ConnString})
		if err != nil {
			return nil, errors.Wrap(err, "Redis cluster connection failed")
		}
		return cluster, nil
	}

	size := config.RedisConfig.PoolSize
	if size < 1 {
		size = 1
	}
	pool, err := radix.NewPool("tcp", config.RedisConfig.ConnString, size)
	if err != nil {
		return nil, errors.Wrap(err, "Redis connection failed")
	}
	return pool, nil
}
