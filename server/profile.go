package server

import (
	"context"
	"github.com/mediocregopher/radix/v3"
	"github.com/pkg/errors"
	"strconv"
	"time"
)

const (
	PROFILE_STATUS_KNOWN = "known"
	PROFILE_STATUS_UNAVAILABLE = "unavailable"
)

//ProfileStatus is the wallet side of an identity. Status is unavailable when the store could not answer in time.
type ProfileStatus struct {
	Status string `json:"status"`
	Wallet int64 `json:"wallet"`
	Tickets int64 `json:"tickets"`
	RankedPoints int64 `json:"ranked_points"`
}

func UnknownProfile() *ProfileStatus {
	return &ProfileStatus{Status: PROFILE_STATUS_UNAVAILABLE}
}

func (p *ProfileStatus) Known() bool {
	return p != nil && p.Status == PROFILE_STATUS_KNOWN
}

//ProfileStore is the opaque key value store profiles live in. Token is passed through untouched.
type ProfileStore interface {
	Fetch(ctx context.Context, token string, userID string) *ProfileStatus
	AddRankedPoints(ctx context.Context, token string, userID string, delta int64) error
}

type RedisProfileStore struct {
	redis radix.Client
	keyPrefix string
	timeout time.Duration
	logger *Logger
}

func NewRedisProfileStore(redis radix.Client, config *Config, logger *Logger) *RedisProfileStore {
	return &RedisProfileStore{
		redis: redis,
		keyPrefix: config.ProfileConfig.KeyPrefix,
		timeout: time.Duration(config.ProfileConfig.TimeoutMs) * time.Millisecond,
		logger: logger,
	}
}

func (s *RedisProfileStore) key(userID string) string {
	return s.keyPrefix + userID
}

//do runs the action but gives up once the timeout or the context expires. The action keeps running in background then.
func (s *RedisProfileStore) do(ctx context.Context, action radix.Action) error {
	if s.redis == nil {
		return errors.New("profile store is not configured")
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		done <- s.redis.Do(action)
	}()

	select {
	case err := <-done:
		return errors.WithStack(err)
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "profile store did not answer")
	}
}

func (s *RedisProfileStore) Fetch(ctx context.Context, token string, userID string) *ProfileStatus {
	fields := make(map[string]string)
	if err := s.do(ctx, radix.Cmd(&fields, "HGETALL", s.key(userID))); err != nil {
		s.logger.Warnw("Profile could not be fetched", "userID", userID, "error", err)
		return UnknownProfile()
	}
	return profileFromHash(fields)
}

func (s *RedisProfileStore) AddRankedPoints(ctx context.Context, token string, userID string, delta int64) error {
	err := s.do(ctx, radix.Cmd(nil, "HINCRBY", s.key(userID), "ranked_points", strconv.FormatInt(delta, 10)))
	if err != nil {
		return errors.Wrapf(err, "ranked points of %s", userID)
	}
	return nil
}

func profileFromHash(fields map[string]string) *ProfileStatus {
	parse := func(name string) int64 {
		v, err := strconv.ParseInt(fields[name], 10, 64)
		if err != nil {
			return 0
		}
		return v
	}
	return &ProfileStatus{
		Status: PROFILE_STATUS_KNOWN,
		Wallet: parse("wallet"),
		Tickets: parse("tickets"),
		RankedPoints: parse("ranked_points"),
	}
}
