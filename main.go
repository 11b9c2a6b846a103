package main

import (
	"context"
	"github.com/jinzhu/configor"
	"github.com/satori/go.uuid"
	"log"
	"os"
	"os/signal"
	"standoff/game"
	"standoff/server"
	"syscall"
	"time"
)

func main()  {

	config := &server.Config{}
	if err := configor.Load(config, "config.yml"); err != nil {
		log.Fatalf("Config could not be loaded: %v", err)
	}
	if config.NodeID == "" {
		config.NodeID = uuid.NewV4().String()
	}

	logger := server.NewLogger(config)
	defer logger.Sync()

	stats, err := server.NewStatsHolder()
	if err != nil {
		logger.Fatalw("Stats could not be initialized", "error", err)
	}

	db, err := server.ConnectDB(config)
	if err != nil {
		logger.Fatalw("Database connection failed", "error", err)
	}

	redis, err := server.ConnectRedis(config)
	if err != nil {
		logger.Fatalw("Redis connection failed", "error", err)
	}

	partitioner := server.NewPartitioner(config)
	contexts := server.NewContextHolder(config, stats)
	gameHolder := server.NewGameHolder(config)
	sessionHolder := server.NewSessionHolder(config, gameHolder)

	leaderboard := server.NewLeaderboard(db, config)
	profiles := server.NewRedisProfileStore(redis, config, logger)
	push := server.NewPushService(db, config, logger)
	recorder := server.NewResultRecorder(db, config, leaderboard, profiles, push, sessionHolder, logger)

	standoff := game.NewStandoff(game.RulesFromConfig(config), partitioner, contexts, game.Options{
		TickInterval: time.Duration(config.MatchConfig.TickInterval) * time.Millisecond,
		Recorder: recorder,
		Stats: stats,
	}, logger)
	gameHolder.Add(standoff)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubsub, err := server.NewPubSub(config, sessionHolder, logger, ctx)
	if err != nil {
		logger.Fatalw("PubSub could not be initialized", "error", err)
	}

	matchmaker := server.NewLocalMatchMaker(redis, logger)
	pipeline := server.NewPipeline(config, gameHolder, sessionHolder, matchmaker, pubsub, profiles, logger)

	s := server.StartServer(sessionHolder, gameHolder, config, db, pipeline, leaderboard, stats, logger)

	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Infow("Startup was completed", "nodeID", config.NodeID, "port", config.Port)

	<-c

	logger.Info("Shutting down")
	s.Stop()
	sessionHolder.Stop()
	recorder.Wait()
	if db != nil {
		db.Close()
	}
	if redis != nil {
		_ = redis.Close()
	}

}
