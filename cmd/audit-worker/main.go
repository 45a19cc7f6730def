package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/sanjitgh/authorization-server-side/internal/audit"
	"github.com/sanjitgh/authorization-server-side/internal/config"
	"github.com/sanjitgh/authorization-server-side/internal/logger"
	redisclient "github.com/sanjitgh/authorization-server-side/internal/redis"
)

var (
	log           *logger.Logger
	streamName    string
	consumerGroup string
	consumerName  string
	batchSize     int
	pollInterval  time.Duration
	blockTime     time.Duration
)

func main() {
	log = logger.New("audit-worker")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: %v", err)
	}

	streamName = cfg.Redis.StreamName
	consumerGroup = cfg.Audit.ConsumerGroup
	consumerName = cfg.Audit.ConsumerName
	batchSize = cfg.Audit.BatchSize
	pollInterval = cfg.Audit.PollInterval
	blockTime = cfg.Audit.BlockTime

	ctx := context.Background()

	redisConn, err := redisclient.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis: %v", err)
	}
	defer redisConn.Close()

	chClient, err := audit.NewClient(cfg.ClickHouse)
	if err != nil {
		log.Fatal("Failed to connect to ClickHouse: %v", err)
	}
	defer chClient.Close()

	if err := chClient.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to ensure ClickHouse schema: %v", err)
	}

	err = redisConn.GetClient().XGroupCreateMkStream(ctx, streamName, consumerGroup, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		log.Fatal("Failed to create consumer group: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Info("Processing auth events")
	go processEvents(ctx, redisConn.GetClient(), chClient)

	<-sigChan
	log.Info("Shutting down")
}

func processEvents(ctx context.Context, client *redislib.Client, chClient *audit.Client) {
	for {
		messages, err := client.XReadGroup(ctx, &redislib.XReadGroupArgs{
			Group:    consumerGroup,
			Consumer: consumerName,
			Streams:  []string{streamName, ">"},
			Count:    int64(batchSize),
			Block:    blockTime,
		}).Result()

		if err != nil {
			if err == redislib.Nil {
				continue
			}
			log.Error("Failed to read from stream: %v", err)
			time.Sleep(pollInterval)
			continue
		}

		for _, stream := range messages {
			if len(stream.Messages) == 0 {
				continue
			}

			events := make([]audit.AuthEvent, 0, len(stream.Messages))
			messageIDs := make([]string, 0, len(stream.Messages))

			for _, msg := range stream.Messages {
				event, ok := audit.FromStreamValues(msg.Values)
				if !ok {
					log.Warn("Invalid message format: %v", msg.ID)
					continue
				}

				events = append(events, event)
				messageIDs = append(messageIDs, msg.ID)
			}

			if len(events) > 0 {
				if err := chClient.InsertAuthEvents(ctx, events); err != nil {
					log.Error("Failed to write to ClickHouse: %v", err)
					continue
				}
				log.Debug("Stored %d auth events", len(events))
			}

			if len(messageIDs) > 0 {
				if err := client.XAck(ctx, streamName, consumerGroup, messageIDs...).Err(); err != nil {
					log.Error("Failed to acknowledge messages: %v", err)
				}
			}
		}
	}
}
