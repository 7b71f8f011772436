// Package job runs background tasks on an asynq queue backed by Redis.
//
// Collision update events are delivered through it: the request enqueues a
// task and returns, and a worker publishes the event, retrying on failure.
package job

import (
	"github.com/deppfellow/crashmap/internal/config"
	"github.com/deppfellow/crashmap/internal/events"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// JobService owns the asynq client (enqueue) and server (workers).
type JobService struct {
	Client *asynq.Client

	server    *asynq.Server
	logger    *zerolog.Logger
	publisher events.Publisher
}

func redisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// NewJobService creates the queue client and worker server. Workers hand
// collision updates to publisher.
func NewJobService(logger *zerolog.Logger, cfg *config.Config, publisher events.Publisher) *JobService {
	client := asynq.NewClient(redisOpt(cfg.Redis))

	server := asynq.NewServer(
		redisOpt(cfg.Redis),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				QueueEvents: 6,
				"default":   3,
				"low":       1,
			},
			Logger:   newAsynqLogger(logger),
			LogLevel: asynq.WarnLevel,
		},
	)

	return &JobService{
		Client:    client,
		server:    server,
		logger:    logger,
		publisher: publisher,
	}
}

// Start registers task handlers and starts the workers. It does not block.
func (j *JobService) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskCollisionUpdated, j.handleCollisionUpdatedTask)

	j.logger.Info().Msg("starting background job server")

	return j.server.Start(mux)
}

// Stop waits for running tasks and closes the client.
func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	j.server.Shutdown()
	if err := j.Client.Close(); err != nil {
		j.logger.Error().Err(err).Msg("failed to close job client")
	}
}
