/*
Copyright 2026 Paygate Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package paygate

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/paygate-io/paygate/config"
	"github.com/paygate-io/paygate/internal/apierror"
	"github.com/paygate-io/paygate/internal/redisdb"
	"github.com/paygate-io/paygate/model"
)

const (
	// JobTimeout is the settlement ceiling the queue enforces on each job,
	// independent of the lifetime of the request that enqueued it.
	JobTimeout = time.Hour

	// completedJobRetention keeps finished tasks visible to the inspector.
	// Without it a settled order would look absent on re-submission and a
	// second job would be minted for work already done.
	completedJobRetention = 7 * 24 * time.Hour

	maxJobRetries = 5
)

// Queue couples order intake to the durable job queue. It owns the only
// writes this service ever makes to queue state: enqueue and retry. The
// settlement worker advances jobs through active/completed/archived on its
// own.
type Queue struct {
	Client    TaskEnqueuer
	Inspector TaskInspector
}

// TaskEnqueuer is the slice of asynq.Client the queue needs.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TaskInspector is the slice of asynq.Inspector the queue needs.
type TaskInspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
	RunTask(queue, id string) error
}

// NewQueue initializes a new Queue instance with the provided configuration.
func NewQueue(conf *config.Configuration) *Queue {
	redisOption, err := redisdb.ParseRedisURL(conf.Redis.Dns, conf.Redis.SkipTLSVerify)
	if err != nil {
		log.Fatalf("Error parsing Redis URL: %v", err)
	}

	queueOptions := asynq.RedisClientOpt{Addr: redisOption.Addr, Password: redisOption.Password, DB: redisOption.DB, TLSConfig: redisOption.TLSConfig}
	return &Queue{
		Client:    asynq.NewClient(queueOptions),
		Inspector: asynq.NewInspector(queueOptions),
	}
}

// EnsureOrderJob guarantees a durable settlement job exists for the order.
// It runs after the order's transaction has committed, so the queue never
// holds a job for state the store does not have. The state machine over the
// job id:
//
//	absent            -> enqueue with the fixed timeout ceiling
//	pending/scheduled/
//	retry/active/
//	completed         -> no-op, the order is already being handled
//	archived (failed) -> run the same task again, back to pending
//
// A crash between the order commit and the enqueue leaves no job behind;
// re-submitting the order converges because the store returns the existing
// order and this method then observes the job absent.
func (q *Queue) EnsureOrderJob(ctx context.Context, order *model.Order) error {
	cfg, err := config.Fetch()
	if err != nil {
		return err
	}

	info, err := q.Inspector.GetTaskInfo(cfg.Queue.PaymentQueue, order.JobID)
	switch {
	case errors.Is(err, asynq.ErrTaskNotFound), errors.Is(err, asynq.ErrQueueNotFound):
		return q.enqueueOrderJob(ctx, cfg.Queue.PaymentQueue, order)
	case err != nil:
		return apierror.NewAPIError(apierror.ErrUnavailable, "Settlement queue lookup failed", err)
	case info.State == asynq.TaskStateArchived:
		if err := q.Inspector.RunTask(cfg.Queue.PaymentQueue, order.JobID); err != nil {
			return apierror.NewAPIError(apierror.ErrUnavailable, "Failed to restart settlement job", err)
		}
		log.Printf(" [*] Restarted failed settlement job: %s", order.JobID)
		return nil
	default:
		return nil
	}
}

// enqueueOrderJob creates the job for a freshly committed order. The task
// carries no payload; the worker re-reads the order by the task id, so the
// row stays the single source of truth.
func (q *Queue) enqueueOrderJob(ctx context.Context, queueName string, order *model.Order) error {
	task := asynq.NewTask(queueName, nil,
		asynq.TaskID(order.JobID),
		asynq.Queue(queueName),
		asynq.Timeout(JobTimeout),
		asynq.Retention(completedJobRetention),
		asynq.MaxRetry(maxJobRetries),
	)
	info, err := q.Client.EnqueueContext(ctx, task)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			// A concurrent intake for the same order won the enqueue race.
			return nil
		}
		return apierror.NewAPIError(apierror.ErrUnavailable, "Failed to enqueue settlement job", err)
	}
	log.Printf(" [*] Successfully enqueued settlement job: %s for order %s", info.ID, order.ID)
	return nil
}
