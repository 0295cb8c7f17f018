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

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/hibiken/asynq"
	"github.com/hibiken/asynqmon"

	"github.com/paygate-io/paygate/config"
	"github.com/paygate-io/paygate/internal/notification"
	"github.com/paygate-io/paygate/internal/redisdb"
)

// processOrderSettlement consumes one settlement task. The task id is the
// order's job id; the order row is the single source of truth, so the task
// body stays empty and the order is re-read here. Settlement itself (chain
// transfers, exchange trades) is driven by the processing peer; this worker
// hands the order over and reports the outcome.
func (b *paygateInstance) processOrderSettlement(ctx context.Context, t *asynq.Task) error {
	ctx, span := otel.Tracer("paygate.workers").Start(ctx, "Process Settlement Job From Redis Queue")
	defer span.End()

	jobID, ok := asynq.GetTaskID(ctx)
	if !ok {
		return fmt.Errorf("settlement task without id")
	}

	order, err := b.paygate.GetOrderByJobID(ctx, jobID)
	if err != nil {
		// A job without a matching order row means the store and the
		// queue disagree; worth a human look.
		notification.NotifyError(fmt.Errorf("settlement job %s could not load its order: %w", jobID, err))
		return err
	}

	if err := b.paygate.Booker().Call(ctx, "process_order", order, nil); err != nil {
		logrus.Infof("Order %s pushed back for retry due to error: %v", order.ID, err)
		return err
	}

	log.Println(" [*] Order handed to booker", order.ID)
	return nil
}

func initializeQueues() map[string]int {
	cfg, err := config.Fetch()
	if err != nil {
		log.Printf("Error fetching config, using defaults: %v", err)
		return nil
	}

	queues := make(map[string]int)
	queues[cfg.Queue.PaymentQueue] = 1
	return queues
}

func initializeWorkerServer(conf *config.Configuration, queues map[string]int) (*asynq.Server, error) {
	redisOption, err := redisdb.ParseRedisURL(conf.Redis.Dns, conf.Redis.SkipTLSVerify)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %v", err)
	}

	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:      redisOption.Addr,
			Password:  redisOption.Password,
			DB:        redisOption.DB,
			TLSConfig: redisOption.TLSConfig,
		},
		asynq.Config{
			Concurrency: 1,
			Queues:      queues,
		},
	), nil
}

func initializeTaskHandlers(b *paygateInstance, mux *asynq.ServeMux) {
	cfg, err := config.Fetch()
	if err != nil {
		log.Printf("Error fetching config, using defaults: %v", err)
		return
	}

	mux.HandleFunc(cfg.Queue.PaymentQueue, b.processOrderSettlement)
}

// workerCommands defines the "workers" command to start the settlement
// worker listening on the payment queue.
func workerCommands(b *paygateInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "start paygate workers",
		Run: func(cmd *cobra.Command, args []string) {
			conf, err := config.Fetch()
			if err != nil {
				log.Fatal("Error fetching config:", err)
			}

			queues := initializeQueues()

			srv, err := initializeWorkerServer(conf, queues)
			if err != nil {
				log.Fatal(err)
			}

			mux := asynq.NewServeMux()
			initializeTaskHandlers(b, mux)

			// Queue dashboard and health checks.
			redisOption, _ := redisdb.ParseRedisURL(conf.Redis.Dns, conf.Redis.SkipTLSVerify)
			h := asynqmon.New(asynqmon.Options{
				RootPath: "/monitoring",
				RedisConnOpt: asynq.RedisClientOpt{
					Addr:      redisOption.Addr,
					Password:  redisOption.Password,
					DB:        redisOption.DB,
					TLSConfig: redisOption.TLSConfig,
				},
			})

			go func() {
				monitoringAddr := fmt.Sprintf(":%s", conf.Queue.MonitoringPort)
				log.Printf("Asynqmon server listening on %s/monitoring", monitoringAddr)
				if err := http.ListenAndServe(monitoringAddr, h); err != nil {
					log.Fatalf("could not start asynqmon server: %v", err)
				}
			}()

			if err := srv.Run(mux); err != nil {
				log.Fatalf("could not run server: %v", err)
			}
		},
	}

	return cmd
}
