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
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paygate-io/paygate/internal/apierror"
	"github.com/paygate-io/paygate/model"
)

func inOrderRequest() *model.Order {
	from := "0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359"
	to := "0x9858effd232b4033e47d90003d41ec34ecaeda94"
	order := &model.Order{
		ID:   "abc123",
		Type: "TRANSFER",
		InTx: model.Tx{
			Coin:        "USDT",
			FromAddress: &from,
			ToAddress:   &to,
		},
		OutTx: model.Tx{Coin: "FINTEH.USDT"},
	}
	return order
}

func TestNewInOrderChecksumsAndEnqueues(t *testing.T) {
	mockQueueConfig()

	var stored *model.Order
	datasource := &MockDataSource{
		mockCreateOrder: func(_ context.Context, order *model.Order) (*model.Order, error) {
			order.JobID = "job_c6a3ee70-1bd8-4f42-91a5-bb2bc08fb217"
			stored = order
			return order, nil
		},
	}
	client := &fakeEnqueuer{}
	service := &Paygate{
		datasource: datasource,
		queue:      &Queue{Client: client, Inspector: &fakeInspector{infoErr: asynq.ErrTaskNotFound}},
	}

	created, err := service.NewInOrder(context.Background(), inOrderRequest())
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, model.FlowIn, created.Flow)
	assert.Equal(t, "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359", *created.InTx.FromAddress)
	assert.Equal(t, "0x9858EfFD232B4033E47d90003D41EC34EcaEda94", *created.InTx.ToAddress)
	assert.Len(t, client.enqueued, 1)
}

func TestNewInOrderRejectsMalformedAddress(t *testing.T) {
	mockQueueConfig()

	request := inOrderRequest()
	bad := "not-an-address"
	request.InTx.ToAddress = &bad

	service := &Paygate{
		datasource: &MockDataSource{
			mockCreateOrder: func(_ context.Context, _ *model.Order) (*model.Order, error) {
				t.Fatal("store must not be reached for malformed input")
				return nil, nil
			},
		},
	}

	_, err := service.NewInOrder(context.Background(), request)
	require.Error(t, err)
	var apiErr apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierror.ErrInvalidInput, apiErr.Code)
}

func TestNewInOrderIsIdempotentForSettledOrder(t *testing.T) {
	mockQueueConfig()

	existing := inOrderRequest()
	existing.Flow = model.FlowIn
	existing.JobID = "job_c6a3ee70-1bd8-4f42-91a5-bb2bc08fb217"

	datasource := &MockDataSource{
		mockCreateOrder: func(_ context.Context, _ *model.Order) (*model.Order, error) {
			return existing, nil
		},
	}
	client := &fakeEnqueuer{}
	inspector := &fakeInspector{info: &asynq.TaskInfo{ID: existing.JobID, State: asynq.TaskStateCompleted}}
	service := &Paygate{
		datasource: datasource,
		queue:      &Queue{Client: client, Inspector: inspector},
	}

	created, err := service.NewInOrder(context.Background(), inOrderRequest())
	require.NoError(t, err)
	assert.Equal(t, existing.JobID, created.JobID)
	assert.Empty(t, client.enqueued, "settled order must not mint a second job")
}

func TestNewInOrderRestartsFailedJob(t *testing.T) {
	mockQueueConfig()

	existing := inOrderRequest()
	existing.JobID = "job_c6a3ee70-1bd8-4f42-91a5-bb2bc08fb217"

	datasource := &MockDataSource{
		mockCreateOrder: func(_ context.Context, _ *model.Order) (*model.Order, error) {
			return existing, nil
		},
	}
	client := &fakeEnqueuer{}
	inspector := &fakeInspector{info: &asynq.TaskInfo{ID: existing.JobID, State: asynq.TaskStateArchived}}
	service := &Paygate{
		datasource: datasource,
		queue:      &Queue{Client: client, Inspector: inspector},
	}

	_, err := service.NewInOrder(context.Background(), inOrderRequest())
	require.NoError(t, err)
	assert.Equal(t, []string{existing.JobID}, inspector.ran)
	assert.Empty(t, client.enqueued)
}

func TestNewInOrderSurfacesQueueOutage(t *testing.T) {
	mockQueueConfig()

	datasource := &MockDataSource{
		mockCreateOrder: func(_ context.Context, order *model.Order) (*model.Order, error) {
			order.JobID = "job_c6a3ee70-1bd8-4f42-91a5-bb2bc08fb217"
			return order, nil
		},
	}
	service := &Paygate{
		datasource: datasource,
		queue: &Queue{
			Client:    &fakeEnqueuer{},
			Inspector: &fakeInspector{infoErr: errors.New("redis is down")},
		},
	}

	_, err := service.NewInOrder(context.Background(), inOrderRequest())
	require.Error(t, err)
	assert.True(t, apierror.IsTransient(err), "queue outage must read as retryable so intake converges on replay")
}

func TestNewOutOrderSetsFlowAndChecksumsOutLeg(t *testing.T) {
	mockQueueConfig()

	to := "0xde709f2102306220921060314715629080e2fb77"
	request := &model.Order{
		ID:    "def456",
		Type:  "TRANSFER",
		InTx:  model.Tx{Coin: "FINTEH.USDT"},
		OutTx: model.Tx{Coin: "USDT", ToAddress: &to},
	}

	datasource := &MockDataSource{
		mockCreateOrder: func(_ context.Context, order *model.Order) (*model.Order, error) {
			order.JobID = "job_11111111-2222-3333-4444-555555555555"
			return order, nil
		},
	}
	client := &fakeEnqueuer{}
	service := &Paygate{
		datasource: datasource,
		queue:      &Queue{Client: client, Inspector: &fakeInspector{infoErr: asynq.ErrTaskNotFound}},
	}

	created, err := service.NewOutOrder(context.Background(), request)
	require.NoError(t, err)
	assert.Equal(t, model.FlowOut, created.Flow)
	assert.Equal(t, "0xde709f2102306220921060314715629080e2fb77", *created.OutTx.ToAddress)
	assert.Len(t, client.enqueued, 1)
}

func TestValidateAddressEchoesFields(t *testing.T) {
	service := &Paygate{}
	out := service.ValidateAddress(context.Background(), map[string]interface{}{
		"coin":    "USDT",
		"address": "0x9858EfFD232B4033E47d90003D41EC34EcaEda94",
	})
	assert.Equal(t, true, out["is_valid"])
	assert.Equal(t, "USDT", out["coin"])
}
