package eventbridge

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"strategymap/domain/events"
)

type fakeEventBridge struct {
	calls  []*eventbridge.PutEventsInput
	failed int32
}

func (f *fakeEventBridge) PutEvents(_ context.Context, params *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	f.calls = append(f.calls, params)
	out := &eventbridge.PutEventsOutput{FailedEntryCount: f.failed}
	for range params.Entries {
		entry := types.PutEventsResultEntry{}
		if f.failed > 0 {
			entry.ErrorCode = aws.String("InternalFailure")
		}
		out.Entries = append(out.Entries, entry)
	}
	return out, nil
}

func TestPublisher_Publish(t *testing.T) {
	client := &fakeEventBridge{}
	p := NewPublisher(client, "strategy-bus", zap.NewNop())
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, p.Publish(context.Background(), events.NewStrategySynced("acme", 1, 4, at)))
	require.Len(t, client.calls, 1)

	entry := client.calls[0].Entries[0]
	assert.Equal(t, "strategy-bus", aws.ToString(entry.EventBusName))
	assert.Equal(t, Source, aws.ToString(entry.Source))
	assert.Equal(t, events.TypeStrategySaved, aws.ToString(entry.DetailType))

	var detail map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(entry.Detail)), &detail))
	assert.Equal(t, "acme", detail["client_id"])
	assert.Equal(t, 4.0, detail["node_count"])
}

func TestPublisher_Batches(t *testing.T) {
	client := &fakeEventBridge{}
	p := NewPublisher(client, "bus", nil)

	batch := make([]events.DomainEvent, 23)
	for i := range batch {
		batch[i] = events.NewStrategySynced("acme", i, 1, time.Now())
	}

	require.NoError(t, p.PublishBatch(context.Background(), batch))
	require.Len(t, client.calls, 3)
	assert.Len(t, client.calls[0].Entries, 10)
	assert.Len(t, client.calls[2].Entries, 3)

	require.NoError(t, p.PublishBatch(context.Background(), nil))
	assert.Len(t, client.calls, 3)
}

func TestPublisher_FailedEntries(t *testing.T) {
	client := &fakeEventBridge{failed: 1}
	p := NewPublisher(client, "bus", nil)

	err := p.Publish(context.Background(), events.NewStrategySynced("acme", 1, 1, time.Now()))
	assert.Error(t, err)
}
