package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestActionLogPublish(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)
	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := Connect(ctx, url)
	require.NoError(t, err)
	defer client.Close()

	log := NewActionLog(client, "")
	assert.Equal(t, DefaultQueueName, log.Queue())

	rec := BoardActionRecord{
		SessionID:     uuid.New(),
		ActionIndex:   1,
		TeamID:        "team-1",
		QuestionID:    "q-1",
		ActionType:    "question_resolved",
		ActionPayload: map[string]interface{}{"delta": float64(300)},
		Timestamp:     time.Now().UnixMilli(),
	}
	require.NoError(t, log.Publish(ctx, rec))

	res, err := client.BLPop(ctx, time.Second, log.Queue()).Result()
	require.NoError(t, err)
	require.Len(t, res, 2)

	var got BoardActionRecord
	require.NoError(t, json.Unmarshal([]byte(res[1]), &got))
	assert.Equal(t, rec, got)
}

func TestConnectBadURL(t *testing.T) {
	_, err := Connect(context.Background(), "not a url")
	assert.Error(t, err)
}
