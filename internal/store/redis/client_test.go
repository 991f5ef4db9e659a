package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepthink/internal/history"
	"deepthink/internal/store"
	"deepthink/internal/store/storetest"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := New(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close(context.Background()) })
	return client, mr
}

func TestStoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		client, _ := newTestClient(t)
		return client
	})
}

func TestNew_BadDSN(t *testing.T) {
	_, err := New(context.Background(), "http://localhost:6379")
	require.Error(t, err)
}

func TestKeysHoldJSONArrays(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)

	require.NoError(t, client.SaveGoal(ctx, store.Goal{ID: "g1", Title: "Ship it", Status: store.GoalActive}))
	require.NoError(t, client.SaveHistory(ctx, store.DecisionHistory, []history.Entry{
		{ID: "h1", EntityID: "d1", Action: history.ActionCreated, Description: "Created"},
	}))

	goals, err := mr.Get(KeyGoals)
	require.NoError(t, err)
	assert.Contains(t, goals, `"id":"g1"`)
	assert.Equal(t, byte('['), goals[0])

	entries, err := mr.Get(KeyDecisionHistory)
	require.NoError(t, err)
	assert.Contains(t, entries, `"entityId":"d1"`)
	assert.False(t, mr.Exists(KeyGoalHistory))
}

func TestCorruptKeyIsAnError(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)

	require.NoError(t, mr.Set(KeyValues, "not json"))
	_, err := client.LoadValues(ctx)
	require.Error(t, err)
}

func TestUnknownHistoryKind(t *testing.T) {
	client, _ := newTestClient(t)
	_, err := client.LoadHistory(context.Background(), store.HistoryKind("nope"))
	require.Error(t, err)
}
