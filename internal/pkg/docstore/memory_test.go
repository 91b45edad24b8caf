package docstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tick struct {
	t time.Time
}

func (c *tick) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestStore() *MemoryStore {
	clock := &tick{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	n := 0
	return NewMemoryStore(WithClock(clock.now), WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("doc-%03d", n)
	}))
}

type drive struct {
	Company string  `json:"companyName"`
	Min     float64 `json:"cgpaCriteria"`
	Status  string  `json:"status"`
}

func receive(t *testing.T, sub *Subscription) []*Document {
	t.Helper()
	select {
	case docs, ok := <-sub.Snapshots():
		require.True(t, ok, "subscription closed")
		return docs
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
		return nil
	}
}

func TestMemoryStore_CreateGetUpdate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	id, err := s.Create(ctx, "placementDrives", drive{Company: "Acme", Min: 7, Status: "active"})
	require.NoError(t, err)

	doc, err := s.Get(ctx, "placementDrives", id)
	require.NoError(t, err)
	assert.Equal(t, "Acme", doc.Data["companyName"])
	assert.Equal(t, 7.0, doc.Data["cgpaCriteria"])

	require.NoError(t, s.Update(ctx, "placementDrives", id, map[string]any{"status": "closed"}))

	doc, err = s.Get(ctx, "placementDrives", id)
	require.NoError(t, err)
	var got drive
	require.NoError(t, doc.DataTo(&got))
	assert.Equal(t, drive{Company: "Acme", Min: 7, Status: "closed"}, got)
	assert.True(t, doc.UpdateTime.After(doc.CreateTime))
}

func TestMemoryStore_MissingDocument(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	_, err := s.Get(ctx, "applications", "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.Update(ctx, "applications", "nope", map[string]any{"status": "Approved"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ReturnedDocumentsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	id, err := s.Create(ctx, "placementDrives", drive{Company: "Acme"})
	require.NoError(t, err)

	doc, err := s.Get(ctx, "placementDrives", id)
	require.NoError(t, err)
	doc.Data["companyName"] = "Changed"

	again, err := s.Get(ctx, "placementDrives", id)
	require.NoError(t, err)
	assert.Equal(t, "Acme", again.Data["companyName"])
}

func TestMemoryStore_QueryFiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	for _, d := range []drive{
		{Company: "B", Min: 8, Status: "active"},
		{Company: "A", Min: 6, Status: "closed"},
		{Company: "C", Min: 7, Status: "active"},
	} {
		_, err := s.Create(ctx, "placementDrives", d)
		require.NoError(t, err)
	}

	active, err := s.Query(ctx, "placementDrives", []Filter{Where("status", "active")}, nil)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "B", active[0].Data["companyName"])
	assert.Equal(t, "C", active[1].Data["companyName"])

	byMin, err := s.Query(ctx, "placementDrives", nil, &OrderBy{Field: "cgpaCriteria"})
	require.NoError(t, err)
	require.Len(t, byMin, 3)
	assert.Equal(t, []any{"A", "C", "B"}, []any{byMin[0].Data["companyName"], byMin[1].Data["companyName"], byMin[2].Data["companyName"]})

	newest, err := s.Query(ctx, "placementDrives", nil, &OrderBy{Field: CreateTimeField, Desc: true})
	require.NoError(t, err)
	assert.Equal(t, "C", newest[0].Data["companyName"])

	numeric, err := s.Query(ctx, "placementDrives", []Filter{Where("cgpaCriteria", 8)}, nil)
	require.NoError(t, err)
	require.Len(t, numeric, 1)
	assert.Equal(t, "B", numeric[0].Data["companyName"])
}

func TestMemoryStore_SubscribeDeliversInitialAndChanges(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	_, err := s.Create(ctx, "applications", map[string]any{"studentId": "s1", "status": "Applied"})
	require.NoError(t, err)
	_, err = s.Create(ctx, "applications", map[string]any{"studentId": "s2", "status": "Applied"})
	require.NoError(t, err)

	sub, err := s.Subscribe(ctx, "applications", []Filter{Where("studentId", "s1")})
	require.NoError(t, err)
	defer sub.Cancel()

	initial := receive(t, sub)
	require.Len(t, initial, 1)
	id := initial[0].ID

	require.NoError(t, s.Update(ctx, "applications", id, map[string]any{"status": "Approved"}))

	updated := receive(t, sub)
	require.Len(t, updated, 1)
	assert.Equal(t, "Approved", updated[0].Data["status"])
}

func TestMemoryStore_SubscriptionKeepsNewestSnapshot(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	id, err := s.Create(ctx, "applications", map[string]any{"status": "Applied"})
	require.NoError(t, err)

	sub, err := s.Subscribe(ctx, "applications", nil)
	require.NoError(t, err)
	defer sub.Cancel()

	for _, status := range []string{"On Hold", "Rejected", "Approved"} {
		require.NoError(t, s.Update(ctx, "applications", id, map[string]any{"status": status}))
	}

	docs := receive(t, sub)
	require.Len(t, docs, 1)
	assert.Equal(t, "Approved", docs[0].Data["status"])
}

func TestMemoryStore_CancelReleasesSubscription(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	sub, err := s.Subscribe(ctx, "applications", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, s.SubscriberCount("applications"))

	sub.Cancel()
	sub.Cancel()

	assert.Equal(t, 0, s.SubscriberCount("applications"))
	<-sub.Done()

	// The initial snapshot may still be buffered; the channel must then close.
	for range sub.Snapshots() {
	}
}

func TestMemoryStore_ContextCancelEndsSubscription(t *testing.T) {
	s := newTestStore()
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := s.Subscribe(ctx, "applications", nil)
	require.NoError(t, err)

	cancel()

	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("subscription not cancelled with its context")
	}
	assert.Eventually(t, func() bool { return s.SubscriberCount("applications") == 0 }, time.Second, 10*time.Millisecond)
}

func TestMemoryStore_Close(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	sub, err := s.Subscribe(ctx, "applications", nil)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	<-sub.Done()

	_, err = s.Create(ctx, "applications", map[string]any{})
	assert.ErrorIs(t, err, ErrClosed)
}
