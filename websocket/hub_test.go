// file: websocket/hub_test.go
package websocket

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-loket-queue/models"
)

// fakeProvider serves whatever snapshot the test last stored per loket.
type fakeProvider struct {
	mu    sync.Mutex
	snaps map[string]models.Snapshot
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{snaps: make(map[string]models.Snapshot)}
}

func (f *fakeProvider) set(s models.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snaps[s.Loket] = s
}

func (f *fakeProvider) Snapshot(loket string) models.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.snaps[loket]
	if !ok {
		return models.Snapshot{Loket: loket}
	}
	return s
}

func snapshot(loket string, rev uint64, queueNumbers ...string) models.Snapshot {
	s := models.Snapshot{Loket: loket, Revision: rev, Patients: []models.Patient{}}
	for _, qn := range queueNumbers {
		s.Patients = append(s.Patients, models.Patient{ID: qn, QueueNumber: qn, LoketNumber: loket, Status: models.StatusWaiting})
	}
	return s
}

func receive(t *testing.T, sub *Subscriber) models.Message {
	t.Helper()
	select {
	case msg, ok := <-sub.Messages():
		require.True(t, ok, "subscription closed unexpectedly")
		return msg
	case <-time.After(time.Second):
		t.Fatal("expected a message, none arrived")
	}
	return models.Message{}
}

func assertNoMessage(t *testing.T, sub *Subscriber) {
	t.Helper()
	select {
	case msg := <-sub.Messages():
		t.Fatalf("unexpected %s message", msg.Type)
	default:
	}
}

func TestSubscribe_SendsInitialSnapshotFirst(t *testing.T) {
	provider := newFakeProvider()
	provider.set(snapshot("1", 3, "A-001", "A-002"))
	hub := NewHub(provider)

	sub := hub.Subscribe("1")
	hub.Publish(snapshot("1", 4, "A-001", "A-002", "A-003"))

	first := receive(t, sub)
	assert.Equal(t, models.MessageInitial, first.Type)
	assert.Equal(t, uint64(3), first.Revision)
	assert.Len(t, first.Patients, 2)

	second := receive(t, sub)
	assert.Equal(t, models.MessageUpdate, second.Type)
	assert.Len(t, second.Patients, 3)
	assertNoMessage(t, sub)
}

func TestSubscribe_EmptyChannelStillGetsInitial(t *testing.T) {
	hub := NewHub(newFakeProvider())

	sub := hub.Subscribe("4")
	msg := receive(t, sub)
	assert.Equal(t, models.MessageInitial, msg.Type)
	assert.Equal(t, "4", msg.Loket)
	assert.NotNil(t, msg.Patients)
	assert.Empty(t, msg.Patients)
}

func TestPublish_FIFOPerSubscriber(t *testing.T) {
	hub := NewHub(newFakeProvider())
	sub := hub.Subscribe("1")
	receive(t, sub)

	for rev := uint64(1); rev <= 10; rev++ {
		hub.Publish(snapshot("1", rev))
	}
	for rev := uint64(1); rev <= 10; rev++ {
		assert.Equal(t, rev, receive(t, sub).Revision)
	}
}

func TestPublish_DiscardsStaleSnapshots(t *testing.T) {
	provider := newFakeProvider()
	provider.set(snapshot("1", 5, "A-001"))
	hub := NewHub(provider)
	sub := hub.Subscribe("1")
	receive(t, sub)

	hub.Publish(snapshot("1", 5))
	hub.Publish(snapshot("1", 4))
	assertNoMessage(t, sub)

	hub.Publish(snapshot("1", 7))
	hub.Publish(snapshot("1", 6))
	assert.Equal(t, uint64(7), receive(t, sub).Revision)
	assertNoMessage(t, sub)

	stats := hub.Stats()
	require.Len(t, stats.Channels, 1)
	assert.Equal(t, uint64(3), stats.Channels[0].Stale)
}

func TestPublish_ChannelsAreIndependent(t *testing.T) {
	hub := NewHub(newFakeProvider())
	one := hub.Subscribe("1")
	two := hub.Subscribe("2")
	receive(t, one)
	receive(t, two)

	hub.Publish(snapshot("2", 1, "B-001"))

	assertNoMessage(t, one)
	assert.Equal(t, "2", receive(t, two).Loket)
}

func TestPublish_SlowSubscriberDropsWithoutBlocking(t *testing.T) {
	orig := DefaultBufferSize
	DefaultBufferSize = 2
	defer func() { DefaultBufferSize = orig }()

	hub := NewHub(newFakeProvider())
	slow := hub.Subscribe("1")
	fast := hub.Subscribe("1")
	receive(t, fast)

	done := make(chan struct{})
	go func() {
		for rev := uint64(1); rev <= 5; rev++ {
			hub.Publish(snapshot("1", rev))
			<-fast.Messages()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	// slow still holds its initial message plus the first update.
	assert.Equal(t, models.MessageInitial, receive(t, slow).Type)
	assert.Equal(t, uint64(1), receive(t, slow).Revision)
	assertNoMessage(t, slow)

	stats := hub.Stats()
	assert.Equal(t, uint64(4), stats.Channels[0].Dropped)
}

func TestNotifyRecall_ReachesEverySubscriber(t *testing.T) {
	hub := NewHub(newFakeProvider())
	a := hub.Subscribe("1")
	b := hub.Subscribe("1")
	receive(t, a)
	receive(t, b)

	hub.NotifyRecall("1", models.Patient{QueueNumber: "A-001", LoketNumber: "1", Status: models.StatusCalled}, 0)

	for _, sub := range []*Subscriber{a, b} {
		msg := receive(t, sub)
		assert.Equal(t, models.MessageRecall, msg.Type)
		require.NotNil(t, msg.Patient)
		assert.Equal(t, "A-001", msg.Patient.QueueNumber)
	}
}

func TestNotifyRecall_SkipsSubscribersPastTheRecallRevision(t *testing.T) {
	hub := NewHub(newFakeProvider())
	sub := hub.Subscribe("1")
	receive(t, sub)

	// the patient was completed (revision 5) before the recall checked at 4 arrived
	hub.Publish(snapshot("1", 5))
	receive(t, sub)
	hub.NotifyRecall("1", models.Patient{QueueNumber: "A-001", LoketNumber: "1", Status: models.StatusCalled}, 4)
	assertNoMessage(t, sub)

	hub.NotifyRecall("1", models.Patient{QueueNumber: "A-002", LoketNumber: "1", Status: models.StatusCalled}, 5)
	msg := receive(t, sub)
	assert.Equal(t, models.MessageRecall, msg.Type)
	assert.Equal(t, "A-002", msg.Patient.QueueNumber)
	assert.Equal(t, uint64(1), hub.Stats().Channels[0].Stale)
}

func TestUnsubscribe_Idempotent(t *testing.T) {
	hub := NewHub(newFakeProvider())
	sub := hub.Subscribe("1")
	receive(t, sub)

	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)
	hub.Unsubscribe(nil)

	_, ok := <-sub.Messages()
	assert.False(t, ok, "messages channel is closed")

	hub.Publish(snapshot("1", 1))
	assert.Equal(t, 0, hub.Stats().Channels[0].Subscribers)
}

func TestPublish_ConcurrentSubscribersNeverStepBackwards(t *testing.T) {
	provider := newFakeProvider()
	hub := NewHub(provider)

	var wg sync.WaitGroup
	var mu sync.Mutex
	rev := uint64(0)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				mu.Lock()
				rev++
				s := snapshot("1", rev)
				provider.set(s)
				mu.Unlock()
				hub.Publish(s)
			}
		}()
	}

	subs := make([]*Subscriber, 0, 8)
	for i := 0; i < 8; i++ {
		subs = append(subs, hub.Subscribe("1"))
	}
	wg.Wait()

	for _, sub := range subs {
		hub.Unsubscribe(sub)
		var last uint64
		first := true
		for msg := range sub.Messages() {
			if first {
				assert.Equal(t, models.MessageInitial, msg.Type)
				first = false
			} else {
				assert.Greater(t, msg.Revision, last)
			}
			last = msg.Revision
		}
	}
}
