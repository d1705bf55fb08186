package eventbus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	defer b.Close()
	sub := b.Subscribe()
	b.Publish(RecordEvent{RecordID: "r1", Command: "/echo", Success: true})
	select {
	case ev := <-sub:
		re, ok := ev.(RecordEvent)
		if !ok {
			t.Fatalf("unexpected event type %T", ev)
		}
		if re.RecordID != "r1" || !re.Success {
			t.Errorf("unexpected event: %#v", re)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := New()
	defer b.Close()
	sub := b.Subscribe()
	b.Unsubscribe(sub)
	if _, ok := <-sub; ok {
		t.Fatal("channel should be closed")
	}
}

func TestPublishAfterCloseIsNoop(t *testing.T) {
	b := New()
	sub := b.Subscribe()
	b.Close()
	b.Publish(BatchEvent{BatchID: "b1"})
	if _, ok := <-sub; ok {
		t.Fatal("channel should be closed")
	}
}
