package events_test

import (
	"testing"

	"github.com/ardanlabs/namegen/foundation/events"
)

func Test_SendReceive(t *testing.T) {
	evts := events.New()

	ch1 := evts.Acquire("1")
	ch2 := evts.Acquire("2")

	if same := evts.Acquire("1"); same != ch1 {
		t.Fatalf("Should get back the same channel for the same id.")
	}

	evts.Send(events.Event{Action: "read", Status: "Read OK."})

	for i, ch := range []chan events.Event{ch1, ch2} {
		e := <-ch
		if e.Status != "Read OK." || e.Time.IsZero() {
			t.Logf("got: %+v", e)
			t.Fatalf("Should receive the event on channel %d.", i)
		}
	}

	if err := evts.Release("1"); err != nil {
		t.Fatalf("Should be able to release the channel: %s", err)
	}

	if err := evts.Release("1"); err == nil {
		t.Fatalf("Should not be able to release the channel twice.")
	}

	if _, open := <-ch1; open {
		t.Fatalf("Should close the released channel.")
	}

	evts.Shutdown()
	if evts.Subscribers() != 0 {
		t.Fatalf("Should remove all channels on shutdown.")
	}

	if _, open := <-ch2; open {
		t.Fatalf("Should close the channels on shutdown.")
	}
}

func Test_SendDoesNotBlock(t *testing.T) {
	evts := events.New()
	evts.Acquire("slow")

	for range 500 {
		evts.Send(events.Event{Action: "save"})
	}
}
