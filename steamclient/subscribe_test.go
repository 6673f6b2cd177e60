package steamclient

import (
	"testing"
	"time"

	"github.com/k64z/steamstacks/protocol"
)

func TestSubscribeDeliversMatchingTag(t *testing.T) {
	c := New()
	c.done = make(chan struct{})

	_, ch := c.Subscribe(EMsgClientPersonaState, nil)

	pkt := &Packet{EMsg: EMsgClientPersonaState, Header: &protocol.CMsgProtoBufHeader{}}
	c.handlePacket(pkt)

	select {
	case got := <-ch:
		if got != pkt {
			t.Errorf("got different packet than expected")
		}
	case <-time.After(time.Second):
		t.Fatal("Subscribe did not deliver matching packet within 1s")
	}
}

func TestSubscribeIgnoresMismatchedTag(t *testing.T) {
	c := New()
	c.done = make(chan struct{})

	_, ch := c.Subscribe(EMsgClientPersonaState, nil)
	c.handlePacket(&Packet{EMsg: EMsgClientFriendsList, Header: &protocol.CMsgProtoBufHeader{}})

	select {
	case <-ch:
		t.Fatal("Subscribe delivered a packet with a non-matching tag")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeAppliesPredicate(t *testing.T) {
	c := New()
	c.done = make(chan struct{})

	_, ch := c.Subscribe(EMsgClientPersonaState, func(pkt *Packet) bool {
		return pkt.Header.GetJobidTarget() == 7
	})

	c.handlePacket(&Packet{EMsg: EMsgClientPersonaState, Header: &protocol.CMsgProtoBufHeader{JobidTarget: protocol.Uint64(1)}})
	select {
	case <-ch:
		t.Fatal("predicate should have rejected job id 1")
	case <-time.After(50 * time.Millisecond):
	}

	match := &Packet{EMsg: EMsgClientPersonaState, Header: &protocol.CMsgProtoBufHeader{JobidTarget: protocol.Uint64(7)}}
	c.handlePacket(match)
	select {
	case got := <-ch:
		if got != match {
			t.Errorf("got different packet than expected")
		}
	case <-time.After(time.Second):
		t.Fatal("predicate should have accepted job id 7")
	}
}

func TestSubscribeFansOutToEveryMatchingSubscriber(t *testing.T) {
	c := New()
	c.done = make(chan struct{})

	_, chA := c.Subscribe(EMsgClientPersonaState, nil)
	_, chB := c.Subscribe(EMsgClientPersonaState, nil)

	pkt := &Packet{EMsg: EMsgClientPersonaState, Header: &protocol.CMsgProtoBufHeader{}}
	c.handlePacket(pkt)

	for name, ch := range map[string]<-chan *Packet{"A": chA, "B": chB} {
		select {
		case got := <-ch:
			if got != pkt {
				t.Errorf("subscriber %s got different packet than expected", name)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %s never received the packet", name)
		}
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	c := New()
	c.done = make(chan struct{})

	id, ch := c.Subscribe(EMsgClientPersonaState, nil)
	c.Unsubscribe(id)

	c.handlePacket(&Packet{EMsg: EMsgClientPersonaState, Header: &protocol.CMsgProtoBufHeader{}})

	select {
	case <-ch:
		t.Fatal("Unsubscribe should have stopped delivery")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	c := New()
	c.done = make(chan struct{})

	id, _ := c.Subscribe(EMsgClientPersonaState, nil)
	c.Unsubscribe(id)
	c.Unsubscribe(id) // must not panic or corrupt c.subscribers
	c.Unsubscribe(999)
}

func TestDispatchSubscribersIsolatesPanickingPredicate(t *testing.T) {
	c := New()
	c.done = make(chan struct{})

	c.Subscribe(EMsgClientPersonaState, func(*Packet) bool { panic("boom") })
	_, okCh := c.Subscribe(EMsgClientPersonaState, nil)

	pkt := &Packet{EMsg: EMsgClientPersonaState, Header: &protocol.CMsgProtoBufHeader{}}
	c.handlePacket(pkt) // must not propagate the panic out of handlePacket

	select {
	case got := <-okCh:
		if got != pkt {
			t.Errorf("got different packet than expected")
		}
	case <-time.After(time.Second):
		t.Fatal("panicking predicate should not have blocked delivery to the other subscriber")
	}
}
