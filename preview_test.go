package siteforge

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeConn records every envelope written to it.
type fakeConn struct {
	mu     sync.Mutex
	msgs   []PreviewMessage
	closed bool
}

func newFakeConn() *fakeConn { return &fakeConn{} }

func (c *fakeConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, v.(PreviewMessage))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) messages() []PreviewMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]PreviewMessage, len(c.msgs))
	copy(out, c.msgs)
	return out
}

func TestPushImmediateThenCoalesced(t *testing.T) {
	p := NewPreviewSync("header", 60*time.Millisecond, time.Minute, nil)
	defer p.Stop()
	conn := newFakeConn()
	p.Attach(conn)

	// A burst of edits inside one window: the first goes out immediately,
	// the rest coalesce into a single trailing flush with the latest doc.
	for i := 0; i < 50; i++ {
		p.Push(Document{"title": fmt.Sprintf("v%d", i)})
	}

	msgs := conn.messages()
	if len(msgs) != 1 {
		t.Fatalf("got %d messages inside the window, want 1", len(msgs))
	}
	if msgs[0].Type != MsgUpdateSectionData || msgs[0].SectionType != "header" {
		t.Errorf("first message = %+v", msgs[0])
	}
	if got := GetString(msgs[0].SectionData, "title"); got != "v0" {
		t.Errorf("immediate push carried %q, want v0", got)
	}

	time.Sleep(150 * time.Millisecond)
	msgs = conn.messages()
	if len(msgs) != 2 {
		t.Fatalf("got %d messages after the window, want 2", len(msgs))
	}
	if got := GetString(msgs[1].SectionData, "title"); got != "v49" {
		t.Errorf("trailing flush carried %q, want v49", got)
	}
}

func TestAttachPushesCurrentDocument(t *testing.T) {
	p := NewPreviewSync("header", 50*time.Millisecond, time.Minute, nil)
	defer p.Stop()

	// Edits before any client connects just update the retained document.
	p.Push(Document{"title": "offline"})

	conn := newFakeConn()
	p.Attach(conn)
	msgs := conn.messages()
	if len(msgs) != 1 {
		t.Fatalf("got %d messages on attach, want 1", len(msgs))
	}
	if got := GetString(msgs[0].SectionData, "title"); got != "offline" {
		t.Errorf("attach push carried %q", got)
	}
}

func TestDetachStopsDelivery(t *testing.T) {
	p := NewPreviewSync("header", 10*time.Millisecond, time.Minute, nil)
	defer p.Stop()
	conn := newFakeConn()
	p.Attach(conn)
	p.Push(Document{"n": 1})
	p.Detach(conn)
	p.Push(Document{"n": 2})

	time.Sleep(40 * time.Millisecond)
	if got := len(conn.messages()); got != 1 {
		t.Errorf("got %d messages after detach, want 1", got)
	}
}

func TestFallbackAfterThreeMissedAcks(t *testing.T) {
	render := func(doc Document) (string, error) {
		return "<header>" + GetString(doc, "title") + "</header>", nil
	}
	p := NewPreviewSync("header", 5*time.Millisecond, 20*time.Millisecond, render)
	defer p.Stop()
	conn := newFakeConn()
	p.Attach(conn)

	for i := 0; i < 3; i++ {
		p.Push(Document{"title": "hello"})
		time.Sleep(40 * time.Millisecond)
	}

	if !p.Fallback() {
		t.Fatal("sync did not fall back after three missed acks")
	}
	msgs := conn.messages()
	last := msgs[len(msgs)-1]
	if last.Type != MsgUpdateSectionHTML {
		t.Errorf("last message type = %s, want %s", last.Type, MsgUpdateSectionHTML)
	}
	if last.HTML != "<header>hello</header>" {
		t.Errorf("fallback html = %q", last.HTML)
	}

	// A late acknowledgement never reverts the switch.
	p.Ack()
	p.Push(Document{"title": "after"})
	time.Sleep(20 * time.Millisecond)
	msgs = conn.messages()
	last = msgs[len(msgs)-1]
	if last.Type != MsgUpdateSectionHTML {
		t.Error("fallback reverted after a late ack")
	}
	if !p.Fallback() {
		t.Error("Fallback() reverted after a late ack")
	}
}

func TestConsistentlyLateAcksStillFallBack(t *testing.T) {
	render := func(doc Document) (string, error) { return "<p></p>", nil }
	p := NewPreviewSync("header", 5*time.Millisecond, 25*time.Millisecond, render)
	defer p.Stop()
	conn := newFakeConn()
	p.Attach(conn)

	// The client applies every push but always answers after the window.
	// Each ack belongs to the push that already timed out, so it must not
	// be credited to the next one.
	for i := 0; i < 4; i++ {
		p.Push(Document{"n": i})
		time.Sleep(45 * time.Millisecond)
		p.HandleClientMessage(PreviewMessage{Type: MsgPreviewUpdated})
	}

	if !p.Fallback() {
		t.Error("every push missed its ack window, yet the sync never fell back")
	}
	msgs := conn.messages()
	if last := msgs[len(msgs)-1]; last.Type != MsgUpdateSectionHTML {
		t.Errorf("last message type = %s, want %s", last.Type, MsgUpdateSectionHTML)
	}
}

func TestAcknowledgedPushesStayOnDataPath(t *testing.T) {
	render := func(doc Document) (string, error) { return "<p></p>", nil }
	p := NewPreviewSync("header", 5*time.Millisecond, 200*time.Millisecond, render)
	defer p.Stop()
	conn := newFakeConn()
	p.Attach(conn)

	for i := 0; i < 5; i++ {
		p.Push(Document{"n": i})
		p.HandleClientMessage(PreviewMessage{Type: MsgPreviewUpdated})
		time.Sleep(15 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)

	if p.Fallback() {
		t.Error("acknowledged pushes must not trigger fallback")
	}
	for _, m := range conn.messages() {
		if m.Type != MsgUpdateSectionData {
			t.Errorf("unexpected %s message on the data path", m.Type)
		}
	}
}
