package siteforge

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Preview protocol message types. The editor pushes UPDATE_SECTION_DATA
// into the iframe bridge, which relays it to the page via postMessage and
// answers with PREVIEW_READY on load and PREVIEW_UPDATED after applying a
// push. UPDATE_SECTION_HTML carries a server-rendered section once the
// session has fallen back to in-process rendering.
const (
	MsgUpdateSectionData = "UPDATE_SECTION_DATA"
	MsgUpdateSectionHTML = "UPDATE_SECTION_HTML"
	MsgPreviewReady      = "PREVIEW_READY"
	MsgPreviewUpdated    = "PREVIEW_UPDATED"
)

// PreviewMessage is the envelope exchanged with the preview client.
type PreviewMessage struct {
	Type        string   `json:"type"`
	SectionData Document `json:"sectionData,omitempty"`
	SectionType string   `json:"sectionType,omitempty"`
	HTML        string   `json:"html,omitempty"`
}

// PreviewConn is the write side of a preview client connection.
// *websocket.Conn satisfies it.
type PreviewConn interface {
	WriteJSON(v any) error
	Close() error
}

// PreviewSync keeps a live preview surface in sync with a session's
// document. Pushes are debounced to at most one per rolling interval, with
// the latest document winning a burst; the first push to a fresh connection
// always goes out immediately. If the client fails to acknowledge three
// consecutive pushes within the ack timeout, the sync permanently switches
// to pushing server-rendered HTML for the remainder of the session; a late
// acknowledgement never reverts the switch.
type PreviewSync struct {
	sectionType    string
	interval       time.Duration
	ackWait        time.Duration
	renderFallback func(Document) (string, error)

	mu         sync.Mutex
	conn       PreviewConn
	limiter    *rate.Limiter
	pending    Document
	pendingSet bool
	flusher    *time.Timer
	lastDoc    Document
	misses     int
	fallback   bool

	// One waiter per unacknowledged push, oldest first. The client answers
	// pushes in order, so an ack always belongs to the queue head.
	ackWaiters []chan struct{}
}

// NewPreviewSync creates a sync for a section type. renderFallback renders
// the section in-process for the fallback path; nil disables fallback (the
// sync then keeps pushing data envelopes regardless of acks).
func NewPreviewSync(sectionType string, interval, ackWait time.Duration, renderFallback func(Document) (string, error)) *PreviewSync {
	if interval <= 0 {
		interval = time.Second
	}
	if ackWait <= 0 {
		ackWait = 3 * time.Second
	}
	return &PreviewSync{
		sectionType:    sectionType,
		interval:       interval,
		ackWait:        ackWait,
		renderFallback: renderFallback,
	}
}

// Attach installs a preview client and immediately pushes the current
// document, if one exists. A fresh connection gets a fresh debounce window.
func (p *PreviewSync) Attach(conn PreviewConn) {
	p.mu.Lock()
	p.conn = conn
	p.limiter = rate.NewLimiter(rate.Every(p.interval), 1)
	// Pushes to the previous connection will never be answered; their
	// waiters must not swallow the new client's acks.
	p.ackWaiters = nil
	doc := p.lastDoc
	if doc != nil {
		p.limiter.Allow()
		p.sendLocked(doc)
	}
	p.mu.Unlock()
}

// Detach removes conn if it is still the current client.
func (p *PreviewSync) Detach(conn PreviewConn) {
	p.mu.Lock()
	if p.conn == conn {
		p.conn = nil
	}
	p.mu.Unlock()
}

// Push schedules doc for delivery to the preview client. Bursts coalesce:
// within one interval only the latest document is delivered, by a trailing
// flush.
func (p *PreviewSync) Push(doc Document) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastDoc = doc
	if p.conn == nil {
		return
	}
	if p.limiter.Allow() {
		p.sendLocked(doc)
		return
	}
	p.pending = doc
	p.pendingSet = true
	if p.flusher == nil {
		p.flusher = time.AfterFunc(p.interval, p.flush)
	}
}

func (p *PreviewSync) flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.flusher = nil
	if !p.pendingSet || p.conn == nil {
		return
	}
	doc := p.pending
	p.pendingSet = false
	p.limiter.Allow()
	p.sendLocked(doc)
}

func (p *PreviewSync) sendLocked(doc Document) {
	msg := PreviewMessage{Type: MsgUpdateSectionData, SectionData: doc, SectionType: p.sectionType}
	if p.fallback && p.renderFallback != nil {
		html, err := p.renderFallback(doc)
		if err != nil {
			return
		}
		msg = PreviewMessage{Type: MsgUpdateSectionHTML, HTML: html, SectionType: p.sectionType}
	}
	if err := p.conn.WriteJSON(msg); err != nil {
		return
	}
	if !p.fallback && p.renderFallback != nil {
		ch := make(chan struct{}, 1)
		p.ackWaiters = append(p.ackWaiters, ch)
		go p.awaitAck(ch)
	}
}

func (p *PreviewSync) awaitAck(ch chan struct{}) {
	timer := time.NewTimer(p.ackWait)
	defer timer.Stop()
	select {
	case <-ch:
		p.mu.Lock()
		p.misses = 0
		p.mu.Unlock()
	case <-timer.C:
		p.mu.Lock()
		p.misses++
		if p.misses >= 3 && !p.fallback {
			p.fallback = true
			p.ackWaiters = nil
			// Re-deliver the current document through the fallback path so
			// the preview recovers without waiting for the next edit.
			if p.conn != nil && p.lastDoc != nil {
				p.sendLocked(p.lastDoc)
			}
		}
		p.mu.Unlock()
	}
}

// Ack records an acknowledgement from the preview client. It resolves the
// oldest outstanding push; if that push's window has already expired the
// ack is discarded, so a consistently late client cannot keep resetting
// the miss count with acknowledgements meant for earlier pushes.
func (p *PreviewSync) Ack() {
	p.mu.Lock()
	if len(p.ackWaiters) == 0 {
		p.mu.Unlock()
		return
	}
	ch := p.ackWaiters[0]
	p.ackWaiters = p.ackWaiters[1:]
	p.mu.Unlock()
	ch <- struct{}{}
}

// HandleClientMessage processes a message read from the preview client.
func (p *PreviewSync) HandleClientMessage(msg PreviewMessage) {
	switch msg.Type {
	case MsgPreviewReady, MsgPreviewUpdated:
		p.Ack()
	}
}

// Fallback reports whether the sync has switched to in-process rendering.
func (p *PreviewSync) Fallback() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fallback
}

// Stop cancels any scheduled trailing flush.
func (p *PreviewSync) Stop() {
	p.mu.Lock()
	if p.flusher != nil {
		p.flusher.Stop()
		p.flusher = nil
	}
	p.pendingSet = false
	p.mu.Unlock()
}
