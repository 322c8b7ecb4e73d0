package advisor

import (
	"fmt"
	"log/slog"
	"net"
	"sync"
)

// Freshness classifies the client's current reply, by the age of the
// snapshot it answered.
type Freshness uint8

const (
	// NoReply means nothing has ever been heard from the sidecar.
	NoReply Freshness = iota
	// Stale means the newest reply answers a snapshot older than the
	// configured horizon; its nudges must not be applied.
	Stale
	// Fresh means the reply is recent enough to act on.
	Fresh
)

func (f Freshness) String() string {
	switch f {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	default:
		return "no-reply"
	}
}

// Client publishes snapshots to the sidecar and collects its replies.
// Publishing is fire-and-forget from the tick loop's perspective: encoding
// hands off to a sender goroutine through a small buffer, and a full buffer
// drops the snapshot instead of blocking the tick.
type Client struct {
	conn      *net.UDPConn
	maxPacket int

	sendCh chan [][]byte
	done   chan struct{}
	wg     sync.WaitGroup

	mu     sync.Mutex
	latest Suggestions
	gotAny bool

	nextMsgID uint32
	dropped   uint64
}

// Dial connects the advisor link. addr is the sidecar's UDP address.
func Dial(addr string, maxPacket int) (*Client, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("advisor: resolve %q: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("advisor: dial %q: %w", addr, err)
	}

	c := &Client{
		conn:      conn,
		maxPacket: maxPacket,
		sendCh:    make(chan [][]byte, 8),
		done:      make(chan struct{}),
	}
	c.wg.Add(2)
	go c.sendLoop()
	go c.recvLoop()
	return c, nil
}

// Publish queues a snapshot for sending. Never blocks; when the sender is
// behind, the snapshot is dropped and the next interval's will supersede it.
func (c *Client) Publish(s Snapshot) {
	payload, err := EncodeSnapshot(s)
	if err != nil {
		slog.Warn("advisor snapshot encode failed", "err", err)
		return
	}
	c.nextMsgID++
	pkts, err := Chunk(c.nextMsgID, payload, c.maxPacket)
	if err != nil {
		slog.Warn("advisor snapshot chunking failed", "err", err)
		return
	}
	select {
	case c.sendCh <- pkts:
	default:
		c.dropped++
	}
}

// Latest returns the newest reply. staleAfter is the reply-age horizon in
// ticks, measured against now.
func (c *Client) Latest(now int32, staleAfter int32) (Suggestions, Freshness) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.gotAny {
		return Suggestions{}, NoReply
	}
	if now-c.latest.Tick > staleAfter {
		return Suggestions{}, Stale
	}
	return c.latest, Fresh
}

// Dropped reports how many snapshots were discarded by backpressure.
func (c *Client) Dropped() uint64 {
	return c.dropped
}

// Close shuts the link down and waits for both goroutines.
func (c *Client) Close() error {
	close(c.done)
	err := c.conn.Close()
	c.wg.Wait()
	return err
}

func (c *Client) sendLoop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.done:
			return
		case pkts := <-c.sendCh:
			for _, p := range pkts {
				if _, err := c.conn.Write(p); err != nil {
					// Nothing to retry over UDP; the next interval
					// republishes everything anyway.
					slog.Debug("advisor send failed", "err", err)
					break
				}
			}
		}
	}
}

func (c *Client) recvLoop() {
	defer c.wg.Done()
	var asm Assembler
	buf := make([]byte, 65536)
	for {
		n, err := c.conn.Read(buf)
		if err != nil {
			select {
			case <-c.done:
				return
			default:
			}
			slog.Debug("advisor receive failed", "err", err)
			return
		}
		payload, ok, err := asm.Accept(buf[:n])
		if err != nil {
			slog.Debug("advisor dropped datagram", "err", err)
			continue
		}
		if !ok {
			continue
		}
		reply, err := DecodeSuggestions(payload)
		if err != nil {
			slog.Debug("advisor dropped reply", "err", err)
			continue
		}
		c.mu.Lock()
		if !c.gotAny || reply.Tick >= c.latest.Tick {
			c.latest = reply
			c.gotAny = true
		}
		c.mu.Unlock()
	}
}
