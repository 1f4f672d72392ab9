package kalshi_ws

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/scorearb/arbiter/internal/adapters/kalshi_auth"
	"github.com/scorearb/arbiter/internal/events"
	"github.com/scorearb/arbiter/internal/telemetry"
)

// Client connects to the exchange's orderbook WebSocket feed and publishes
// MarketUpdate deltas/snapshots onto out. Sequence-gap handling and the
// per-ticker stale/re-snapshot cache live one layer up in
// internal/core/orderbook.Watcher; this client only owns the wire
// connection and subscription bookkeeping.
//
// Gorilla/websocket supports one concurrent reader and one concurrent
// writer, so all writes are serialized through mu.
type Client struct {
	url    string
	signer *kalshi_auth.Signer
	out    *events.Channel[events.MarketUpdate]
	status *events.Bus
	conn   *websocket.Conn
	done   chan struct{}

	connectTimeout time.Duration
	idleTimeout    time.Duration

	mu      sync.Mutex
	tickers map[string]bool
	subID   int
}

func NewClient(wsURL string, signer *kalshi_auth.Signer, out *events.Channel[events.MarketUpdate], status *events.Bus, connectTimeout, idleTimeout time.Duration) *Client {
	return &Client{
		url:            wsURL,
		signer:         signer,
		out:            out,
		status:         status,
		done:           make(chan struct{}),
		tickers:        make(map[string]bool),
		connectTimeout: connectTimeout,
		idleTimeout:    idleTimeout,
	}
}

func (c *Client) Connect(ctx context.Context) error {
	if err := c.dial(ctx); err != nil {
		return err
	}
	go c.runLoop(ctx)
	return nil
}

func (c *Client) dial(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, c.connectTimeout)
	defer cancel()

	parsed, _ := url.Parse(c.url)
	wsPath := parsed.Path
	if wsPath == "" {
		wsPath = "/trade-api/ws/v2"
	}
	header := c.signer.Headers("GET", wsPath)

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, c.url, header)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	return nil
}

// SubscribeTickers registers tickers for the orderbook channel and
// subscribes on the live connection (or defers until connect, if not yet
// established). Safe to call from any goroutine at any time — Brain calls
// this as it builds each game's threshold map.
func (c *Client) SubscribeTickers(tickers []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var newTickers []string
	for _, t := range tickers {
		if !c.tickers[t] {
			c.tickers[t] = true
			newTickers = append(newTickers, t)
		}
	}

	if len(newTickers) == 0 || c.conn == nil {
		return nil
	}

	return c.sendSubscribe(newTickers)
}

// RequestResnapshot re-sends a subscribe for an already-registered ticker,
// forcing the exchange to push a fresh orderbook_snapshot frame. Used by
// orderbook.Watcher after a sequence gap.
func (c *Client) RequestResnapshot(ticker string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	return c.sendSubscribe([]string{ticker})
}

// runLoop reads messages and reconnects on failure with exponential
// backoff (100ms-30s, 10% jitter per spec.md §4.3).
func (c *Client) runLoop(ctx context.Context) {
	defer close(c.done)

	first := true
	for {
		if first {
			telemetry.Infof("watcher: WS connected to %s", c.url)
			first = false
		} else {
			telemetry.Infof("watcher: WS reconnected, resubscribing tickers")
		}

		c.resubscribeAll()
		c.publishWSStatus(true)
		c.readLoop(ctx)
		c.publishWSStatus(false)

		select {
		case <-ctx.Done():
			return
		default:
		}

		backoff := 100 * time.Millisecond
		const maxBackoff = 30 * time.Second
		for attempt := 1; ; attempt++ {
			wait := jitter(backoff, 0.10)
			telemetry.Warnf("watcher: reconnecting (attempt %d) in %s", attempt, wait)
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
			if err := c.dial(ctx); err != nil {
				telemetry.Warnf("watcher: dial failed: %v", err)
				backoff *= 2
				if backoff > maxBackoff {
					backoff = maxBackoff
				}
				continue
			}
			break
		}
	}
}

func jitter(d time.Duration, frac float64) time.Duration {
	spread := time.Duration(float64(d) * frac)
	if spread <= 0 {
		return d
	}
	// deterministic-ish spread without math/rand: use the low bits of the
	// duration itself so repeated backoffs don't all land on the same tick
	offset := time.Duration(int64(d) % int64(spread+1))
	return d - spread/2 + offset
}

// resubscribeAll sends a subscribe for every known ticker. Called after
// each successful connection/reconnection. Cached books of re-subscribed
// tickers are not marked stale here or by orderbook.Watcher; they are
// replaced when the fresh snapshot arrives.
func (c *Client) resubscribeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.tickers) == 0 {
		return
	}

	all := make([]string, 0, len(c.tickers))
	for t := range c.tickers {
		all = append(all, t)
	}

	if err := c.sendSubscribe(all); err != nil {
		telemetry.Warnf("watcher: resubscribe failed: %v", err)
	}
}

// sendSubscribe writes a subscribe command. Caller must hold mu.
func (c *Client) sendSubscribe(tickers []string) error {
	c.subID++
	cmd := subscribeCmd{
		ID:  c.subID,
		Cmd: "subscribe",
		Params: subscribeParams{
			Channels:            []string{"orderbook_delta", "orderbook_snapshot"},
			MarketTickers:       tickers,
			SendInitialSnapshot: true,
		},
	}
	telemetry.Debugf("watcher: subscribing to %d tickers (sid=%d)", len(tickers), c.subID)
	return c.conn.WriteJSON(cmd)
}

type subscribeCmd struct {
	ID     int             `json:"id"`
	Cmd    string          `json:"cmd"`
	Params subscribeParams `json:"params"`
}

type subscribeParams struct {
	Channels            []string `json:"channels"`
	MarketTickers       []string `json:"market_tickers,omitempty"`
	SendInitialSnapshot bool     `json:"send_initial_snapshot,omitempty"`
}

func (c *Client) readLoop(ctx context.Context) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(c.idleTimeout))
	conn.SetPingHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(c.idleTimeout))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(5*time.Second))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			telemetry.Warnf("watcher: WS read error: %v", err)
			return
		}

		conn.SetReadDeadline(time.Now().Add(c.idleTimeout))
		for _, update := range ParseMessage(msg) {
			c.out.Publish(update)
		}
	}
}

func (c *Client) publishWSStatus(connected bool) {
	if c.status == nil {
		return
	}
	c.status.Publish(events.Event{
		Type:      events.EventWSStatus,
		Timestamp: time.Now(),
		Payload:   events.WSStatusEvent{Connected: connected},
	})
}

func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (c *Client) Done() <-chan struct{} {
	return c.done
}
