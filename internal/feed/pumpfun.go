package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/7finger0x/Coinbot-project/internal/domain"
)

// DefaultPumpfunURL is the pumpportal data stream endpoint.
const DefaultPumpfunURL = "wss://pumpportal.fun/api/data"

// PumpfunConfig configures stream client behavior.
type PumpfunConfig struct {
	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
	PingInterval      time.Duration
	WriteTimeout      time.Duration
}

// DefaultPumpfunConfig returns default stream configuration.
func DefaultPumpfunConfig() PumpfunConfig {
	return PumpfunConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// Pumpfun subscribes to the pumpportal new-token stream and buffers
// arrivals between polls. Fetch drains the buffer, so each token is
// delivered to exactly one cycle.
type Pumpfun struct {
	endpoint string
	config   PumpfunConfig

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	buf   []domain.Token
	bufMu sync.Mutex

	done chan struct{}
	wg   sync.WaitGroup
}

// NewPumpfun creates the stream client and connects to the endpoint.
func NewPumpfun(ctx context.Context, endpoint string, config *PumpfunConfig) (*Pumpfun, error) {
	if endpoint == "" {
		endpoint = DefaultPumpfunURL
	}
	cfg := DefaultPumpfunConfig()
	if config != nil {
		cfg = *config
	}

	p := &Pumpfun{
		endpoint: endpoint,
		config:   cfg,
		done:     make(chan struct{}),
	}

	if err := p.connect(ctx); err != nil {
		return nil, err
	}

	p.wg.Add(1)
	go p.readLoop()

	p.wg.Add(1)
	go p.pingLoop()

	return p, nil
}

var _ Source = (*Pumpfun)(nil)

func (p *Pumpfun) Name() string { return "pumpfun" }

// connect dials the endpoint and sends the new-token subscription.
func (p *Pumpfun) connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, p.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	sub := map[string]interface{}{"method": "subscribeNewToken"}
	conn.SetWriteDeadline(time.Now().Add(p.config.WriteTimeout))
	if err := conn.WriteJSON(sub); err != nil {
		conn.Close()
		return fmt.Errorf("write subscribe: %w", err)
	}

	p.connMu.Lock()
	p.conn = conn
	p.connMu.Unlock()
	return nil
}

// Fetch returns and clears the tokens buffered since the previous call.
func (p *Pumpfun) Fetch(ctx context.Context) ([]domain.Token, error) {
	p.bufMu.Lock()
	defer p.bufMu.Unlock()
	tokens := p.buf
	p.buf = nil
	return tokens, nil
}

// newTokenMessage is the pumpportal new-token event shape.
type newTokenMessage struct {
	Mint            string  `json:"mint"`
	Name            string  `json:"name"`
	Symbol          string  `json:"symbol"`
	TraderPublicKey string  `json:"traderPublicKey"`
	MarketCapSol    float64 `json:"marketCapSol"`
	TxType          string  `json:"txType"`
}

// readLoop reads stream messages and buffers new-token events,
// reconnecting with exponential backoff on connection errors.
func (p *Pumpfun) readLoop() {
	defer p.wg.Done()

	reconnectDelay := p.config.ReconnectDelay

	for !p.closed.Load() {
		p.connMu.Lock()
		conn := p.conn
		p.connMu.Unlock()

		if conn == nil {
			select {
			case <-p.done:
				return
			case <-time.After(reconnectDelay):
			}

			reconnectDelay *= 2
			if reconnectDelay > p.config.MaxReconnectDelay {
				reconnectDelay = p.config.MaxReconnectDelay
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := p.connect(ctx)
			cancel()
			if err != nil {
				log.Printf("[feed] pumpfun: reconnect failed: %v", err)
			}
			continue
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			if p.closed.Load() {
				return
			}
			log.Printf("[feed] pumpfun: read error: %v", err)

			p.connMu.Lock()
			if p.conn != nil {
				p.conn.Close()
				p.conn = nil
			}
			p.connMu.Unlock()
			continue
		}

		reconnectDelay = p.config.ReconnectDelay
		p.handleMessage(message)
	}
}

func (p *Pumpfun) handleMessage(message []byte) {
	var msg newTokenMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return
	}
	if msg.Mint == "" || !validMint(msg.Mint) {
		return
	}

	token := domain.Token{
		Address:   msg.Mint,
		Chain:     "solana",
		Name:      msg.Name,
		Symbol:    msg.Symbol,
		Developer: msg.TraderPublicKey,
	}

	p.bufMu.Lock()
	p.buf = append(p.buf, token)
	p.bufMu.Unlock()
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (p *Pumpfun) pingLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			p.connMu.Lock()
			if p.conn != nil {
				p.conn.SetWriteDeadline(time.Now().Add(p.config.WriteTimeout))
				p.conn.WriteMessage(websocket.PingMessage, nil)
			}
			p.connMu.Unlock()
		}
	}
}

// Close shuts down the stream connection.
func (p *Pumpfun) Close() error {
	if p.closed.Swap(true) {
		return nil
	}

	close(p.done)

	p.connMu.Lock()
	if p.conn != nil {
		p.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		p.conn.Close()
	}
	p.connMu.Unlock()

	p.wg.Wait()
	return nil
}
