package datasource

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-engine/internal/models"
)

// ResultsStream consumes the provider's settlement WebSocket feed. Each
// message marks one fixture market as won, lost or void; registered handlers
// receive the parsed update. Reconnection with exponential backoff is handled
// by Run.
type ResultsStream struct {
	streamURL       string
	apiKey          string
	mu              sync.RWMutex
	conn            *websocket.Conn
	isConnected     bool
	handlers        []SettlementHandler
	reconnectConfig ReconnectConfig
	lastMessageTime time.Time
	logger          *logrus.Logger
}

// ReconnectConfig controls reconnection behavior
type ReconnectConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultReconnectConfig returns default reconnection configuration
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		MaxRetries:        10,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 1.5,
	}
}

// streamEnvelope is the provider's settlement wire message.
type streamEnvelope struct {
	Op        string `json:"op"`
	FixtureID int64  `json:"fixture_id,omitempty"`
	Market    string `json:"market,omitempty"`
	Status    string `json:"status,omitempty"`
	At        string `json:"at,omitempty"`
}

// NewResultsStream creates a settlement stream client
func NewResultsStream(streamURL, apiKey string, logger *logrus.Logger) *ResultsStream {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	return &ResultsStream{
		streamURL:       streamURL,
		apiKey:          apiKey,
		handlers:        make([]SettlementHandler, 0),
		reconnectConfig: DefaultReconnectConfig(),
		logger:          logger,
	}
}

// AddHandler registers a settlement handler. Handlers must be registered
// before Run is called.
func (s *ResultsStream) AddHandler(handler SettlementHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
}

// Run connects and consumes the stream until the context is cancelled,
// reconnecting with exponential backoff on connection loss.
func (s *ResultsStream) Run(ctx context.Context) error {
	backoff := s.reconnectConfig.InitialBackoff
	retries := 0

	for {
		if err := s.connect(ctx); err != nil {
			retries++
			if retries > s.reconnectConfig.MaxRetries {
				return fmt.Errorf("results stream: gave up after %d attempts: %w", retries, err)
			}
			s.logger.WithFields(logrus.Fields{
				"attempt": retries,
				"backoff": backoff.String(),
				"error":   err.Error(),
			}).Warn("Results stream connect failed, retrying")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff = time.Duration(float64(backoff) * s.reconnectConfig.BackoffMultiplier)
			if backoff > s.reconnectConfig.MaxBackoff {
				backoff = s.reconnectConfig.MaxBackoff
			}
			continue
		}

		// Connected; reset backoff so the next drop starts fresh.
		retries = 0
		backoff = s.reconnectConfig.InitialBackoff

		if err := s.readMessages(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.WithField("error", err.Error()).Warn("Results stream disconnected")
		}
	}
}

// connect establishes the WebSocket connection and authenticates.
func (s *ResultsStream) connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isConnected {
		return fmt.Errorf("already connected")
	}

	s.logger.WithField("url", s.streamURL).Info("Connecting to results stream")

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, s.streamURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to stream: %w", err)
	}

	authMsg := map[string]interface{}{
		"op":      "auth",
		"api_key": s.apiKey,
	}
	if err := conn.WriteJSON(authMsg); err != nil {
		conn.Close()
		return fmt.Errorf("failed to authenticate: %w", err)
	}

	s.conn = conn
	s.isConnected = true
	s.lastMessageTime = time.Now()

	s.logger.Info("Connected to results stream")
	return nil
}

// readMessages reads messages until the connection drops or ctx is cancelled.
func (s *ResultsStream) readMessages(ctx context.Context) error {
	defer s.closeConn()

	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()

	// The watcher must die with this connection, not with the daemon,
	// otherwise every reconnect leaks a goroutine holding the dead conn.
	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go func() {
		<-watchCtx.Done()
		conn.Close()
	}()

	for {
		var envelope streamEnvelope
		if err := conn.ReadJSON(&envelope); err != nil {
			return err
		}

		s.mu.Lock()
		s.lastMessageTime = time.Now()
		s.mu.Unlock()

		switch envelope.Op {
		case "heartbeat", "auth_ok":
			continue
		case "settlement":
			s.dispatch(envelope)
		default:
			s.logger.WithField("op", envelope.Op).Debug("Ignoring unknown stream op")
		}
	}
}

func (s *ResultsStream) dispatch(envelope streamEnvelope) {
	update, err := parseSettlement(envelope)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"fixture_id": envelope.FixtureID,
			"error":      err.Error(),
		}).Warn("Dropping malformed settlement message")
		return
	}

	s.mu.RLock()
	handlers := s.handlers
	s.mu.RUnlock()

	for _, handler := range handlers {
		handler(update)
	}
}

func parseSettlement(envelope streamEnvelope) (SettlementUpdate, error) {
	if envelope.FixtureID == 0 {
		return SettlementUpdate{}, fmt.Errorf("missing fixture id")
	}

	status, err := parseLegStatus(envelope.Status)
	if err != nil {
		return SettlementUpdate{}, err
	}

	at, err := time.Parse(time.RFC3339, envelope.At)
	if err != nil {
		at = time.Now().UTC()
	}

	return SettlementUpdate{
		FixtureID: envelope.FixtureID,
		Market:    models.Market(envelope.Market),
		Status:    status,
		At:        at,
	}, nil
}

// IsConnected returns whether the stream is connected
func (s *ResultsStream) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isConnected
}

// LastMessageTime returns the time of the last received message
func (s *ResultsStream) LastMessageTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastMessageTime
}

func (s *ResultsStream) closeConn() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return
	}
	s.isConnected = false
	s.conn.Close()
	s.conn = nil
}

func parseLegStatus(raw string) (models.LegStatus, error) {
	switch models.LegStatus(raw) {
	case models.LegPending, models.LegWon, models.LegLost, models.LegVoid:
		return models.LegStatus(raw), nil
	}
	return "", fmt.Errorf("unknown settlement status %q", raw)
}
