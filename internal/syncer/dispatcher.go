// Package syncer forwards committed local mutations to the remote execution
// endpoint. It is a best-effort forwarding mechanism, not a two-phase commit
// participant: a failed dispatch never rolls back the local commit.
package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cedi-api/internal/models"
	"cedi-api/internal/schema"

	"go.uber.org/zap"
)

const sendTimeout = 30 * time.Second

// Dispatcher queues outbound sync requests and ships them to the execution
// endpoint from a single worker goroutine. Queueing keeps the CRUD layer's
// contract free of transport concerns, so retry or backoff can be added
// here later without touching callers.
type Dispatcher struct {
	endpointURL string
	client      *http.Client
	logger      *zap.Logger
	queue       chan models.SyncRequest
	stopChan    chan struct{}
	doneChan    chan struct{}
	isRunning   bool
}

// NewDispatcher creates a Dispatcher. An empty endpoint URL puts the system
// in local-only mode: every dispatch becomes a no-op success.
func NewDispatcher(endpointURL string, queueSize int, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Dispatcher{
		endpointURL: endpointURL,
		client:      &http.Client{Timeout: sendTimeout},
		logger:      logger,
		queue:       make(chan models.SyncRequest, queueSize),
		stopChan:    make(chan struct{}),
		doneChan:    make(chan struct{}),
	}
}

// Start launches the worker goroutine draining the outbound queue.
func (d *Dispatcher) Start() {
	if d.isRunning {
		d.logger.Warn("Sync dispatcher already running")
		return
	}
	d.isRunning = true
	go d.run()
	d.logger.Info("Write-sync dispatcher started",
		zap.Bool("remote_configured", d.endpointURL != ""),
		zap.Int("queue_capacity", cap(d.queue)),
	)
}

// Stop signals the worker to drain what is already queued and exit.
func (d *Dispatcher) Stop() {
	if !d.isRunning {
		d.logger.Warn("Sync dispatcher not running")
		return
	}
	d.isRunning = false
	close(d.stopChan)
	select {
	case <-d.doneChan:
	case <-time.After(sendTimeout + 5*time.Second):
		d.logger.Warn("Timed out waiting for sync dispatcher to drain")
	}
	d.logger.Info("Write-sync dispatcher stopped")
}

// Enqueue places one mutation on the outbound queue. It never blocks the
// caller: when the queue is full the request is dropped with a warning,
// consistent with the layer's best-effort, no-retry contract.
func (d *Dispatcher) Enqueue(action, entity string, payload map[string]any, id string) {
	req := models.SyncRequest{Action: action, Entity: entity, Payload: payload, ID: id}
	select {
	case d.queue <- req:
	default:
		d.logger.Warn("Outbound sync queue full, dropping request",
			zap.String("action", action), zap.String("entity", entity), zap.String("id", id))
	}
}

// run drains the queue until stopped, then flushes whatever remains.
func (d *Dispatcher) run() {
	defer close(d.doneChan)
	for {
		select {
		case req := <-d.queue:
			d.deliver(req)
		case <-d.stopChan:
			for {
				select {
				case req := <-d.queue:
					d.deliver(req)
				default:
					return
				}
			}
		}
	}
}

// deliver sends one queued request and logs the outcome; there is nothing
// else to do with a failure, by contract.
func (d *Dispatcher) deliver(req models.SyncRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	result := d.Send(ctx, req.Action, req.Entity, req.Payload, req.ID)
	if result.Success {
		d.logger.Debug("Synced mutation to remote store",
			zap.String("action", req.Action), zap.String("entity", req.Entity), zap.String("id", req.ID))
		return
	}
	d.logger.Warn("Remote sync failed, local commit stands",
		zap.String("action", req.Action),
		zap.String("entity", req.Entity),
		zap.String("id", req.ID),
		zap.String("error", result.Error),
	)
}

// Send forwards one mutation synchronously. The canonical entity name is
// resolved to its physical sheet before sending. Any 2xx response counts as
// success unless the body explicitly carries success:false; a non-JSON
// success body is assumed to have taken effect. A non-2xx status or a
// transport error is a failure carrying the detail.
func (d *Dispatcher) Send(ctx context.Context, action, entity string, payload map[string]any, id string) models.SyncResult {
	if d.endpointURL == "" {
		d.logger.Debug("No execution endpoint configured, keeping change local",
			zap.String("action", action), zap.String("entity", entity))
		return models.SyncResult{Success: true}
	}

	body, err := json.Marshal(models.SyncRequest{
		Action:  action,
		Entity:  schema.SheetFor(entity),
		Payload: payload,
		ID:      id,
	})
	if err != nil {
		return models.SyncResult{Success: false, Error: fmt.Sprintf("encoding sync request: %v", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpointURL, bytes.NewReader(body))
	if err != nil {
		return models.SyncResult{Success: false, Error: fmt.Sprintf("building sync request: %v", err)}
	}
	// text/plain keeps the endpoint reachable without a CORS preflight round
	// trip; the endpoint accepts raw JSON regardless of content type.
	httpReq.Header.Set("Content-Type", "text/plain;charset=utf-8")

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return models.SyncResult{Success: false, Error: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.SyncResult{Success: false, Error: fmt.Sprintf("reading sync response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.SyncResult{Success: false, Error: string(respBody)}
	}

	// Success unless the body explicitly carries success:false. A body that
	// is not JSON at all is assumed to mean the operation took effect; the
	// endpoint does not always echo structured JSON.
	var parsed struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return models.SyncResult{Success: true}
	}
	if parsed.Success != nil && !*parsed.Success {
		detail := parsed.Error
		if detail == "" {
			detail = parsed.Message
		}
		return models.SyncResult{Success: false, Error: detail}
	}
	return models.SyncResult{Success: true}
}
