package activitylog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
)

// Client sends activity events to the append-only activity log service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	log        Logger
	wg         sync.WaitGroup
}

func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
		log:     log,
	}
}

// Send posts one event and waits for the answer.
func (c *Client) Send(ctx context.Context, event domain.ActivityEvent) error {
	body, err := json.Marshal(fromDomainEvent(event, time.Now()))
	if err != nil {
		return fmt.Errorf("%w: failed to encode event: %v", ErrInternal, err)
	}

	url := fmt.Sprintf("%s/internal/activity-logs", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNoContent:
		return nil
	default:
		data, _ := io.ReadAll(resp.Body)
		var errResp ErrorResponse
		if json.Unmarshal(data, &errResp) == nil && errResp.Message != "" {
			return fmt.Errorf("%w: status %d: %s", ErrInvalidResponse, resp.StatusCode, errResp.Message)
		}
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(data))
	}
}

// Record sends the event in the background. Failures are logged and never
// reach the caller; the request outlives the caller's context up to the client timeout.
func (c *Client) Record(ctx context.Context, event domain.ActivityEvent) {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()

		if err := c.Send(sendCtx, event); err != nil {
			c.log.Warn("activitylog: failed to record action=%s facility=%d actor=%d: %v",
				event.Action, event.FacilityID, event.ActorID, err)
		}
	}()
}

// Wait blocks until in-flight events are delivered or dropped.
func (c *Client) Wait() {
	c.wg.Wait()
}

// NopRecorder drops every event. Used when the activity log is disabled.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, domain.ActivityEvent) {}
