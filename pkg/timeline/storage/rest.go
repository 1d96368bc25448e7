package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"formation-hq/timeline/pkg/timeline"
)

// RESTConfig configures the REST policy store client.
type RESTConfig struct {
	// BaseURL is the scheme and host of the configuration API, e.g.
	// "http://om.local:7777".
	BaseURL string

	// AuthHeader and AuthValue are sent on every request when both are set.
	AuthHeader string
	AuthValue  string

	// Timeout bounds each request.
	// Default: 30 seconds
	Timeout time.Duration
}

// RESTClient implements timeline.Store against the snapshot policy routes
// of the configuration API. pkg/server serves the same routes.
type RESTClient struct {
	BaseURL    string
	AuthHeader string
	AuthValue  string
	HTTP       *http.Client
}

// NewRESTClient creates a client for cfg.
func NewRESTClient(cfg RESTConfig) *RESTClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RESTClient{
		BaseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		AuthHeader: cfg.AuthHeader,
		AuthValue:  cfg.AuthValue,
		HTTP: &http.Client{
			Timeout: timeout,
		},
	}
}

// createRequest is the create body. timelineTime is always zero for
// policies created from a volume's settings.
type createRequest struct {
	timeline.RetentionPolicy
	TimelineTime int64
}

func (r createRequest) MarshalJSON() ([]byte, error) {
	var doc map[string]any
	b, err := json.Marshal(r.RetentionPolicy)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	doc["timelineTime"] = r.TimelineTime
	return json.Marshal(doc)
}

// Create posts a new policy and returns it with the id the server assigned.
func (c *RESTClient) Create(ctx context.Context, policy timeline.RetentionPolicy) (timeline.RetentionPolicy, error) {
	policy.ID = timeline.NoID
	var created timeline.RetentionPolicy
	if err := c.do(ctx, http.MethodPost, "/api/config/snapshot/policies", createRequest{RetentionPolicy: policy}, &created); err != nil {
		return timeline.RetentionPolicy{}, timeline.NewStoreError("rest", "create", err)
	}
	if !created.HasID() {
		return timeline.RetentionPolicy{}, timeline.NewStoreError("rest", "create", fmt.Errorf("response carried no policy id"))
	}
	return created, nil
}

// Edit puts the full policy.
func (c *RESTClient) Edit(ctx context.Context, policy timeline.RetentionPolicy) error {
	if err := c.do(ctx, http.MethodPut, "/api/config/snapshot/policies", policy, nil); err != nil {
		return timeline.NewStoreError("rest", "edit", err)
	}
	return nil
}

// Delete deletes a policy by id.
func (c *RESTClient) Delete(ctx context.Context, id timeline.PolicyID) error {
	if err := c.do(ctx, http.MethodDelete, "/api/config/snapshot/policies/"+id.String(), nil, nil); err != nil {
		return timeline.NewStoreError("rest", "delete", err)
	}
	return nil
}

// Attach attaches a policy to a volume.
func (c *RESTClient) Attach(ctx context.Context, id timeline.PolicyID, volume timeline.VolumeID) error {
	path := fmt.Sprintf("/api/config/snapshot/policies/%s/attach/%s", id, url.PathEscape(string(volume)))
	if err := c.do(ctx, http.MethodPut, path, struct{}{}, nil); err != nil {
		return timeline.NewStoreError("rest", "attach", err)
	}
	return nil
}

// Detach detaches a policy from a volume.
func (c *RESTClient) Detach(ctx context.Context, id timeline.PolicyID, volume timeline.VolumeID) error {
	path := fmt.Sprintf("/api/config/snapshot/policies/%s/detach/%s", id, url.PathEscape(string(volume)))
	if err := c.do(ctx, http.MethodPut, path, struct{}{}, nil); err != nil {
		return timeline.NewStoreError("rest", "detach", err)
	}
	return nil
}

// ListAttached fetches the policies attached to a volume, ordered by id.
func (c *RESTClient) ListAttached(ctx context.Context, volume timeline.VolumeID) ([]timeline.RetentionPolicy, error) {
	var policies []timeline.RetentionPolicy
	path := "/api/config/volumes/" + url.PathEscape(string(volume)) + "/snapshot/policies"
	if err := c.do(ctx, http.MethodGet, path, nil, &policies); err != nil {
		return nil, timeline.NewStoreError("rest", "list_attached", err)
	}
	sortByID(policies)
	return policies, nil
}

// List fetches every policy.
func (c *RESTClient) List(ctx context.Context) ([]timeline.RetentionPolicy, error) {
	var policies []timeline.RetentionPolicy
	if err := c.do(ctx, http.MethodGet, "/api/config/snapshot/policies", nil, &policies); err != nil {
		return nil, timeline.NewStoreError("rest", "list", err)
	}
	sortByID(policies)
	return policies, nil
}

// Close releases idle connections.
func (c *RESTClient) Close() error {
	c.HTTP.CloseIdleConnections()
	return nil
}

// ErrBadRequest is matched by every 400 response.
var ErrBadRequest = errors.New("bad request")

// APIError is a non-2xx response. It unwraps to the store sentinel that
// matches its status code. A 400 also matches timeline.ErrInvalidRule when
// the server reported a rule error.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

func (e *APIError) Unwrap() []error {
	switch e.Status {
	case http.StatusNotFound:
		return []error{timeline.ErrNotFound}
	case http.StatusConflict:
		return []error{timeline.ErrAttached}
	case http.StatusBadRequest:
		if strings.Contains(e.Message, timeline.ErrInvalidRule.Error()) {
			return []error{ErrBadRequest, timeline.ErrInvalidRule}
		}
		return []error{ErrBadRequest}
	default:
		return nil
	}
}

func (c *RESTClient) do(ctx context.Context, method, path string, body any, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, r)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.AuthHeader != "" && c.AuthValue != "" {
		req.Header.Set(c.AuthHeader, c.AuthValue)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return &APIError{Method: method, Path: path, Status: resp.StatusCode, Message: errorMessage(b)}
	}
	if out != nil && len(b) > 0 {
		if err := json.Unmarshal(b, out); err != nil {
			return fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

// errorMessage extracts {"error": "..."} bodies and falls back to the raw
// text.
func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}
