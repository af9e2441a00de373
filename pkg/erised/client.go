// Package erised provides the official Go client for the Erised visual memory service.
package erised

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Client is the main Erised client for visual memory operations.
//
// It provides the complete blocking interface for storing, searching, and
// managing image memories:
//   - Add uploads an image with metadata
//   - Search finds memories by natural-language query
//   - List pages through stored memories
//   - Get, GetImage, GetImageURL and Delete address single memories
//
// Every operation translates into exactly one authenticated HTTPS request
// against the remote service; embedding, ranking and persistence all happen
// server-side, and nothing is stored locally. Operations never retry on
// their own, so a failed Add can safely be retried by the caller without
// hidden duplicates.
//
// The client is safe for concurrent use from multiple goroutines: after
// construction it holds no mutable state beyond the closed flag, and the
// underlying http.Client pools connections and is itself safe for
// concurrent use.
//
// Example usage:
//
//	config, _ := erised.LoadConfigFromEnv()
//	client, _ := erised.NewClient(config)
//	defer client.Close()
//
//	result, _ := client.Add(ctx, erised.ImageFile("shot.png"), "user_001",
//	    erised.WithMetadata(map[string]interface{}{"app": "vscode"}),
//	)
type Client struct {
	// client is the HTTP client for API requests.
	client *http.Client

	// baseURL is the API root with any trailing slash removed.
	baseURL string

	// apiKey authenticates every request.
	apiKey string

	// validate checks request parameters before they reach the wire.
	validate *validator.Validate

	// snowflakeNode generates X-Request-ID correlation IDs.
	snowflakeNode *snowflake.Node

	// log receives per-request debug logging.
	log zerolog.Logger

	// closed flips once Close runs; later operations fail fast.
	closed atomic.Bool
}

// NewClient creates a new Erised client.
//
// The configuration is validated locally and defaults are applied for unset
// fields (BaseURL, Timeout). No network connection is established here;
// the first operation dials the service lazily and subsequent requests
// reuse pooled connections.
//
// Parameters:
//   - cfg: Configuration containing the API key and optional overrides
//
// Returns a new Client instance, or a ConfigError if the configuration is
// invalid.
//
// Example:
//
//	client, err := erised.NewClient(&erised.Config{
//	    APIKey: "ek-...",
//	})
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: timeout,
		}
	}

	// Initialize Snowflake ID generator for request correlation
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, &ConfigError{Field: "request_id", Reason: err.Error()}
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Client{
		client:        httpClient,
		baseURL:       baseURL,
		apiKey:        cfg.APIKey,
		validate:      newValidator(),
		snowflakeNode: node,
		log:           logger,
	}, nil
}

// Add uploads an image to visual memory.
//
// The method:
//  1. Validates user_id, the image source and metadata locally
//  2. Uploads the image as a multipart form with its metadata
//  3. Returns the server-assigned memory ID
//
// Parameters:
//   - ctx: Context for cancellation
//   - image: Image source (ImageFile, ImageBytes or ImageReader)
//   - userID: User identifier for memory isolation (required)
//   - opts: Optional parameters (Metadata, MemoryID)
//
// Returns the server acknowledgement, or an error if the operation fails.
//
// Example:
//
//	result, err := client.Add(ctx, erised.ImageFile("screenshot.png"), "user_001",
//	    erised.WithMetadata(map[string]interface{}{
//	        "app":    "vscode",
//	        "window": "editor",
//	    }),
//	)
func (c *Client) Add(ctx context.Context, image Image, userID string, opts ...AddOption) (*AddResult, error) {
	addOpts := applyAddOptions(opts)

	if err := c.checkParams(&addParams{UserID: userID}); err != nil {
		return nil, err
	}
	if image.isZero() {
		return nil, &ValidationError{Field: "image", Reason: "an image source is required"}
	}

	// Check context cancellation before the image is read
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	data, err := image.read()
	if err != nil {
		return nil, &ValidationError{Field: "image", Reason: err.Error()}
	}
	if len(data) == 0 {
		return nil, &ValidationError{Field: "image", Reason: "image is empty"}
	}

	fields := map[string]string{
		"user_id": userID,
	}
	if len(addOpts.Metadata) > 0 {
		encoded, err := json.Marshal(addOpts.Metadata)
		if err != nil {
			return nil, &ValidationError{Field: "metadata", Reason: fmt.Sprintf("not JSON-serializable: %v", err)}
		}
		fields["metadata"] = string(encoded)
	}
	if addOpts.MemoryID != "" {
		fields["memory_id"] = addOpts.MemoryID
	}

	body, contentType, err := multipartBody(image.Filename(), data, fields)
	if err != nil {
		return nil, &ValidationError{Field: "image", Reason: err.Error()}
	}

	var result AddResult
	if err := c.doJSON(ctx, &request{
		op:          "Add",
		method:      http.MethodPost,
		path:        "/v1/memories/add",
		body:        body,
		contentType: contentType,
	}, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// Search finds memories matching a natural-language query.
//
// Results come back sorted by descending similarity score and are truncated
// to the configured top_k; the server's ordering is not trusted.
//
// Parameters:
//   - ctx: Context for cancellation
//   - query: Natural-language search query (required)
//   - opts: Optional parameters (UserID, TopK, Filters, ScoreThreshold)
//
// Returns the matching memories, or an error if the operation fails.
//
// Example:
//
//	results, err := client.Search(ctx, "dark theme editor",
//	    erised.WithUserIDForSearch("user_001"),
//	    erised.WithTopK(5),
//	)
//	for _, memory := range results {
//	    fmt.Printf("%s: %.2f\n", memory.MemoryID, memory.Score)
//	}
func (c *Client) Search(ctx context.Context, query string, opts ...SearchOption) ([]*Memory, error) {
	searchOpts := applySearchOptions(opts)

	if err := c.checkParams(&searchParams{Query: query, TopK: searchOpts.TopK}); err != nil {
		return nil, err
	}

	filters := make(map[string]interface{}, len(searchOpts.Filters)+1)
	for k, v := range searchOpts.Filters {
		filters[k] = v
	}
	if searchOpts.UserID != "" {
		filters["user_id"] = searchOpts.UserID
	}

	payload := struct {
		Query          string                 `json:"query"`
		TopK           int                    `json:"top_k"`
		Filters        map[string]interface{} `json:"filters,omitempty"`
		ScoreThreshold *float64               `json:"score_threshold,omitempty"`
	}{
		Query:          query,
		TopK:           searchOpts.TopK,
		ScoreThreshold: searchOpts.ScoreThreshold,
	}
	if len(filters) > 0 {
		payload.Filters = filters
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, &ValidationError{Field: "filters", Reason: fmt.Sprintf("not JSON-serializable: %v", err)}
	}

	var response struct {
		Results []*Memory `json:"results"`
	}
	if err := c.doJSON(ctx, &request{
		op:          "Search",
		method:      http.MethodPost,
		path:        "/v1/memories/search",
		body:        bytes.NewBuffer(jsonData),
		contentType: "application/json",
	}, &response); err != nil {
		return nil, err
	}

	memories := response.Results
	sort.SliceStable(memories, func(i, j int) bool {
		return memories[i].Score > memories[j].Score
	})
	if len(memories) > searchOpts.TopK {
		memories = memories[:searchOpts.TopK]
	}

	return memories, nil
}

// List retrieves stored memories, optionally filtered by user.
//
// Records come back in server order, which is not guaranteed to be sorted.
// Pagination uses limit and offset; the returned ListResult echoes the
// server's pagination state when the service provides it.
//
// Parameters:
//   - ctx: Context for cancellation
//   - opts: Optional parameters (UserID, Limit, Offset)
//
// Returns one page of memories, or an error if the operation fails.
//
// Example:
//
//	page, err := client.List(ctx,
//	    erised.WithUserIDForList("user_001"),
//	    erised.WithLimit(50),
//	)
func (c *Client) List(ctx context.Context, opts ...ListOption) (*ListResult, error) {
	listOpts := applyListOptions(opts)

	if err := c.checkParams(&listParams{Limit: listOpts.Limit, Offset: listOpts.Offset}); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(listOpts.Limit))
	query.Set("offset", strconv.Itoa(listOpts.Offset))
	if listOpts.UserID != "" {
		query.Set("user_id", listOpts.UserID)
	}

	var result ListResult
	if err := c.doJSON(ctx, &request{
		op:     "List",
		method: http.MethodGet,
		path:   "/v1/memories",
		query:  query,
	}, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// Get retrieves a single memory by ID.
//
// Parameters:
//   - ctx: Context for cancellation
//   - memoryID: The server-assigned memory identifier
//
// Returns the memory record, or an error if the operation fails. An unknown
// ID yields a NotFoundError.
//
// Example:
//
//	memory, err := client.Get(ctx, "m-001")
//	if errors.Is(err, erised.ErrNotFound) {
//	    // the memory does not exist
//	}
func (c *Client) Get(ctx context.Context, memoryID string) (*Memory, error) {
	if err := c.checkParams(&memoryIDParams{MemoryID: memoryID}); err != nil {
		return nil, err
	}

	var memory Memory
	if err := c.doJSON(ctx, &request{
		op:       "Get",
		method:   http.MethodGet,
		path:     "/v1/memories/" + url.PathEscape(memoryID),
		memoryID: memoryID,
	}, &memory); err != nil {
		return nil, err
	}

	return &memory, nil
}

// GetImage retrieves the stored image bytes for a memory.
//
// The method fetches the record first, then downloads the image the
// record's image URL points at. The returned bytes are exactly what was
// originally uploaded.
//
// Parameters:
//   - ctx: Context for cancellation
//   - memoryID: The server-assigned memory identifier
//
// Returns the raw image content, or an error if the operation fails. A
// record without a stored image yields ErrNoImage.
//
// Example:
//
//	data, err := client.GetImage(ctx, "m-001")
//	if err == nil {
//	    _ = os.WriteFile("shot.png", data, 0o644)
//	}
func (c *Client) GetImage(ctx context.Context, memoryID string) ([]byte, error) {
	memory, err := c.Get(ctx, memoryID)
	if err != nil {
		return nil, err
	}

	path, err := imagePath(memory)
	if err != nil {
		return nil, fmt.Errorf("erised: GetImage: %w: %s", err, memoryID)
	}

	data, _, err := c.do(ctx, &request{
		op:       "GetImage",
		method:   http.MethodGet,
		path:     path,
		memoryID: memoryID,
	})
	if err != nil {
		return nil, err
	}

	return data, nil
}

// GetImageURL returns the absolute URL of a memory's stored image.
//
// The URL requires the same bearer authentication as every other endpoint;
// it is suitable for handing to another authenticated fetcher, not for
// public embedding.
//
// Returns ErrNoImage when the record carries no stored image.
func (c *Client) GetImageURL(ctx context.Context, memoryID string) (string, error) {
	memory, err := c.Get(ctx, memoryID)
	if err != nil {
		return "", err
	}

	path, err := imagePath(memory)
	if err != nil {
		return "", fmt.Errorf("erised: GetImageURL: %w: %s", err, memoryID)
	}
	if strings.Contains(path, "://") {
		return path, nil
	}

	return c.baseURL + path, nil
}

// Delete removes a memory by ID.
//
// Parameters:
//   - ctx: Context for cancellation
//   - memoryID: The server-assigned memory identifier
//
// Returns nil when the server acknowledges the deletion. An unknown ID
// yields a NotFoundError.
//
// Example:
//
//	if err := client.Delete(ctx, "m-001"); err != nil {
//	    log.Fatal(err)
//	}
func (c *Client) Delete(ctx context.Context, memoryID string) error {
	if err := c.checkParams(&memoryIDParams{MemoryID: memoryID}); err != nil {
		return err
	}

	return c.doJSON(ctx, &request{
		op:       "Delete",
		method:   http.MethodDelete,
		path:     "/v1/memories/" + url.PathEscape(memoryID),
		memoryID: memoryID,
	}, nil)
}

// Health checks the service health endpoint.
//
// Returns the health summary, or an error if the service is unreachable or
// reports failure.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.doJSON(ctx, &request{
		op:     "Health",
		method: http.MethodGet,
		path:   "/health",
	}, &status); err != nil {
		return nil, err
	}

	return &status, nil
}

// Close closes the client and releases its connection resources.
//
// Idle pooled connections are shut down. Close is idempotent; operations
// issued after Close fail with ErrClientClosed without touching the
// network.
//
// Example:
//
//	defer client.Close()
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.client.CloseIdleConnections()
	return nil
}

// imagePath returns the location of a record's stored image. Absolute URLs
// pass through verbatim; anything else is normalized to a server-relative
// path.
func imagePath(memory *Memory) (string, error) {
	if memory.ImageURL == "" {
		return "", ErrNoImage
	}
	if strings.Contains(memory.ImageURL, "://") {
		return memory.ImageURL, nil
	}
	if !strings.HasPrefix(memory.ImageURL, "/") {
		return "/" + memory.ImageURL, nil
	}
	return memory.ImageURL, nil
}
