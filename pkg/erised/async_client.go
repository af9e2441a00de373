// Package erised provides the official Go client for the Erised visual memory service.
package erised

import (
	"context"
	"sync"
)

// AsyncClient provides non-blocking Erised operations.
//
// It wraps the synchronous Client and executes every operation in its own
// goroutine, making it suitable for issuing many requests concurrently on
// one session. Ordering between concurrently issued calls is not
// guaranteed; each completes independently when its response arrives.
//
// All async methods return channels that receive exactly one result and are
// then closed. The client tracks all goroutines and provides Wait() to
// ensure all operations finish. Cancelling a call's context aborts its
// in-flight request and delivers the resulting error on the channel.
//
// Example:
//
//	asyncClient, _ := erised.NewAsyncClient(config)
//	defer asyncClient.Close()
//
//	resultChan := asyncClient.AddAsync(ctx, erised.ImageFile("shot.png"), "user_001")
//	result := <-resultChan
//	if result.Error != nil {
//	    log.Fatal(result.Error)
//	}
type AsyncClient struct {
	*Client
	wg sync.WaitGroup
}

// NewAsyncClient creates a new non-blocking Erised client.
//
// Parameters:
//   - cfg: Client configuration
//
// Returns:
//   - *AsyncClient: The asynchronous client instance
//   - error: ConfigError if the configuration is invalid
func NewAsyncClient(cfg *Config) (*AsyncClient, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &AsyncClient{
		Client: client,
	}, nil
}

// AddAsync uploads an image asynchronously.
//
// The operation executes in a separate goroutine and returns its result via
// a channel.
//
// Parameters:
//   - ctx: Context for controlling request lifecycle
//   - image: Image source (ImageFile, ImageBytes or ImageReader)
//   - userID: User identifier for memory isolation (required)
//   - opts: Optional add options (Metadata, MemoryID)
//
// Returns:
//   - <-chan *AsyncAddResult: Channel that receives the result containing the acknowledgement and error
func (ac *AsyncClient) AddAsync(ctx context.Context, image Image, userID string, opts ...AddOption) <-chan *AsyncAddResult {
	resultChan := make(chan *AsyncAddResult, 1)
	ac.wg.Add(1)

	go func() {
		defer ac.wg.Done()
		result, err := ac.Add(ctx, image, userID, opts...)
		resultChan <- &AsyncAddResult{
			Result: result,
			Error:  err,
		}
		close(resultChan)
	}()

	return resultChan
}

// SearchAsync searches memories asynchronously.
//
// The operation executes in a separate goroutine and returns its result via
// a channel.
//
// Parameters:
//   - ctx: Context for controlling request lifecycle
//   - query: Natural-language search query
//   - opts: Optional search options (UserID, TopK, Filters, ScoreThreshold)
//
// Returns:
//   - <-chan *AsyncSearchResult: Channel that receives search results containing Memories and error
func (ac *AsyncClient) SearchAsync(ctx context.Context, query string, opts ...SearchOption) <-chan *AsyncSearchResult {
	resultChan := make(chan *AsyncSearchResult, 1)
	ac.wg.Add(1)

	go func() {
		defer ac.wg.Done()
		memories, err := ac.Search(ctx, query, opts...)
		resultChan <- &AsyncSearchResult{
			Memories: memories,
			Error:    err,
		}
		close(resultChan)
	}()

	return resultChan
}

// ListAsync retrieves a page of memories asynchronously.
//
// The operation executes in a separate goroutine and returns its result via
// a channel.
//
// Parameters:
//   - ctx: Context for controlling request lifecycle
//   - opts: Optional list options (UserID, Limit, Offset)
//
// Returns:
//   - <-chan *AsyncListResult: Channel that receives the page result and error
func (ac *AsyncClient) ListAsync(ctx context.Context, opts ...ListOption) <-chan *AsyncListResult {
	resultChan := make(chan *AsyncListResult, 1)
	ac.wg.Add(1)

	go func() {
		defer ac.wg.Done()
		result, err := ac.List(ctx, opts...)
		resultChan <- &AsyncListResult{
			Result: result,
			Error:  err,
		}
		close(resultChan)
	}()

	return resultChan
}

// GetAsync retrieves a memory by ID asynchronously.
//
// The operation executes in a separate goroutine and returns its result via
// a channel.
//
// Parameters:
//   - ctx: Context for controlling request lifecycle
//   - memoryID: Memory identifier
//
// Returns:
//   - <-chan *MemoryResult: Channel that receives the result containing Memory and error
func (ac *AsyncClient) GetAsync(ctx context.Context, memoryID string) <-chan *MemoryResult {
	resultChan := make(chan *MemoryResult, 1)
	ac.wg.Add(1)

	go func() {
		defer ac.wg.Done()
		memory, err := ac.Get(ctx, memoryID)
		resultChan <- &MemoryResult{
			Memory: memory,
			Error:  err,
		}
		close(resultChan)
	}()

	return resultChan
}

// GetImageAsync retrieves a memory's stored image bytes asynchronously.
//
// Parameters:
//   - ctx: Context for controlling request lifecycle
//   - memoryID: Memory identifier
//
// Returns:
//   - <-chan *ImageResult: Channel that receives the image bytes and error
func (ac *AsyncClient) GetImageAsync(ctx context.Context, memoryID string) <-chan *ImageResult {
	resultChan := make(chan *ImageResult, 1)
	ac.wg.Add(1)

	go func() {
		defer ac.wg.Done()
		data, err := ac.GetImage(ctx, memoryID)
		resultChan <- &ImageResult{
			Data:  data,
			Error: err,
		}
		close(resultChan)
	}()

	return resultChan
}

// GetImageURLAsync resolves a memory's absolute image URL asynchronously.
//
// Parameters:
//   - ctx: Context for controlling request lifecycle
//   - memoryID: Memory identifier
//
// Returns:
//   - <-chan *ImageURLResult: Channel that receives the URL and error
func (ac *AsyncClient) GetImageURLAsync(ctx context.Context, memoryID string) <-chan *ImageURLResult {
	resultChan := make(chan *ImageURLResult, 1)
	ac.wg.Add(1)

	go func() {
		defer ac.wg.Done()
		imageURL, err := ac.GetImageURL(ctx, memoryID)
		resultChan <- &ImageURLResult{
			URL:   imageURL,
			Error: err,
		}
		close(resultChan)
	}()

	return resultChan
}

// DeleteAsync deletes a memory asynchronously.
//
// The operation executes in a separate goroutine and returns its result via
// a channel.
//
// Parameters:
//   - ctx: Context for controlling request lifecycle
//   - memoryID: Memory identifier
//
// Returns:
//   - <-chan error: Channel that receives error (nil if deletion succeeds)
func (ac *AsyncClient) DeleteAsync(ctx context.Context, memoryID string) <-chan error {
	errChan := make(chan error, 1)
	ac.wg.Add(1)

	go func() {
		defer ac.wg.Done()
		err := ac.Delete(ctx, memoryID)
		errChan <- err
		close(errChan)
	}()

	return errChan
}

// HealthAsync checks service health asynchronously.
//
// Parameters:
//   - ctx: Context for controlling request lifecycle
//
// Returns:
//   - <-chan *HealthResult: Channel that receives the health summary and error
func (ac *AsyncClient) HealthAsync(ctx context.Context) <-chan *HealthResult {
	resultChan := make(chan *HealthResult, 1)
	ac.wg.Add(1)

	go func() {
		defer ac.wg.Done()
		status, err := ac.Health(ctx)
		resultChan <- &HealthResult{
			Status: status,
			Error:  err,
		}
		close(resultChan)
	}()

	return resultChan
}

// Wait waits for all asynchronous operations to complete.
//
// This method blocks until all goroutines started by async methods have
// finished. It should be called before program exit to ensure all
// operations complete.
func (ac *AsyncClient) Wait() {
	ac.wg.Wait()
}

// Close closes the asynchronous client.
//
// It first waits for all asynchronous operations to complete, then closes
// the underlying client.
func (ac *AsyncClient) Close() error {
	ac.Wait()
	return ac.Client.Close()
}

// AsyncAddResult contains the result of an asynchronous Add operation.
type AsyncAddResult struct {
	// Result is the server acknowledgement (nil if an error occurred).
	Result *AddResult

	// Error is the error returned by the operation (nil if it succeeded).
	Error error
}

// AsyncSearchResult contains the result of an asynchronous Search operation.
type AsyncSearchResult struct {
	// Memories is the list of matching memories.
	Memories []*Memory

	// Error is the error returned by the operation (nil if it succeeded).
	Error error
}

// AsyncListResult contains the result of an asynchronous List operation.
type AsyncListResult struct {
	// Result is the page of memories (nil if an error occurred).
	Result *ListResult

	// Error is the error returned by the operation (nil if it succeeded).
	Error error
}

// MemoryResult contains the result of a single-memory operation.
type MemoryResult struct {
	// Memory is the memory returned by the operation (nil if an error occurred).
	Memory *Memory

	// Error is the error returned by the operation (nil if it succeeded).
	Error error
}

// ImageResult contains the result of an asynchronous GetImage operation.
type ImageResult struct {
	// Data is the raw image content (nil if an error occurred).
	Data []byte

	// Error is the error returned by the operation (nil if it succeeded).
	Error error
}

// ImageURLResult contains the result of an asynchronous GetImageURL operation.
type ImageURLResult struct {
	// URL is the absolute image URL (empty if an error occurred).
	URL string

	// Error is the error returned by the operation (nil if it succeeded).
	Error error
}

// HealthResult contains the result of an asynchronous Health operation.
type HealthResult struct {
	// Status is the health summary (nil if an error occurred).
	Status *HealthStatus

	// Error is the error returned by the operation (nil if it succeeded).
	Error error
}
