// Package erised provides the official Go client for the Erised visual memory service.
package erised

import (
	"context"
	"sync"
)

// ListStreamResult contains a batch of memories from a streaming List.
type ListStreamResult struct {
	// Memories is a batch of records, in server order.
	Memories []*Memory

	// BatchIndex is the index of this batch (0-based).
	BatchIndex int

	// IsLastBatch indicates whether this is the last batch.
	IsLastBatch bool

	// Error contains any error that occurred during streaming (if any).
	Error error
}

// ListStream pages through stored memories for large datasets.
//
// Instead of returning one page, this method walks the server's offset
// pagination and streams each page through a channel, making it suitable
// for processing large memory sets without holding everything in memory at
// once. Each batch issues one List request.
//
// The WithLimit option caps the total number of records streamed and
// WithOffset sets the starting position. Without a limit the stream runs
// until the server is exhausted, up to a 10000-record safety cap.
//
// Parameters:
//   - ctx: Context for cancellation
//   - batchSize: Number of memories per batch
//   - opts: Optional parameters (UserID, Limit, Offset)
//
// Returns a channel that receives ListStreamResult batches.
// The channel is closed when all memories have been sent or an error occurs.
//
// Example:
//
//	resultChan := client.ListStream(ctx, 100, // batch size
//	    erised.WithUserIDForList("user_001"),
//	    erised.WithLimit(1000), // maximum total results
//	)
//
//	for result := range resultChan {
//	    if result.Error != nil {
//	        log.Fatal(result.Error)
//	    }
//	    for _, memory := range result.Memories {
//	        processMemory(memory)
//	    }
//	}
func (c *Client) ListStream(ctx context.Context, batchSize int, opts ...ListOption) <-chan *ListStreamResult {
	resultChan := make(chan *ListStreamResult, 1)

	go func() {
		defer close(resultChan)

		if batchSize <= 0 {
			resultChan <- &ListStreamResult{
				Error: &ValidationError{Field: "batch_size", Reason: "must be greater than 0"},
			}
			return
		}

		// Apply options without List's single-page default: here an unset
		// limit means "stream until exhaustion", not one page's worth.
		listOpts := &ListOptions{}
		for _, opt := range opts {
			opt(listOpts)
		}

		maxResults := listOpts.Limit
		if maxResults <= 0 {
			maxResults = 10000 // Default maximum for streaming
		}

		batchIndex := 0
		offset := listOpts.Offset

		for {
			// Check context cancellation
			select {
			case <-ctx.Done():
				resultChan <- &ListStreamResult{
					BatchIndex: batchIndex,
					Error:      ctx.Err(),
				}
				return
			default:
			}

			// Adjust page size for the last batch
			remaining := maxResults - (offset - listOpts.Offset)
			if remaining <= 0 {
				break
			}
			pageSize := batchSize
			if remaining < batchSize {
				pageSize = remaining
			}

			page, err := c.List(ctx,
				WithUserIDForList(listOpts.UserID),
				WithLimit(pageSize),
				WithOffset(offset),
			)
			if err != nil {
				resultChan <- &ListStreamResult{
					BatchIndex: batchIndex,
					Error:      err,
				}
				return
			}

			// If no more results, we're done
			if len(page.Memories) == 0 {
				break
			}

			isLastBatch := len(page.Memories) < pageSize

			resultChan <- &ListStreamResult{
				Memories:    page.Memories,
				BatchIndex:  batchIndex,
				IsLastBatch: isLastBatch,
			}

			batchIndex++
			offset += len(page.Memories)

			// If this was the last batch, stop
			if isLastBatch {
				break
			}
		}
	}()

	return resultChan
}

// BatchAddResult contains the result of a batch add operation.
type BatchAddResult struct {
	// Added contains acknowledgements for successfully stored images.
	Added []*AddResult

	// Failed contains items that failed to upload, along with their errors.
	Failed []BatchAddError

	// Total is the total number of items in the batch.
	Total int

	// AddedCount is the number of successfully stored images.
	AddedCount int

	// FailedCount is the number of failed uploads.
	FailedCount int
}

// BatchAddError contains information about a failed batch add operation.
type BatchAddError struct {
	// Filename is the upload filename of the image that failed.
	Filename string

	// Error is the error that occurred.
	Error error

	// Index is the index of the item in the original batch.
	Index int
}

// BatchAdd uploads multiple images in a single batch operation.
//
// Images upload concurrently within the batch while respecting resource
// limits, and failures stay isolated per item: one bad image never aborts
// its siblings, and each item is attempted exactly once.
//
// The options apply to every image in the batch. WithMemoryID is rejected
// here because one caller-chosen ID cannot address multiple memories; the
// server assigns IDs for batch uploads.
//
// Parameters:
//   - ctx: Context for cancellation
//   - images: Image sources to upload
//   - userID: User identifier applied to every image (required)
//   - opts: Optional parameters (Metadata), applied to every image
//
// Returns a BatchAddResult containing acknowledgements and any failures.
//
// Example:
//
//	images := []erised.Image{
//	    erised.ImageFile("shot-1.png"),
//	    erised.ImageFile("shot-2.png"),
//	    erised.ImageFile("shot-3.png"),
//	}
//	result, err := client.BatchAdd(ctx, images, "user_001",
//	    erised.WithMetadata(map[string]interface{}{"batch": "import"}),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Stored %d/%d images\n", result.AddedCount, result.Total)
func (c *Client) BatchAdd(ctx context.Context, images []Image, userID string, opts ...AddOption) (*BatchAddResult, error) {
	if len(images) == 0 {
		return &BatchAddResult{
			Total:       0,
			AddedCount:  0,
			FailedCount: 0,
		}, nil
	}

	addOpts := applyAddOptions(opts)
	if addOpts.MemoryID != "" {
		return nil, &ValidationError{Field: "memory_id", Reason: "caller-chosen IDs are not supported in batch uploads"}
	}

	result := &BatchAddResult{
		Total:       len(images),
		Added:       make([]*AddResult, 0, len(images)),
		Failed:      make([]BatchAddError, 0),
		AddedCount:  0,
		FailedCount: 0,
	}

	// Use a semaphore to limit concurrent uploads
	const maxConcurrency = 10
	sem := make(chan struct{}, maxConcurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i, image := range images {
		wg.Add(1)
		sem <- struct{}{} // Acquire semaphore

		go func(index int, img Image) {
			defer wg.Done()
			defer func() { <-sem }() // Release semaphore

			// Check context cancellation
			select {
			case <-ctx.Done():
				mu.Lock()
				result.Failed = append(result.Failed, BatchAddError{
					Filename: img.Filename(),
					Error:    ctx.Err(),
					Index:    index,
				})
				result.FailedCount++
				mu.Unlock()
				return
			default:
			}

			// Upload image
			ack, err := c.Add(ctx, img, userID, opts...)
			if err != nil {
				mu.Lock()
				result.Failed = append(result.Failed, BatchAddError{
					Filename: img.Filename(),
					Error:    err,
					Index:    index,
				})
				result.FailedCount++
				mu.Unlock()
				return
			}

			mu.Lock()
			result.Added = append(result.Added, ack)
			result.AddedCount++
			mu.Unlock()
		}(i, image)
	}

	wg.Wait()

	return result, nil
}
