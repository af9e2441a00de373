// Package erised provides the official Go client for the Erised visual memory service.
package erised

// AddOption is a function type for configuring Add operations.
//
// Options are applied using the functional options pattern, allowing
// flexible configuration without requiring all parameters.
type AddOption func(*AddOptions)

// AddOptions contains configuration options for Add operations.
type AddOptions struct {
	// Metadata contains additional structured information stored with the
	// image. Values must be JSON-serializable.
	Metadata map[string]interface{}

	// MemoryID is a caller-chosen identifier for the new memory.
	// When empty, the server assigns one.
	MemoryID string
}

// WithMetadata sets metadata for Add operations.
//
// Metadata is stored verbatim with the memory and returned by Get, List and
// Search. Values must be JSON-serializable; Add fails with a ValidationError
// otherwise.
//
// Example:
//
//	result, _ := client.Add(ctx, image, "user_001",
//	    erised.WithMetadata(map[string]interface{}{
//	        "app":    "vscode",
//	        "window": "editor",
//	    }),
//	)
func WithMetadata(metadata map[string]interface{}) AddOption {
	return func(opts *AddOptions) {
		opts.Metadata = metadata
	}
}

// WithMemoryID sets a caller-chosen memory ID for Add operations.
//
// Example:
//
//	result, _ := client.Add(ctx, image, "user_001", erised.WithMemoryID("shot-2024-01-02"))
func WithMemoryID(memoryID string) AddOption {
	return func(opts *AddOptions) {
		opts.MemoryID = memoryID
	}
}

// SearchOption is a function type for configuring Search operations.
type SearchOption func(*SearchOptions)

// SearchOptions contains configuration options for Search operations.
type SearchOptions struct {
	// UserID filters results to a specific user.
	UserID string

	// TopK sets the maximum number of results to return.
	// Default: 10
	TopK int

	// Filters provides additional metadata filters.
	Filters map[string]interface{}

	// ScoreThreshold excludes results scoring below it.
	// Unset by default (no minimum).
	ScoreThreshold *float64
}

// WithUserIDForSearch sets the user ID filter for Search operations.
//
// Example:
//
//	results, _ := client.Search(ctx, "dark theme editor", erised.WithUserIDForSearch("user_001"))
func WithUserIDForSearch(userID string) SearchOption {
	return func(opts *SearchOptions) {
		opts.UserID = userID
	}
}

// WithTopK sets the maximum number of results for Search operations.
//
// Example:
//
//	results, _ := client.Search(ctx, "terminal window", erised.WithTopK(20))
func WithTopK(topK int) SearchOption {
	return func(opts *SearchOptions) {
		opts.TopK = topK
	}
}

// WithFilters sets metadata filters for Search operations.
//
// Filters allow searching by custom metadata fields.
//
// Example:
//
//	results, _ := client.Search(ctx, "login page",
//	    erised.WithFilters(map[string]interface{}{
//	        "app": "browser",
//	    }),
//	)
func WithFilters(filters map[string]interface{}) SearchOption {
	return func(opts *SearchOptions) {
		opts.Filters = filters
	}
}

// WithScoreThreshold sets the minimum similarity score for Search results.
//
// Only results with scores >= threshold are returned.
// Typical range: 0.0-1.0, where 1.0 is identical.
//
// Example:
//
//	results, _ := client.Search(ctx, "settings dialog", erised.WithScoreThreshold(0.7))
func WithScoreThreshold(threshold float64) SearchOption {
	return func(opts *SearchOptions) {
		opts.ScoreThreshold = &threshold
	}
}

// ListOption is a function type for configuring List operations.
type ListOption func(*ListOptions)

// ListOptions contains configuration options for List operations.
type ListOptions struct {
	// UserID filters results to a specific user.
	UserID string

	// Limit sets the maximum number of results to return.
	// Default: 100
	Limit int

	// Offset sets the number of results to skip (for pagination).
	// Default: 0
	Offset int
}

// WithUserIDForList sets the user ID filter for List operations.
//
// Example:
//
//	page, _ := client.List(ctx, erised.WithUserIDForList("user_001"))
func WithUserIDForList(userID string) ListOption {
	return func(opts *ListOptions) {
		opts.UserID = userID
	}
}

// WithLimit sets the maximum number of results for List operations.
//
// Example:
//
//	page, _ := client.List(ctx, erised.WithLimit(50))
func WithLimit(limit int) ListOption {
	return func(opts *ListOptions) {
		opts.Limit = limit
	}
}

// WithOffset sets the offset for List operations (for pagination).
//
// Example:
//
//	// Get second page of results
//	page, _ := client.List(ctx,
//	    erised.WithLimit(50),
//	    erised.WithOffset(50),
//	)
func WithOffset(offset int) ListOption {
	return func(opts *ListOptions) {
		opts.Offset = offset
	}
}

// applyAddOptions applies Add options to create AddOptions.
func applyAddOptions(opts []AddOption) *AddOptions {
	options := &AddOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// applySearchOptions applies Search options to create SearchOptions.
func applySearchOptions(opts []SearchOption) *SearchOptions {
	options := &SearchOptions{
		TopK: 10,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// applyListOptions applies List options to create ListOptions.
func applyListOptions(opts []ListOption) *ListOptions {
	options := &ListOptions{
		Limit:  100,
		Offset: 0,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
