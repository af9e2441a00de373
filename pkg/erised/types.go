// Package erised provides the official Go client for the Erised visual memory service.
package erised

// Memory represents a single visual memory stored by the service.
//
// A memory is one stored image plus its metadata and the identifier the
// server assigned to it. The image bytes themselves are not embedded in the
// record; they are fetched on demand via Client.GetImage using the record's
// ImageURL.
//
// Example:
//
//	memory, _ := client.Get(ctx, "m-001")
//	fmt.Println(memory.MemoryID, memory.Metadata["app"])
type Memory struct {
	// MemoryID is the opaque identifier assigned by the server.
	MemoryID string `json:"memory_id"`

	// UserID identifies the user who owns this memory.
	UserID string `json:"user_id,omitempty"`

	// Metadata contains the caller-supplied structured information
	// stored alongside the image.
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// ImageURL is the URL of the stored image, usually server-relative but
	// used verbatim when absolute. Empty when the server did not include one.
	ImageURL string `json:"image_url,omitempty"`

	// Score is the similarity score from search operations.
	// Higher scores indicate better matches. Zero outside search results.
	Score float64 `json:"score,omitempty"`
}

// AddResult contains the server acknowledgement for a stored memory.
type AddResult struct {
	// MemoryID is the identifier assigned to the new memory.
	MemoryID string `json:"memory_id"`

	// Message is the server's acknowledgement text, if any.
	Message string `json:"message,omitempty"`
}

// ListResult contains one page of memories from a List operation.
//
// Total, Limit and Offset echo the server's pagination state when the
// service includes them; they are zero otherwise.
type ListResult struct {
	// Memories is the page of records, in server order.
	Memories []*Memory `json:"memories"`

	// Total is the total number of memories matching the listing, across
	// all pages.
	Total int `json:"total,omitempty"`

	// Limit is the page size the server applied.
	Limit int `json:"limit,omitempty"`

	// Offset is the number of records skipped before this page.
	Offset int `json:"offset,omitempty"`
}

// HealthStatus contains the service health summary.
type HealthStatus struct {
	// Status is "ok" when the service is healthy.
	Status string `json:"status"`
}
