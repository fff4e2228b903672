package todo

// TodoItem is a single task on the list
type TodoItem struct {
	// Identity
	ID string `json:"id" dynamodbav:"id"`

	// Content
	Title    string `json:"title" dynamodbav:"title"`
	Quantity uint32 `json:"quantity" dynamodbav:"quantity"`

	// Timestamps (see TimestampLayout)
	CreatedAt string  `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt *string `json:"updated_at" dynamodbav:"updated_at"`
}

// Clone returns a deep copy of the item
func (t *TodoItem) Clone() *TodoItem {
	if t == nil {
		return nil
	}

	clone := *t
	if t.UpdatedAt != nil {
		clone.UpdatedAt = ToPtr(*t.UpdatedAt)
	}
	return &clone
}

// IsUpdated reports whether the item has been updated at least once
func (t *TodoItem) IsUpdated() bool {
	return t.UpdatedAt != nil
}

// ItemInput carries the client-supplied fields for create and update
type ItemInput struct {
	Title    string `json:"title"`
	Quantity uint32 `json:"quantity"`
}
