package notification

// Category classifies a notification for rendering.
type Category string

const (
	CategoryInfo    Category = "info"
	CategorySuccess Category = "success"
	CategoryWarning Category = "warning"
	CategoryError   Category = "error"
)

// Valid reports whether the category is one of the known values.
func (c Category) Valid() bool {
	switch c {
	case CategoryInfo, CategorySuccess, CategoryWarning, CategoryError:
		return true
	}
	return false
}

// Notification is a single user-facing alert. Once created only Read is
// ever mutated; everything else is immutable.
type Notification struct {
	ID       string   `json:"id"`
	Category Category `json:"type"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Read     bool     `json:"read"`
	// CreatedAt is an RFC 3339 string for storage safety.
	CreatedAt string `json:"createdAt"`
	Link      string `json:"link,omitempty"`
}
