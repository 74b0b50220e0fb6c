package domain

// Product is a published catalog entry. Products are immutable once
// announced; the identifier is issued by the store backend, never by
// the conversation flow.
type Product struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	ImageURL    string `json:"image_url" db:"image_url"`
}

// IntakeDraft is the transient per-admin collection buffer built
// field-by-field during the product intake conversation. It is never
// persisted; abandoned drafts expire with the session.
type IntakeDraft struct {
	Name        string
	Description string
	ImageURL    string
}
