package model

// Category is a spending or income bucket.
type Category struct {
	ID          string
	Name        string
	Icon        string // presentation reference, opaque here
	Color       string // presentation reference, opaque here
	Kind        Kind
	HouseholdID string
	IsDefault   bool // seeded rather than user-created
	Order       int  // display sort; not unique
}
