package document

// NotFoundError is returned when a document doesn't exist in the store.
type NotFoundError struct {
	Name string
}

func (e NotFoundError) Error() string {
	if e.Name == "" {
		return "document not found"
	}

	return "document not found: " + e.Name
}
