package shared

// Filter carries list-query options through the repository interfaces.
// Filters holds column-equality constraints keyed by column name.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]interface{}
}
