package models

// SearchFilters is the set of filter criteria accepted by the filtered
// search endpoint. An empty slice for any field imposes no constraint on
// that field. Price is special-cased: a two-element [min, max] slice selects
// the closed interval between the two values.
type SearchFilters struct {
	Category []string  `json:"category"`
	Price    []float64 `json:"price"`
	Shipping []bool    `json:"shipping"`
}

// SearchQuery is the request body of the filtered search endpoint.
type SearchQuery struct {
	Order   string        `json:"order"`
	SortBy  string        `json:"sortBy"`
	Limit   int           `json:"limit"`
	Skip    int           `json:"skip"`
	Filters SearchFilters `json:"filters"`
}

// SearchResult wraps the filtered search response with its result count.
type SearchResult struct {
	Size int       `json:"size"`
	Data []Product `json:"data"`
}
