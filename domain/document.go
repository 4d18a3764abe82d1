package domain

// Document is an entry of the recommendation index.
type Document struct {
	URL   string `json:"url" validate:"required,url"`
	Title string `json:"title" validate:"required"`
	Body  string `json:"body"`
}

func (d Document) Source() Source {
	return Source{URL: d.URL, Title: d.Title}
}
