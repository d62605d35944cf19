package store

// Article is a single news item as returned by a news source.
// URL uniquely identifies the article.
type Article struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Author      string `json:"author"`
	ImageURL    string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Source      Source `json:"source"`
}

// Source describes the publisher of the article.
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Page is a single page of articles, returned by a news source.
type Page struct {
	Articles     []Article `json:"articles"`
	TotalResults int       `json:"totalResults"`
}
