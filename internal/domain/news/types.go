package news

import "time"

// Source identifies the publisher of an article
type Source struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

// Article mirrors one element of the upstream /v2/everything response.
// Transient: fetched per query, never persisted.
type Article struct {
	Source      Source    `json:"source"`
	Author      string    `json:"author"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	URLToImage  string    `json:"urlToImage"`
	PublishedAt time.Time `json:"publishedAt"`
	Content     string    `json:"content"`
}

// Page is the fixed envelope the news proxy returns to clients
type Page struct {
	Articles     []Article `json:"articles"`
	TotalResults int       `json:"totalResults"`
	Page         int       `json:"page"`
	PageSize     int       `json:"pageSize"`
}
