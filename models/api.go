package models

// Giphy search json models.
// Fields the projection depends on are pointers so a missing field can be
// told apart from an empty one.
type GiphyResponse struct {
	Data       *[]GiphyGif     `json:"data"`
	Pagination GiphyPagination `json:"pagination"`
	Meta       GiphyMeta       `json:"meta"`
}

type GiphyGif struct {
	Id     *string      `json:"id"`
	Title  string       `json:"title"`
	Url    string       `json:"url"`
	Images *GiphyImages `json:"images"`
}

type GiphyImages struct {
	DownsizedMedium *GiphyRendition `json:"downsized_medium"`
}

type GiphyRendition struct {
	Url    *string `json:"url"`
	Width  string  `json:"width"`
	Height string  `json:"height"`
	Size   string  `json:"size"`
}

type GiphyPagination struct {
	TotalCount int `json:"total_count"`
	Count      int `json:"count"`
	Offset     int `json:"offset"`
}

type GiphyMeta struct {
	Status     int    `json:"status"`
	Msg        string `json:"msg"`
	ResponseId string `json:"response_id"`
}
