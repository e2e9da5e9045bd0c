package library

// Track describes a single playable audio item.
// Track is immutable once created and is passed by value between the catalog, queue and playlists.
type Track struct {
	ID       string `json:"ID"`
	Title    string `json:"Title"`
	Artist   string `json:"Artist"`
	Album    string `json:"Album"`
	Duration int    `json:"Duration"`
	AlbumArt string `json:"AlbumArt"`
	AudioURL string `json:"AudioURL"`
	Genre    string `json:"Genre,omitempty"`
	Year     int    `json:"Year,omitempty"`
}
