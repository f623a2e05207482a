package dto

// DateResponse represents the current server date broken into display
// fields.
type DateResponse struct {
	Day   string `json:"day"`
	Month string `json:"month"`
	Year  string `json:"year"`
	Time  string `json:"time"`
}
