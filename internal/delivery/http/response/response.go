package response

type SubmitScrapeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	JobID   string `json:"job_id"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
