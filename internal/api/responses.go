package api

type HealthResponse struct {
	Status      string `json:"status" example:"ok"`
	EmailQueue  int64  `json:"email_queue" example:"0"`
	VisitorsNow int    `json:"visitors" example:"3"`
}
