package models

import "time"

// DailyRate is the cached official USD/VES rate.
type DailyRate struct {
	Rate      float64   `json:"rate"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}

// BCVRateResponse mirrors the public rate API payload. Depending on the
// provider the numeric field is `promedio` or `valor`.
type BCVRateResponse struct {
	Promedio float64 `json:"promedio"`
	Valor    float64 `json:"valor"`
	Fuente   string  `json:"fuente"`
}
