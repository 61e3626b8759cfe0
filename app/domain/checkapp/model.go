package checkapp

import "encoding/json"

// Health is the liveness body.
type Health struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Encode implements the encoder interface.
func (h Health) Encode() ([]byte, string, error) {
	data, err := json.Marshal(h)
	return data, "application/json", err
}

// Info represents information about the service.
type Info struct {
	Status     string `json:"status,omitempty"`
	Build      string `json:"build,omitempty"`
	Host       string `json:"host,omitempty"`
	GOMAXPROCS int    `json:"GOMAXPROCS,omitempty"`
}

// Encode implements the encoder interface.
func (app Info) Encode() ([]byte, string, error) {
	data, err := json.Marshal(app)
	return data, "application/json", err
}
