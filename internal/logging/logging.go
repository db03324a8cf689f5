package logging

import (
	"encoding/json"
	"log"
	"time"
)

const Service = "coffee-shop"

type Fields struct {
	Component  string `json:"component,omitempty"`
	UserID     string `json:"user_id,omitempty"`
	OrderID    int64  `json:"order_id,omitempty"`
	Step       string `json:"step,omitempty"`
	Status     string `json:"status,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

type entry struct {
	Fields
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// Log writes one JSON line through the standard logger.
func Log(fields Fields) {
	data, err := json.Marshal(entry{
		Fields:    fields,
		Service:   Service,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		log.Printf("{\"service\":%q,\"status\":\"log_error\",\"error\":%q}", Service, err.Error())
		return
	}
	log.Print(string(data))
}

// Err is Log with the error text filled in.
func Err(fields Fields, err error) {
	if err != nil {
		fields.Error = err.Error()
	}
	Log(fields)
}
