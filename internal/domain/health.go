package domain

import "net/http"

// Status is the outcome reported by a health probe.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Fixed probe messages. They are part of the public response contract.
const (
	MsgHealthy           = "Health check successful"
	MsgDatabaseHealthy   = "Database connection successful"
	MsgDatabaseUnhealthy = "Database connection failed"
	MsgStorageHealthy    = "Storage connection successful"
	MsgStorageUnhealthy  = "Storage connection failed"
)

// HealthStatus is built fresh for every probe and never mutated afterwards.
// HTTPCode is derived from Status and is not serialized.
type HealthStatus struct {
	Status   Status `json:"status"`
	Message  string `json:"message"`
	HTTPCode int    `json:"-"`
}

func Healthy(msg string) HealthStatus {
	return HealthStatus{Status: StatusOK, Message: msg, HTTPCode: http.StatusOK}
}

func Unhealthy(msg string) HealthStatus {
	return HealthStatus{Status: StatusError, Message: msg, HTTPCode: http.StatusInternalServerError}
}

func (h HealthStatus) IsHealthy() bool { return h.Status == StatusOK }
