package meilisearch

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// APIError captures the structured error body returned by the search service.
type APIError struct {
	Status  int
	Code    string
	Type    string
	Message string
	Link    string
}

// Error implements the error interface.
func (e APIError) Error() string {
	if e.Code == "" {
		e.Code = "unknown"
	}
	if e.Message == "" {
		e.Message = fmt.Sprintf("%s (%d)", e.Code, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)
	apiErr := APIError{Status: resp.StatusCode}
	if len(data) == 0 {
		apiErr.Message = resp.Status
		return apiErr
	}
	var payload struct {
		Message string `json:"message"`
		Code    string `json:"code"`
		Type    string `json:"type"`
		Link    string `json:"link"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		apiErr.Message = string(data)
		return apiErr
	}
	apiErr.Code = payload.Code
	apiErr.Type = payload.Type
	apiErr.Message = payload.Message
	apiErr.Link = payload.Link
	if apiErr.Message == "" {
		apiErr.Message = resp.Status
	}
	return apiErr
}
