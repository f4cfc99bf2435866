// Package dto holds the request and response bodies of the hosted API. The
// server registers them with huma; the remote client decodes the same types.
package dto

// IDParam is the {id} path parameter.
type IDParam struct {
	ID string `path:"id" maxLength:"64" doc:"Resource identifier"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message" doc:"Status message"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}
