package tokensvc

import "errors"

var (
	// ErrConnectionFailed indicates the client could not reach the query endpoint.
	ErrConnectionFailed = errors.New("tokensvc: connection failed")

	// ErrInvalidResponse indicates the endpoint returned a malformed or unexpected response.
	ErrInvalidResponse = errors.New("tokensvc: invalid response")

	// ErrQueryFailed indicates the token contract rejected the query.
	ErrQueryFailed = errors.New("tokensvc: query failed")

	// ErrNotConfigured indicates no query endpoint was configured for the network.
	ErrNotConfigured = errors.New("tokensvc: endpoint not configured")
)
