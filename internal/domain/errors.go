package domain

import "errors"

// Errors are tiered by retry-worthiness: everything below is a defect in the
// request or message shape that redelivery cannot fix, so handlers map them to
// 4xx statuses. Anything else surfacing from the persist step is treated as
// transient and mapped to 5xx so the queue redelivers.
var (
	// ErrUnsupportedMediaType is returned for a Content-Type the gateway
	// does not ingest.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrInvalidPayload is returned for a body that fails to parse as JSON.
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrMissingTenant is returned when no tenant identifier is present.
	ErrMissingTenant = errors.New("missing tenant_id")

	// ErrEmptyText is returned when text is absent or blank after trimming.
	ErrEmptyText = errors.New("missing or empty text")

	// ErrMalformedEnvelope is returned when a push request is not a valid
	// queue envelope.
	ErrMalformedEnvelope = errors.New("malformed push envelope")

	// ErrMalformedPayload is returned when envelope data fails base64 or
	// JSON decoding.
	ErrMalformedPayload = errors.New("malformed message payload")

	// ErrIncompletePayload is returned when a decoded message is missing
	// required fields. The gateway guarantees should have prevented this,
	// so retrying cannot help.
	ErrIncompletePayload = errors.New("incomplete message payload")

	// ErrNotFound is returned by repository lookups for an absent document.
	ErrNotFound = errors.New("processed log not found")
)

// IsClientError reports whether err belongs to the non-retryable tier.
func IsClientError(err error) bool {
	return errors.Is(err, ErrUnsupportedMediaType) ||
		errors.Is(err, ErrInvalidPayload) ||
		errors.Is(err, ErrMissingTenant) ||
		errors.Is(err, ErrEmptyText) ||
		errors.Is(err, ErrMalformedEnvelope) ||
		errors.Is(err, ErrMalformedPayload) ||
		errors.Is(err, ErrIncompletePayload)
}
