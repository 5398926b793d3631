package types

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the uniform response shape used by every endpoint.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ValidationEnvelope is the variant shape used when a request fails batch
// field validation: one human-readable reason per violated rule.
type ValidationEnvelope struct {
	Status   string   `json:"status"`
	Messages []string `json:"messages"`
	Data     any      `json:"data"`
}
