// Package llm provides an OpenRouter chat client used to generate reel
// concepts from analysis results.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Complete: free-form completion honouring temperature and max_tokens.
// Client.HealthCheck: verify API key and model availability.
// DecodeLLMJSON: tolerant decoding of JSON embedded in model output.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty completions, and
// network timeouts with exponential backoff (base 1s, max 10s, up to 5
// attempts by default). Context cancellation aborts retries immediately.
package llm
