// Package preflight provides readiness checks for the external binaries,
// hosted APIs, and filesystem paths that reelsense depends on.
//
// The "reelsense doctor" command runs RunAll and renders every result. Checks
// for optional features (reel concepts, the hosted transcription backend) are
// gated by their config settings, and a missing concept API key is reported as
// an optional failure because analysis still completes without concepts.
package preflight
