// Package providers implements the vision-model analysis chain. Each provider
// wraps one hosted multimodal model behind a common capability interface, and
// Manager walks the configured chain in strict priority order until one
// provider returns a usable result.
package providers
