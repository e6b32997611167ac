// Package types holds the context keys shared between the root command
// and the subcommand packages.
package types

type ContextKey string

// ClientAppKey carries the initialized *client.App through the cobra
// command context.
const ClientAppKey ContextKey = "clientApp"
