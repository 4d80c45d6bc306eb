// Command hemascan is the anemia-screening CLI and service. It captures scan
// photo sets, runs them through the configured provider fallback chain,
// persists the results locally, and can serve the same pipeline over HTTP.
package main
