// Package domain defines core data structures used throughout the rebalancer.
package domain

// Session authorizes broker calls for a single run.
type Session struct {
	// AccessToken bearer token obtained from the refresh-token exchange.
	AccessToken string
	// AccountHash encrypted account identifier used in account-scoped URLs.
	AccountHash string
}

// Valid reports whether both credentials are present.
func (s Session) Valid() bool {
	return s.AccessToken != "" && s.AccountHash != ""
}
