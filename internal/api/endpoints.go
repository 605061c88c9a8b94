package api

import "fmt"

// API paths, relative to the configured base URL.
const (
	EndpointToken        = "/auth/token/"
	EndpointRefresh      = "/auth/token/refresh/"
	EndpointRegister     = "/auth/register/"
	EndpointLogout       = "/auth/logout/"
	EndpointCurrentUser  = "/auth/me/"
	EndpointProfile      = "/auth/profile/"
	EndpointPassword     = "/auth/change-password/"
	EndpointAccounts     = "/accounts/"
	EndpointCategories   = "/categories/"
	EndpointTransactions = "/transactions/"
	EndpointTransfers    = "/transfers/"
)

// Navigation boundaries the gateway and session manager redirect to.
const (
	PathLogin     = "/login"
	PathDashboard = "/dashboard"
)

// publicEndpoints never get an Authorization header and never trigger
// credential renewal.
var publicEndpoints = map[string]struct{}{
	EndpointToken:    {},
	EndpointRefresh:  {},
	EndpointRegister: {},
}

func isPublic(path string) bool {
	_, ok := publicEndpoints[path]
	return ok
}

// EntityPath builds the detail path for a record, e.g. /accounts/7/.
func EntityPath(base string, id int64) string {
	return fmt.Sprintf("%s%d/", base, id)
}
