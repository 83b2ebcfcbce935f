package dashboard

import "errors"

var (
	// ErrAuthentication: no valid principal could be resolved for the request.
	ErrAuthentication = errors.New("unauthorized")
	// ErrForbidden: the property is not owned by the caller's tenant. The message is
	// the same whether or not the id exists under another tenant.
	ErrForbidden = errors.New("not your property")
	// ErrNotFound: the property is owned but has no revenue data.
	ErrNotFound = errors.New("no revenue data for property")
	// ErrUpstream: the revenue source failed or answered inconsistently.
	ErrUpstream = errors.New("revenue service unavailable")
)
