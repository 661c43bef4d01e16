package zones

import "errors"

// Error values double as the response body sent to the client; wrapped
// errors append detail after a colon.
var (
	ErrEmptyBody           = errors.New("no data in request")
	ErrMalformedBody       = errors.New("could not parse data")
	ErrMissingType         = errors.New("type parameter is required for new domain registration")
	ErrInvalidDomainType   = errors.New("type parameter must be a string of at most 6 characters")
	ErrInvalidDomainName   = errors.New("domain name must be between 1 and 255 characters")
	ErrSaveFailed          = errors.New("save failed")
	ErrDomainNotFound      = errors.New("domain not found")
	ErrMissingRecordFields = errors.New("name and type parameters are required for a record")
	ErrInvalidRecords      = errors.New("records parameter must be a list of records")
	ErrInvalidRecordField  = errors.New("invalid record field")
	ErrRecordSaveFailed    = errors.New("could not save record")
	ErrMissingNameserver   = errors.New("nameserver parameter is required")
	ErrInvalidIP           = errors.New("invalid ip address")
	ErrInvalidAccount      = errors.New("account parameter must be a string of at most 40 characters")
	ErrStore               = errors.New("database error")
)
