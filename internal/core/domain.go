package core

import "errors"

// ErrNotFound is returned by stores when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Domain is a row of the PowerDNS domains table. Name is the only identity
// exposed over the API.
type Domain struct {
	ID             int64   `json:"id" db:"id"`
	Name           string  `json:"name" db:"name"`
	Master         *string `json:"master,omitempty" db:"master"`
	LastCheck      *int64  `json:"last_check,omitempty" db:"last_check"`
	Type           string  `json:"type" db:"type"`
	NotifiedSerial *int64  `json:"notified_serial,omitempty" db:"notified_serial"`
	Account        *string `json:"account,omitempty" db:"account"`
}

// Zone types understood by PowerDNS.
const (
	DomainTypeNative = "NATIVE"
	DomainTypeMaster = "MASTER"
	DomainTypeSlave  = "SLAVE"
)

const (
	MaxDomainNameLength    = 255
	MaxDomainTypeLength    = 6
	MaxDomainAccountLength = 40
)
