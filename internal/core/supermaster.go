package core

// Supermaster is a row of the PowerDNS supermasters table, used by slaves
// to auto-provision zones notified by a trusted master.
type Supermaster struct {
	IP         string  `json:"ip" db:"ip"`
	Nameserver string  `json:"nameserver" db:"nameserver"`
	Account    *string `json:"account,omitempty" db:"account"`
}
