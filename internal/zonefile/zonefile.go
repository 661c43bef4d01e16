// Package zonefile renders stored records in RFC 1035 presentation format.
package zonefile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/miekg/dns"

	"github.com/leozw/pdns-rest/internal/core"
)

const DefaultTTL = 3600

// Skipped describes a stored record that could not be rendered.
type Skipped struct {
	Record *core.Record
	Err    error
}

// Render returns the zone text for domain and the records it had to leave
// out. Records are emitted in the order given.
func Render(domain *core.Domain, records []*core.Record) (string, []Skipped) {
	var b strings.Builder
	var skipped []Skipped

	fmt.Fprintf(&b, "$ORIGIN %s\n", dns.Fqdn(domain.Name))
	for _, record := range records {
		rr, err := ToRR(record)
		if err != nil {
			skipped = append(skipped, Skipped{Record: record, Err: err})
			continue
		}
		b.WriteString(rr.String())
		b.WriteByte('\n')
	}

	return b.String(), skipped
}

// ToRR parses a stored record into a dns.RR. PowerDNS keeps the MX/SRV
// priority in its own column, so it is put back in front of the rdata.
func ToRR(record *core.Record) (dns.RR, error) {
	if _, ok := dns.StringToType[strings.ToUpper(record.Type)]; !ok {
		return nil, fmt.Errorf("unknown record type %q", record.Type)
	}

	ttl := DefaultTTL
	if record.TTL != nil {
		ttl = *record.TTL
	}

	rdata := ""
	if record.Content != nil {
		rdata = *record.Content
	}
	if record.Prio != nil && usesPrio(record.Type) {
		rdata = strconv.Itoa(*record.Prio) + " " + rdata
	}

	line := fmt.Sprintf("%s %d IN %s %s", dns.Fqdn(record.Name), ttl, strings.ToUpper(record.Type), rdata)
	rr, err := dns.NewRR(line)
	if err != nil {
		return nil, err
	}
	if rr == nil {
		return nil, fmt.Errorf("empty record %q", line)
	}
	return rr, nil
}

func usesPrio(rtype string) bool {
	switch strings.ToUpper(rtype) {
	case "MX", "SRV":
		return true
	}
	return false
}
