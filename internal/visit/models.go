// Package visit is the append-only ledger of entry events. A visit is written
// exactly once per accepted scan; there are no updates and no deletes.
package visit

import (
	"time"

	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
)

// StatusActive is the status stamped on every new visit.
const StatusActive = "ACTIVE"

// Visit is one entry event. The client outlives its visits; client_id is an
// owning reference, not ownership.
type Visit struct {
	ID        domain.VisitID
	ClientID  domain.ClientID
	EntryTime time.Time
	Status    string
}
