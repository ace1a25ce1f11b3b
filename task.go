package gridloader

import (
	"fmt"
	"time"
)

// Task is one country × document type × window unit of work. Tasks are
// independent: no ordering or transactionality exists between them.
type Task struct {
	Country     string
	Document    DocumentType
	PeriodStart time.Time
	PeriodEnd   time.Time
}

func (t Task) String() string {
	return fmt.Sprintf("%s/%s %s..%s",
		t.Country, t.Document,
		t.PeriodStart.Format("2006-01-02"), t.PeriodEnd.Format("2006-01-02"))
}
