package admissions

import (
	"fmt"
	"time"
)

// admissionNumberPrefix starts every hospitalization number
const admissionNumberPrefix = "HOS"

// FormatAdmissionNumber renders the hospitalization number for a calendar day
// and daily sequence: HOS-{yyyyMMdd}-{seq:03d}. The sequence is shared across
// every admission origin and resets at local midnight; it is zero-padded to
// three digits but keeps growing past 999.
func FormatAdmissionNumber(day time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%03d", admissionNumberPrefix, day.Format("20060102"), seq)
}
