package enums

import "fmt"

// ActivityType labels entries in the dashboard activity feed.
type ActivityType string

const (
	ActivityBookAdded        ActivityType = "book-added"
	ActivityReaderRegistered ActivityType = "reader-registered"
	ActivityBookReturned     ActivityType = "book-returned"
)

func (t ActivityType) String() string {
	return string(t)
}

func (t ActivityType) IsValid() bool {
	switch t {
	case ActivityBookAdded, ActivityReaderRegistered, ActivityBookReturned:
		return true
	}
	return false
}

// ParseActivityType converts a raw string into an ActivityType.
func ParseActivityType(value string) (ActivityType, error) {
	t := ActivityType(value)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid activity type %q", value)
	}
	return t, nil
}
