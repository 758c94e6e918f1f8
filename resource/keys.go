package resource

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Object-store layout:
//
//	clients/{accountId}.json
//	workloads/{accountId}/                     (partition marker)
//	workloads/{accountId}/{YYYY}/              (partition marker)
//	workloads/{accountId}/{YYYY}/{MM}/         (partition marker)
//	workloads/{accountId}/{YYYY}/{MM}/{id}.json

// DateLayout is the textual day-month-year form used by the wire contract.
const DateLayout = "02-01-2006"

// ClientKey returns the document key for an account.
func ClientKey(accountID string) string {
	return fmt.Sprintf("clients/%s.json", accountID)
}

// WorkloadKey returns the document key for a workload at the given partition
// coordinates. Year and month are normalized to four and two digits.
func WorkloadKey(clientID, year, month, workloadID string) string {
	return fmt.Sprintf("workloads/%s/%s/%s/%s.json",
		clientID, NormalizeYear(year), NormalizeMonth(month), workloadID)
}

// WorkloadPrefix returns the listing prefix for a client's workloads,
// optionally narrowed to a year and then a month. The prefix always carries
// a trailing slash so it doubles as the partition marker key.
func WorkloadPrefix(clientID string, parts ...string) string {
	var b strings.Builder
	b.WriteString("workloads/")
	b.WriteString(clientID)
	b.WriteString("/")
	if len(parts) > 0 {
		b.WriteString(NormalizeYear(parts[0]))
		b.WriteString("/")
	}
	if len(parts) > 1 {
		b.WriteString(NormalizeMonth(parts[1]))
		b.WriteString("/")
	}
	return b.String()
}

// NormalizeMonth zero-pads a month to two digits. Input that is not a bare
// number is returned unchanged; key construction does not validate business
// data.
func NormalizeMonth(month string) string {
	n, err := strconv.Atoi(month)
	if err != nil {
		return month
	}
	return fmt.Sprintf("%02d", n)
}

// NormalizeYear zero-pads a year to four digits.
func NormalizeYear(year string) string {
	n, err := strconv.Atoi(year)
	if err != nil {
		return year
	}
	return fmt.Sprintf("%04d", n)
}

// PeriodOf derives the partition coordinates from a DD-MM-YYYY start date.
func PeriodOf(startDate string) (year, month string, err error) {
	t, err := time.Parse(DateLayout, startDate)
	if err != nil {
		return "", "", fmt.Errorf("parse date %q: %w", startDate, err)
	}
	return fmt.Sprintf("%04d", t.Year()), fmt.Sprintf("%02d", int(t.Month())), nil
}

// Period formats partition coordinates as the YYYY-MM period string stored
// on the workload document.
func Period(year, month string) string {
	return fmt.Sprintf("%s-%s", NormalizeYear(year), NormalizeMonth(month))
}

// SplitPeriod parses a YYYY-MM period string into partition coordinates.
func SplitPeriod(period string) (year, month string, err error) {
	parts := strings.SplitN(period, "-", 2)
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return "", "", fmt.Errorf("malformed period %q, want YYYY-MM", period)
	}
	if _, err := strconv.Atoi(parts[0]); err != nil {
		return "", "", fmt.Errorf("malformed period %q: %w", period, err)
	}
	if _, err := strconv.Atoi(parts[1]); err != nil {
		return "", "", fmt.Errorf("malformed period %q: %w", period, err)
	}
	return parts[0], parts[1], nil
}

// IsDocument reports whether an object key holds a data document rather
// than a partition marker or other non-document object.
func IsDocument(key string) bool {
	return strings.HasSuffix(key, ".json")
}

// IsMarker reports whether an object key is a partition marker.
func IsMarker(key string) bool {
	return strings.HasSuffix(key, "/")
}
