// Package enumerator discovers pages on a site worth inspecting.
package enumerator

import "context"

// Enumerator lists the pages reachable from target, target first.
type Enumerator interface {
	Enumerate(ctx context.Context, target string) ([]string, error)
}
