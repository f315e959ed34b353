package nursery

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/NetPo4ki/go-nursery/task"
)

// Combined flattens a results slice into one error aggregating every failed,
// cancelled, or panicked child, indexed by spawn order, or nil when all
// children succeeded. Intended for CollectAll consumers that want a single
// error value rather than the full outcome list.
func Combined[T any](results []task.Outcome[T]) error {
	var merr *multierror.Error
	for i, r := range results {
		if p, ok := r.Panicked(); ok {
			merr = multierror.Append(merr, fmt.Errorf("child %d panicked: %v", i, p))
			continue
		}
		if err := r.Err(); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("child %d: %w", i, err))
		}
	}
	return merr.ErrorOrNil()
}
