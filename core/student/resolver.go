package student

import (
	"context"

	"github.com/pkg/errors"
)

// ResolveID returns the identifier to use when querying kind's table for the
// given student id. Some source tables key students by a plain numeric id,
// others embed that number in a longer compound string ("X_1234_Y"); the two
// conventions coexist and differ per table, so resolution is always per kind
// and never shared across kinds.
//
// Lookup order:
//  1. exact match: any row keyed by id as-is;
//  2. compound fallback: first id value containing "_<id>_";
//  3. neither: id is returned unchanged. The subsequent fetch then sees zero
//     rows, which aggregation treats as "no data", not as an error.
func (svc *Service) ResolveID(ctx context.Context, kind RecordKind, id string) (string, error) {
	ok, err := svc.repo.HasRecords(ctx, kind, id)
	if err != nil {
		return "", errors.Wrapf(err, "probing %s records", kind)
	}
	if ok {
		return id, nil
	}

	cid, err := svc.repo.FindCompoundID(ctx, kind, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return id, nil
		}
		return "", errors.Wrapf(err, "scanning %s records for compound id", kind)
	}
	return cid, nil
}
