package recognize

import "context"

// ProgressFunc is called before each file is processed. index is
// 1-based.
type ProgressFunc func(index, total int, filename string)

// ResolveAll identifies a batch of files sequentially, in input order.
// Sequential on purpose: the providers are rate-limited to around one
// request per second, so parallelism buys nothing and risks bans.
// Returns one result per input file; a nil progress callback is fine.
func (o *Orchestrator) ResolveAll(ctx context.Context, files []File, progress ProgressFunc) ([]Result, error) {
	results := make([]Result, 0, len(files))

	for i, f := range files {
		if progress != nil {
			progress(i+1, len(files), f.Filename)
		}

		res, err := o.Resolve(ctx, f)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}

	return results, nil
}
