package repo

// Unstage removes the index entries selected by specs, plain paths or
// glob patterns. Specs that select nothing come back in missing rather
// than failing the batch; the index is saved once when anything was
// removed.
func (r *Repo) Unstage(specs []string) (removed []string, missing []string, err error) {
	ix, err := r.LoadIndex()
	if err != nil {
		return nil, nil, err
	}

	for _, spec := range specs {
		paths, err := r.matchIndex(ix, spec)
		if err != nil {
			return nil, nil, err
		}
		if len(paths) == 0 {
			missing = append(missing, spec)
			continue
		}
		for _, p := range paths {
			ix.Remove(p)
			removed = append(removed, p)
		}
	}

	if len(removed) > 0 {
		if err := r.SaveIndex(ix); err != nil {
			return nil, nil, err
		}
	}
	return removed, missing, nil
}
