package connectors

import "context"

// Copy transfers the contents of the given libraries from src to dst. When
// libs is empty all libraries are copied. Existing items in dst cause an
// "already exists" error unless overwrite is set. It returns the number of
// items copied.
func Copy(ctx context.Context, src, dst Connector, libs []Library, overwrite bool) (int, error) {
	if len(libs) == 0 {
		libs = Libraries()
	}
	copied := 0
	for _, lib := range libs {
		if !lib.Valid() {
			return copied, NewValidationError("unknown library %q", lib)
		}
		names, err := src.Names(ctx, lib)
		if err != nil {
			return copied, err
		}
		for _, name := range names {
			if err := ctx.Err(); err != nil {
				return copied, err
			}
			if lib == LibraryModels {
				rec, err := src.GetModel(ctx, name)
				if err != nil {
					return copied, err
				}
				if err := dst.AddModel(ctx, rec, overwrite); err != nil {
					return copied, err
				}
			} else {
				rec, err := src.GetSeries(ctx, lib, name)
				if err != nil {
					return copied, err
				}
				if err := dst.AddSeries(ctx, lib, rec, overwrite); err != nil {
					return copied, err
				}
			}
			copied++
		}
	}
	return copied, nil
}
