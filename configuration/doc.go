// Package configuration defines the game configuration record, the
// repository contract every backend implements and the error kinds shared
// by the store, cache, service and handler layers.
//
// Expected conditions are reported as typed errors rather than panics:
//
//	rec, err := svc.Create(ctx, configuration.Record{Name: "Config1", JSONConfig: "{}"})
//	switch {
//	case errors.Is(err, configuration.ErrValidation):
//	case errors.Is(err, configuration.ErrDuplicateName):
//	case errors.Is(err, configuration.ErrStore):
//	}
package configuration
