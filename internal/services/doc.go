// Package services implements the indicator workflows on top of
// internal/dataprocessing.
//
// # Architecture
//
// IndicatorService resolves dataset locations from configuration and
// wraps every table operation with the cross-cutting concerns:
//
//	1. One status line per operation on the injected slog logger
//	2. A span per operation on the configured tracer
//	3. Operation counts and durations on the dataset metrics
//
// The table operations themselves stay pure; the service never mutates a
// table it is given.
//
// # Missing Datasets
//
// LoadRawData and LoadProcessedData return a nil table and a nil error
// when the file does not exist, after logging the path at error level.
// Callers check for nil before using the table:
//
//	raw, err := svc.LoadRawData(ctx)
//	if err != nil {
//	    return err
//	}
//	if raw == nil {
//	    return services.ErrDatasetUnavailable
//	}
//
// Malformed files are returned as errors.
//
// # Concurrency
//
// LoadAll reads both datasets concurrently with an errgroup. Every other
// method runs synchronously on the caller's goroutine.
package services
