// Package files finds indicator datasets and exported reports on disk.
//
// Discovery lists the CSV and workbook files under a directory, relative
// to a base path:
//
//	discovery := files.NewDiscovery(paths.BaseDir)
//	datasets, err := discovery.FindDatasets("data")
package files
