// Package files finds order exports on disk and stores uploaded ones.
//
// Discovery lists the workbooks a batch run should process. Files that are
// already macro outputs are skipped so a directory can be re-run safely.
//
// Manager streams HTTP uploads into the upload directory under a unique name
// and removes them once a run has finished with them.
//
//	discovery := files.NewDiscovery(paths.InputDir)
//	inputs, err := discovery.FindOrderFiles("")
package files
