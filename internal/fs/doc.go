// Package fs abstracts the file system operations the counting engine
// performs: opening the input, appending spill files, and managing the
// per-run temporary directory.
//
// [LocalFS] is the production implementation over the os package; fs.Default
// holds one:
//
//	file, err := fs.Default.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
//
// [FaultyFS] injects errors into files matching a name pattern, for
// exercising spill IO failure paths in tests:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("part_", fs.Fault{FailAfterBytes: 1024})
//
// IO throttling happens above this layer, in the resource controller.
package fs
