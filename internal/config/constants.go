package config

import "runtime"

// ManifestFileName is the manifest looked up when none is given on the command line
const ManifestFileName = "mmbconv.yaml"

// BundleFileExt is the extension of serialized batch bundles
const BundleFileExt = ".mmbb"

// DefaultVerbosity is the log level used when --verbosity is not set
const DefaultVerbosity = "info"

// DefaultWorkers bounds how many jobs a batch converts at once.
var DefaultWorkers = runtime.NumCPU()

// NoColorEnv disables colored disassembly when set, whatever its value.
const NoColorEnv = "NO_COLOR"
