// Timeline manages snapshot retention policies for storage volumes.
//
// It converts retention durations, matches policy sets against the preset
// library, reconciles a volume's attached policies to a desired list and
// serves the policy store over HTTP.
//
// Usage:
//
//	# Show the retention presets
//	timeline preset list
//
//	# Apply the Standard preset to a new volume
//	timeline reconcile --volume vol-1 --mode create --preset Standard
//
//	# Edit a volume's policies from a file, previewing first
//	timeline reconcile --volume vol-1 --desired policies.yaml --dry-run
//
//	# Copy one volume's policies onto another
//	timeline reconcile --volume vol-2 --mode clone --from vol-1
//
//	# Serve the policy API
//	timeline serve --config /etc/timeline/config.yaml
package main

import "os"

func main() {
	os.Exit(Execute())
}
