// Command microkernel inspects and maintains the container cache of an
// application laid out for the kernel package.
//
// Usage
//
//	microkernel [--env app] [--app-path DIR] [--debug] [--verbose] <command>
//
// Commands
//
//	params [PREFIX]   print the compiled container parameters
//	layers            print the configuration layers and whether they exist
//	services          print the defined services and their factories
//	cache path        print the cache artifact location
//	cache warm        rebuild the cache artifact
//	cache clear       remove the cache artifact
//	cache watch       clear the cache whenever a layer file changes
//
// Every flag can also be set from the environment (MICROKERNEL_ENV,
// MICROKERNEL_APP_PATH, MICROKERNEL_DEBUG, MICROKERNEL_VERBOSE) or from a
// YAML file passed with --config. --app-path defaults to the working
// directory.
//
// The command has no factories registered, so services are listed but never
// built.
package main
