// Command salesdw loads the sales star schema from the operational store.
//
//	salesdw run      --config salesdw.yaml   # one full load
//	salesdw validate --config salesdw.yaml   # static checks, optional source schema check
//	salesdw schema   --config salesdw.yaml   # create missing warehouse tables
//
// Every setting can also come from the environment; see internal/config.
package main

import (
	"os"

	// register all backends with the storage factory.
	_ "salesdw/internal/storage/all"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}
