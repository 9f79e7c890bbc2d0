// bio-rnpbind loads binding-site evidence for one RNA and reports how the
// binding factors relate to one another.
package main

import "github.com/grailbio/rnpbind/cmd/bio-rnpbind/cmd"

func main() {
	cmd.Run()
}
