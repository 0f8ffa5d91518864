// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/uniget/uniget/cmd/uniget"

func main() {
	cmd.Execute()
}
