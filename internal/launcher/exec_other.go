// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package launcher

import (
	"fmt"
	"os"
	"runtime"
)

const execSupported = false

var (
	forwardedSignals []os.Signal
	heldSignals      = []os.Signal{os.Interrupt}
)

func execImage(string, []string, []string) error {
	return fmt.Errorf("process replacement is not supported on %s", runtime.GOOS)
}
