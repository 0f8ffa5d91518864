// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Pdb2MdbCommand is the external converter run by DefaultSymbolConverter.
const Pdb2MdbCommand = "pdb2mdb"

type (
	// SymbolConverter produces "<dll>.mdb" debug symbols for a library.
	SymbolConverter interface {
		Convert(ctx context.Context, dllPath string) error
	}

	// SymbolConverterFunc adapts a function to SymbolConverter.
	SymbolConverterFunc func(ctx context.Context, dllPath string) error

	// commandConverter runs an external pdb2mdb binary when one is installed.
	commandConverter struct {
		name string
	}
)

// Convert calls f.
func (f SymbolConverterFunc) Convert(ctx context.Context, dllPath string) error {
	return f(ctx, dllPath)
}

// DefaultSymbolConverter runs pdb2mdb when it is on PATH and the library has a
// ".pdb" next to it. Otherwise it does nothing.
func DefaultSymbolConverter() SymbolConverter {
	return commandConverter{name: Pdb2MdbCommand}
}

func (c commandConverter) Convert(ctx context.Context, dllPath string) error {
	pdb := strings.TrimSuffix(dllPath, dllExt(dllPath)) + ".pdb"
	if _, err := os.Stat(pdb); err != nil {
		return nil
	}
	bin, err := exec.LookPath(c.name)
	if err != nil {
		return nil
	}

	out, err := exec.CommandContext(ctx, bin, dllPath).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %w: %s", c.name, dllPath, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func dllExt(p string) string {
	if len(p) >= 4 && strings.EqualFold(p[len(p)-4:], ".dll") {
		return p[len(p)-4:]
	}
	return ""
}
