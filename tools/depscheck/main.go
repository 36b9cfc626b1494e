package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

const modulePath = "rescue-sim/server"

type packageInfo struct {
	ImportPath string
	Imports    []string
}

// rule forbids packages under From from importing anything under To.
type rule struct {
	From string
	To   string
}

// The simulation core stays transport-agnostic; only app and cmd wire
// everything together.
var rules = []rule{
	{From: "internal/state", To: "internal/world"},
	{From: "internal/state", To: "internal/sim"},
	{From: "internal/steering", To: "internal/sim"},
	{From: "internal/world", To: "internal/sim"},
	{From: "internal/ai", To: "internal/sim"},
	{From: "internal/sim", To: "internal/net"},
	{From: "internal/sim", To: "internal/app"},
	{From: "internal/net/proto", To: "internal/net/ws"},
	{From: "internal/net/intake", To: "internal/net/ws"},
	{From: "logging", To: "internal/sim"},
}

func main() {
	cmd := exec.Command("go", "list", "-json", "./...")
	cmd.Env = os.Environ()
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.Stderr.Write(exitErr.Stderr)
		}
		fmt.Fprintf(os.Stderr, "depscheck: failed to list packages: %v\n", err)
		os.Exit(1)
	}

	pkgs, err := decodePackages(bytes.NewReader(output))
	if err != nil {
		fmt.Fprintf(os.Stderr, "depscheck: failed to decode package info: %v\n", err)
		os.Exit(1)
	}

	if violations := findViolations(pkgs, rules); len(violations) > 0 {
		fmt.Fprintln(os.Stderr, "depscheck: found forbidden imports:")
		for _, violation := range violations {
			fmt.Fprintf(os.Stderr, "  %s\n", violation)
		}
		os.Exit(1)
	}
}

func decodePackages(r io.Reader) ([]packageInfo, error) {
	decoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(r)
	var pkgs []packageInfo
	for {
		var pkg packageInfo
		if err := decoder.Decode(&pkg); err != nil {
			if errors.Is(err, io.EOF) {
				return pkgs, nil
			}
			return nil, err
		}
		pkgs = append(pkgs, pkg)
	}
}

func findViolations(pkgs []packageInfo, rules []rule) []string {
	var violations []string
	for _, pkg := range pkgs {
		for _, r := range rules {
			if !within(pkg.ImportPath, r.From) {
				continue
			}
			for _, imp := range pkg.Imports {
				if within(imp, r.To) {
					violations = append(violations, fmt.Sprintf("%s -> %s", pkg.ImportPath, imp))
				}
			}
		}
	}
	sort.Strings(violations)
	return violations
}

func within(importPath, rel string) bool {
	prefix := modulePath + "/" + rel
	return importPath == prefix || strings.HasPrefix(importPath, prefix+"/")
}
