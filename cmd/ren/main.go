package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/renlang/ren/internal/config"
	"github.com/renlang/ren/internal/runtime"
	"github.com/renlang/ren/internal/scan"
)

func isSourceFile(path string) bool {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func main() {
	args := os.Args[1:]

	if len(args) == 0 {
		if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
			console()
			return
		}
		// piped input: run stdin as a script
		src, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Exit(runSource("stdin", string(src)))
	}

	for _, path := range args {
		if !isSourceFile(path) {
			fmt.Fprintf(os.Stderr, "not a script: %s\n", path)
			os.Exit(1)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if code := runSource(path, string(data)); code != 0 {
			os.Exit(code)
		}
	}
}

func runSource(name, src string) int {
	rt := runtime.New()
	a, err := scan.Transcode(rt, name, src)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	if _, err := rt.RunArray(a); err != nil {
		if code, ok := quitCode(err); ok {
			return code
		}
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	return 0
}

// quitCode recognizes an escaped QUIT throw and maps it to an exit code.
func quitCode(err *runtime.ErrorStub) (int, bool) {
	if err.ID != "no-catch" || !strings.Contains(err.Message, "quit") {
		return 0, false
	}
	return 0, true
}

func console() {
	rt := runtime.New()
	fmt.Printf("ren %s — type quit to leave\n", config.Version)
	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(">> ")
		if !in.Scan() {
			fmt.Println()
			return
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		a, err := scan.Transcode(rt, "console", line)
		if err != nil {
			fmt.Println(err.Error())
			continue
		}
		out, err := rt.RunArray(a)
		if err != nil {
			if _, ok := quitCode(err); ok {
				return
			}
			fmt.Println(err.Error())
			continue
		}
		if runtime.IsGhost(&out) || runtime.IsTrash(&out) || out.IsErased() {
			continue
		}
		fmt.Printf("== %s\n", runtime.Mold(&out))
	}
}
