package editor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

const instructionHeader = "-- Write the body of %s below; bind parameters as :name.\n-- Save and exit to store it, leave it empty to cancel.\n--\n"

// EditExternal opens body in $EDITOR (vi when unset) and returns the text
// after the instruction header.
func EditExternal(name, body string) (string, error) {
	tmpFile, err := os.CreateTemp("", "eventsite-"+name+"-*.sql")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := tmpFile.Name()
	defer os.Remove(path)

	if _, err := tmpFile.WriteString(fmt.Sprintf(instructionHeader, name) + body); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	tmpFile.Close()

	editorCmd := os.Getenv("EDITOR")
	if editorCmd == "" {
		editorCmd = "vi"
	}
	cmd := exec.Command(editorCmd, path)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("running %s: %w", editorCmd, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return StripInstructions(string(data)), nil
}

// StripInstructions drops the leading comment block up to the bare "--" line.
func StripInstructions(content string) string {
	if !strings.HasPrefix(content, "-- Write the body of") {
		return strings.TrimSpace(content)
	}
	if _, rest, ok := strings.Cut(content, "\n--\n"); ok {
		return strings.TrimSpace(rest)
	}
	return ""
}
