package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Stdout and Stderr are where results and messages go; tests replace them
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// Envelope wraps every --json result so scripts can branch on success
// without parsing the exit code
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
}

// JSON writes data (and err, when non-nil) as an indented Envelope
func JSON(data interface{}, err error) error {
	env := Envelope{Success: err == nil, Data: data}
	if err != nil {
		env.Error = err.Error()
	}

	enc := json.NewEncoder(Stdout)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(env); encErr != nil {
		return fmt.Errorf("failed to encode JSON: %w", encErr)
	}
	return nil
}
